// Package domain holds the plain data types of the betting engine: Game,
// GameBlind, Player, Hand and Action. These mirror the persisted schema
// (§3 of the spec) field for field; nothing here knows how to validate a
// poker action or advance a street — that belongs to internal/engine.
package domain

import "time"

// Round is one of the five stages of a hand.
type Round string

const (
	RoundPreflop  Round = "preflop"
	RoundFlop     Round = "flop"
	RoundTurn     Round = "turn"
	RoundRiver    Round = "river"
	RoundShowdown Round = "showdown"
)

// Next returns the round that follows r on the preflop→flop→turn→river→
// showdown ladder. Calling Next on RoundShowdown returns RoundShowdown.
func (r Round) Next() Round {
	switch r {
	case RoundPreflop:
		return RoundFlop
	case RoundFlop:
		return RoundTurn
	case RoundTurn:
		return RoundRiver
	case RoundRiver:
		return RoundShowdown
	default:
		return RoundShowdown
	}
}

// ActionType is the enum of player actions, matching the wire enum in §3.
type ActionType string

const (
	ActionNone    ActionType = ""
	ActionBet     ActionType = "bet"
	ActionFold    ActionType = "fold"
	ActionCall    ActionType = "call"
	ActionCheck   ActionType = "check"
	ActionRaise   ActionType = "raise"
	ActionReraise ActionType = "re-raise"
	ActionAllIn   ActionType = "all-in"
)

// Game is a tournament session. Neither this type nor the store prevents a
// second Game with EndTime == nil from being created; the store's
// GetActiveGame returns the most recently started open one.
type Game struct {
	ID         string
	BlindTime  int // seconds per blind level
	Level      int
	Chips      int64 // starting stack handed to every seat
	StartTime  time.Time
	EndTime    *time.Time
}

// GameBlind is a static lookup row keyed by level, not a foreign key to any
// particular Game.
type GameBlind struct {
	Level            int
	SmallBlindAmount int64
	BigBlindAmount   int64
	Ante             int64
}

// Player is a seat occupant. Insertion order (CreatedAt) is seat order and
// never changes once a hand begins.
type Player struct {
	ID                string
	GameID            string
	Name              string
	Amount            int64 // current stack
	IsOnline          bool
	IsActive          bool // still in the tournament
	Action            ActionType
	ActionAmount      int64 // total commitment this street
	AllBetSum         int64 // total commitment this hand
	InactiveHandID    *string
	CreatedAt         time.Time
}

// Eliminated reports whether the player busted out and has not rebought.
func (p *Player) Eliminated() bool {
	return p.Amount == 0 && !p.IsActive
}

// Hand is one dealt hand within a Game.
type Hand struct {
	ID                    string
	GameID                string
	Level                 int
	Dealer                string  // player id
	SmallBlind            *string // player id; nil when the SB seat is dead
	BigBlind              string  // player id
	CurrentPlayerTurnID   string
	PotAmount             int64
	Ante                  int64
	SmallBlindAmount      int64
	BigBlindAmount        int64
	LastCallAmount        int64
	CurrentMaxBet         int64
	LastRaiseAmount       int64
	CurrentRound          Round
	IsChangedCurrentRound bool
	CreatedAt             time.Time
}

// Action is one append-only log event.
type Action struct {
	ID           string
	HandID       string
	PlayerID     string
	Round        Round
	BettingRound int
	ActionOrder  int
	ActionType   ActionType
	BetAmount    int64
	CreatedAt    time.Time
}

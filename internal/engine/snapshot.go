package engine

import (
	"context"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
	"github.com/vctt94/holdem-engine/internal/store"
)

// PlayerView is the read-only projection of a Player a caller receives back
// from a command.
type PlayerView struct {
	ID           string
	Name         string
	Amount       int64
	IsOnline     bool
	IsActive     bool
	Action       domain.ActionType
	ActionAmount int64
	AllBetSum    int64
}

// HandView is the read-only projection of the Hand currently in progress,
// or nil if the game is between hands.
type HandView struct {
	ID                  string
	Dealer              string
	SmallBlind          *string
	BigBlind            string
	CurrentPlayerTurnID string
	PotAmount           int64
	Ante                int64
	CurrentMaxBet       int64
	LastRaiseAmount     int64
	CurrentRound        domain.Round
}

// Snapshot is the full observable state of one game: everything a client
// needs to render the table and decide its next command.
type Snapshot struct {
	GameID        string
	Level         int
	BlindTime     int
	Players       []PlayerView
	Hand          *HandView
	PlayerActions *Opportunities // the acting player's legal moves, nil between hands
}

// collectSnapshot assembles a Snapshot by reading the game's players and
// (if one is in progress) its latest hand out of tx. It never mutates
// anything — it is safe to call from any command after its writes, to
// report back the resulting state.
func collectSnapshot(ctx context.Context, tx store.Tx, gameID string) (*Snapshot, error) {
	game, err := tx.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := tx.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{GameID: game.ID, Level: game.Level, BlindTime: game.BlindTime}
	for _, p := range players {
		snap.Players = append(snap.Players, collectPlayerView(p))
	}

	hand, err := tx.LastHandForGame(ctx, gameID)
	if err != nil {
		var notFound *pokererr.NotFoundError
		if !isNotFound(err, &notFound) {
			return nil, err
		}
		return snap, nil
	}
	snap.Hand = collectHandView(hand)

	if hand.CurrentPlayerTurnID != "" {
		if actor := findByID(players, hand.CurrentPlayerTurnID); actor != nil {
			snap.PlayerActions = computeOpportunities(hand, actor)
		}
	}
	return snap, nil
}

func collectPlayerView(p *domain.Player) PlayerView {
	return PlayerView{
		ID:           p.ID,
		Name:         p.Name,
		Amount:       p.Amount,
		IsOnline:     p.IsOnline,
		IsActive:     p.IsActive,
		Action:       p.Action,
		ActionAmount: p.ActionAmount,
		AllBetSum:    p.AllBetSum,
	}
}

func collectHandView(h *domain.Hand) *HandView {
	return &HandView{
		ID:                  h.ID,
		Dealer:              h.Dealer,
		SmallBlind:          h.SmallBlind,
		BigBlind:            h.BigBlind,
		CurrentPlayerTurnID: h.CurrentPlayerTurnID,
		PotAmount:           h.PotAmount,
		Ante:                h.Ante,
		CurrentMaxBet:       h.CurrentMaxBet,
		LastRaiseAmount:     h.LastRaiseAmount,
		CurrentRound:        h.CurrentRound,
	}
}

func isNotFound(err error, target **pokererr.NotFoundError) bool {
	nf, ok := err.(*pokererr.NotFoundError)
	if ok {
		*target = nf
	}
	return ok
}

// GetSnapshot is the read-only command: it returns the current state of
// gameID without taking the game lock, since it mutates nothing and a
// caller polling for updates should never block behind an in-flight
// command for longer than the single read takes.
func (e *Engine) GetSnapshot(ctx context.Context, gameID string) (*Snapshot, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, pokererr.Wrap("BeginTx", err)
	}
	defer tx.Rollback()

	snap, err := collectSnapshot(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GetActiveGame is the get-active-game command: it returns the most
// recently started game still without an EndTime, or nil if none is open.
// CreateGame does not refuse a second open game, so older open games are
// not reported here.
func (e *Engine) GetActiveGame(ctx context.Context) (*Snapshot, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, pokererr.Wrap("BeginTx", err)
	}
	defer tx.Rollback()

	game, err := tx.GetActiveGame(ctx)
	if err != nil {
		var notFound *pokererr.NotFoundError
		if isNotFound(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	return collectSnapshot(ctx, tx, game.ID)
}

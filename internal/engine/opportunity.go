package engine

import (
	"context"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
)

// Opportunities is the set of legal actions available to one player right
// now, and the amount bounds attached to each. A field group is only
// meaningful when its Can* flag is true; a caller offering a bet slider
// should clamp to [MinAmount, MaxAmount].
type Opportunities struct {
	PlayerID string

	CanFold bool

	CanCheck bool

	CanCall    bool
	CallAmount int64 // chips the player must add to call; may be less than a full call if it is an all-in call

	CanBet   bool
	CanRaise bool
	// MinAmount/MaxAmount are the total street commitment (not the delta)
	// a Bet or Raise action may land on, e.g. a CurrentMaxBet of 100 and a
	// MinAmount of 220 means "raise to at least 220", not "raise by 220".
	MinAmount int64
	MaxAmount int64
}

// computeOpportunities is the opportunity calculator: it never touches the
// store, it only looks at the hand and player rows already loaded.
func computeOpportunities(hand *domain.Hand, player *domain.Player) *Opportunities {
	opp := &Opportunities{PlayerID: player.ID}

	if !player.IsActive || player.Action == domain.ActionFold || player.Action == domain.ActionAllIn {
		return opp
	}

	toCall := hand.CurrentMaxBet - player.ActionAmount
	stack := player.Amount

	if toCall <= 0 {
		opp.CanCheck = true
		if stack <= 0 {
			return opp
		}

		if hand.CurrentMaxBet > 0 {
			// The preflop big-blind-option case: everyone has called up to
			// CurrentMaxBet, so there is nothing left to call, but a bet is
			// already live this street — the legal reopening action is a
			// raise over it, not a fresh opening bet.
			minRaise := hand.LastRaiseAmount
			if minRaise < hand.BigBlindAmount {
				minRaise = hand.BigBlindAmount
			}
			maxTotal := player.ActionAmount + stack
			minTotal := hand.CurrentMaxBet + minRaise
			if minTotal > maxTotal {
				minTotal = maxTotal
			}
			opp.CanRaise = true
			opp.MinAmount = minTotal
			opp.MaxAmount = maxTotal
			return opp
		}

		opp.CanBet = true
		minBet := hand.BigBlindAmount
		if minBet > stack {
			minBet = stack
		}
		opp.MinAmount = player.ActionAmount + minBet
		opp.MaxAmount = player.ActionAmount + stack
		return opp
	}

	opp.CanFold = true
	if stack <= 0 {
		return opp
	}

	opp.CanCall = true
	callAmount := toCall
	if callAmount > stack {
		callAmount = stack // all-in for less than a full call
	}
	opp.CallAmount = callAmount

	if stack <= toCall {
		// Every remaining chip goes toward the call; no raise is possible.
		return opp
	}

	minRaise := hand.LastRaiseAmount
	if minRaise < hand.BigBlindAmount {
		minRaise = hand.BigBlindAmount
	}
	maxTotal := player.ActionAmount + stack
	minTotal := hand.CurrentMaxBet + minRaise
	if minTotal > maxTotal {
		minTotal = maxTotal // can only shove for less than a full raise
	}

	opp.CanRaise = true
	opp.MinAmount = minTotal
	opp.MaxAmount = maxTotal
	return opp
}

// GetOpportunities is the read-only command backing computeOpportunities:
// it loads handID and playerID and reports what playerID may legally do.
// It does not require playerID to hold the current turn — a client may ask
// what it could do before acting, or observe another seat's options.
func (e *Engine) GetOpportunities(ctx context.Context, handID, playerID string) (*Opportunities, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, pokererr.Wrap("BeginTx", err)
	}
	defer tx.Rollback()

	hand, err := tx.GetHand(ctx, handID)
	if err != nil {
		return nil, err
	}
	player, err := tx.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.GameID != hand.GameID {
		return nil, pokererr.NewDomain(pokererr.CodeGameMismatch, "player %s is not seated in the game owning hand %s", playerID, handID)
	}

	return computeOpportunities(hand, player), nil
}

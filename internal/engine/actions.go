package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
	"github.com/vctt94/holdem-engine/internal/store"
)

// applyAction is the action processor's per-type validation and state
// transition table (spec §4.2): given the legal opportunities already
// computed for player, it checks actionType/amount against them, mutates
// hand and player in place, and returns the chip delta that needs logging
// and adding to the pot.
func applyAction(hand *domain.Hand, player *domain.Player, opp *Opportunities, actionType domain.ActionType, amount int64) (int64, error) {
	switch actionType {
	case domain.ActionFold:
		player.Action = domain.ActionFold
		return 0, nil

	case domain.ActionCheck:
		if !opp.CanCheck {
			return 0, pokererr.NewDomain(pokererr.CodeOutstandingBet, "player %s cannot check with an outstanding bet of %d", player.ID, hand.CurrentMaxBet)
		}
		player.Action = domain.ActionCheck
		return 0, nil

	case domain.ActionCall:
		if !opp.CanCall {
			return 0, pokererr.NewDomain(pokererr.CodeNoOutstandingBet, "player %s has nothing to call", player.ID)
		}
		delta := opp.CallAmount
		player.Amount -= delta
		player.ActionAmount += delta
		player.AllBetSum += delta
		player.Action = domain.ActionCall
		if player.Amount == 0 {
			player.Action = domain.ActionAllIn
		}
		return delta, nil

	case domain.ActionBet:
		if !opp.CanBet {
			return 0, pokererr.NewDomain(pokererr.CodeInvalidAction, "player %s cannot open a bet here", player.ID)
		}
		if amount < opp.MinAmount || amount > opp.MaxAmount {
			return 0, pokererr.NewDomain(pokererr.CodeBetTooSmall, "bet of %d is outside [%d, %d]", amount, opp.MinAmount, opp.MaxAmount)
		}
		delta := amount - player.ActionAmount
		player.Amount -= delta
		player.ActionAmount = amount
		player.AllBetSum += delta
		hand.CurrentMaxBet = amount
		hand.LastCallAmount = amount
		hand.LastRaiseAmount = amount
		player.Action = domain.ActionBet
		if player.Amount == 0 {
			player.Action = domain.ActionAllIn
		}
		return delta, nil

	case domain.ActionRaise, domain.ActionReraise:
		if !opp.CanRaise {
			return 0, pokererr.NewDomain(pokererr.CodeInvalidAction, "player %s cannot raise here", player.ID)
		}
		if amount < opp.MinAmount || amount > opp.MaxAmount {
			return 0, pokererr.NewDomain(pokererr.CodeRaiseTooSmall, "raise to %d is outside [%d, %d]", amount, opp.MinAmount, opp.MaxAmount)
		}
		delta := amount - player.ActionAmount
		increment := amount - hand.CurrentMaxBet
		fullRaise := increment >= hand.LastRaiseAmount
		player.Amount -= delta
		player.ActionAmount = amount
		player.AllBetSum += delta
		hand.LastCallAmount = hand.CurrentMaxBet
		hand.CurrentMaxBet = amount
		if fullRaise {
			hand.LastRaiseAmount = increment
		}
		player.Action = actionType
		if player.Amount == 0 {
			player.Action = domain.ActionAllIn
		}
		return delta, nil

	case domain.ActionAllIn:
		if player.Amount <= 0 {
			return 0, pokererr.NewDomain(pokererr.CodeInsufficientChips, "player %s has no chips left to shove", player.ID)
		}
		delta := player.Amount
		newTotal := player.ActionAmount + delta
		player.ActionAmount = newTotal
		player.AllBetSum += delta
		player.Amount = 0
		player.Action = domain.ActionAllIn
		if newTotal > hand.CurrentMaxBet {
			increment := newTotal - hand.CurrentMaxBet
			if increment >= hand.LastRaiseAmount {
				hand.LastRaiseAmount = increment
			}
			hand.LastCallAmount = hand.CurrentMaxBet
			hand.CurrentMaxBet = newTotal
		}
		return delta, nil

	default:
		return 0, pokererr.NewDomain(pokererr.CodeInvalidAction, "unrecognized action type %q", actionType)
	}
}

// SubmitAction is the action processor command: it validates actionType
// against the acting player's computed opportunities, applies it, logs it,
// runs the chip-capping pass and the turn/round advancer, and returns the
// resulting snapshot — all inside one transaction under the owning game's
// lock.
func (e *Engine) SubmitAction(ctx context.Context, handID, playerID string, actionType domain.ActionType, amount int64) (*Snapshot, error) {
	gameID, err := e.resolveGameID(ctx, handID)
	if err != nil {
		return nil, err
	}

	var snap *Snapshot
	err = e.withGame(ctx, gameID, func(tx store.Tx) error {
		hand, err := tx.GetHand(ctx, handID)
		if err != nil {
			return err
		}
		game, err := tx.GetGame(ctx, hand.GameID)
		if err != nil {
			return err
		}
		if game.EndTime != nil {
			return pokererr.NewDomain(pokererr.CodeActiveGameExists, "game %s has already ended", hand.GameID)
		}
		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if player.GameID != hand.GameID {
			return pokererr.NewDomain(pokererr.CodeGameMismatch, "player %s is not seated in the game owning hand %s", playerID, handID)
		}
		if hand.CurrentPlayerTurnID != playerID {
			return pokererr.NewDomain(pokererr.CodeOutOfTurn, "it is %s's turn, not %s's", hand.CurrentPlayerTurnID, playerID)
		}
		if !canAct(player) {
			return pokererr.NewDomain(pokererr.CodePlayerInactive, "player %s cannot act", playerID)
		}

		opp := computeOpportunities(hand, player)
		delta, err := applyAction(hand, player, opp, actionType, amount)
		if err != nil {
			return err
		}
		hand.PotAmount += delta

		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		order, bettingRound := 1, 1
		if last, lastErr := tx.LastAction(ctx, handID); lastErr == nil {
			order = last.ActionOrder + 1
			bettingRound = last.BettingRound
			if last.Round != hand.CurrentRound {
				bettingRound++
			}
		} else if _, notFound := lastErr.(*pokererr.NotFoundError); !notFound {
			return lastErr
		}

		act := &domain.Action{
			ID:           uuid.NewString(),
			HandID:       handID,
			PlayerID:     playerID,
			Round:        hand.CurrentRound,
			BettingRound: bettingRound,
			ActionOrder:  order,
			ActionType:   player.Action,
			BetAmount:    delta,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.AppendAction(ctx, act); err != nil {
			return err
		}

		players, err := tx.ListPlayersByGame(ctx, hand.GameID)
		if err != nil {
			return err
		}
		if err := e.advanceAfterAction(ctx, tx, hand, players, playerID); err != nil {
			return err
		}

		snap, err = collectSnapshot(ctx, tx, hand.GameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// resolveGameID looks up a hand's owning game without holding the game
// lock — only the command body that mutates state needs to run serialized.
func (e *Engine) resolveGameID(ctx context.Context, handID string) (string, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return "", pokererr.Wrap("BeginTx", err)
	}
	defer tx.Rollback()

	hand, err := tx.GetHand(ctx, handID)
	if err != nil {
		return "", err
	}
	return hand.GameID, nil
}

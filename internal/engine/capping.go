package engine

import (
	"context"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/store"
)

// capOverbet is the chip-capping algorithm: it finds the largest street
// commitment and the second-largest, and if the largest was never matched
// by anyone else (folded players' money still counts as having matched
// it), the uncalled difference is returned to the chip stack it came from.
// This is the only place chips move from the pot back to the player who bet
// them; completeHandUncontested is the only other place the pot is paid out.
//
// It must run once a street has no more actions left to take, before the
// hand's pot is considered final for that street — running it mid-street
// would return chips a player still has the chance to call.
func capOverbet(ctx context.Context, tx store.Tx, hand *domain.Hand, players []*domain.Player) error {
	var top, second *domain.Player
	for _, p := range players {
		if p.ActionAmount <= 0 {
			continue
		}
		switch {
		case top == nil || p.ActionAmount > top.ActionAmount:
			second = top
			top = p
		case second == nil || p.ActionAmount > second.ActionAmount:
			second = p
		}
	}
	if top == nil {
		return nil
	}

	var secondAmount int64
	if second != nil {
		secondAmount = second.ActionAmount
	}
	if top.ActionAmount <= secondAmount {
		return nil
	}

	refund := top.ActionAmount - secondAmount
	top.ActionAmount = secondAmount
	top.Amount += refund
	hand.PotAmount -= refund
	if hand.CurrentMaxBet > secondAmount {
		hand.CurrentMaxBet = secondAmount
	}

	if err := tx.UpdatePlayer(ctx, top); err != nil {
		return err
	}
	return tx.UpdateHand(ctx, hand)
}

// anyUncappedOverbet reports whether capOverbet would find something to
// refund, without mutating anything. Used by the turn advancer to decide
// whether a street genuinely needs the capping pass.
func anyUncappedOverbet(players []*domain.Player) bool {
	var top, second int64
	for _, p := range players {
		switch {
		case p.ActionAmount > top:
			second = top
			top = p.ActionAmount
		case p.ActionAmount > second:
			second = p.ActionAmount
		}
	}
	return top > second
}

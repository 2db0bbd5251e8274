package engine

import (
	"context"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/store"
)

// canAct reports whether p could still take an action this hand.
func canAct(p *domain.Player) bool {
	return p.IsActive && p.Action != domain.ActionFold && p.Action != domain.ActionAllIn
}

// stillInHand reports whether p has a claim on the pot (hasn't folded).
func stillInHand(p *domain.Player) bool {
	return p.IsActive && p.Action != domain.ActionFold
}

// isStreetComplete is the turn advancer's stopping condition: every
// contestant (still in the hand, not all-in) has matched the current top
// bet and has acted at least once since the street began.
func isStreetComplete(ctx context.Context, tx store.Tx, hand *domain.Hand, players []*domain.Player) (bool, error) {
	inHand := 0
	for _, p := range players {
		if stillInHand(p) {
			inHand++
		}
	}
	if inHand <= 1 {
		return true, nil
	}

	for _, p := range players {
		if !canAct(p) {
			continue
		}
		if p.ActionAmount != hand.CurrentMaxBet {
			return false, nil
		}
		acted, err := tx.HasActedThisStreet(ctx, hand.ID, p.ID, hand.CurrentRound)
		if err != nil {
			return false, err
		}
		if !acted {
			return false, nil
		}
	}
	return true, nil
}

// nextPlayerToAct walks players (already ordered by seat) starting just
// after afterID and returns the first one still able to act. Returns "" if
// nobody can.
func nextPlayerToAct(players []*domain.Player, afterID string) string {
	start := seatIndex(players, afterID)
	if start < 0 {
		start = -1
	}
	for i := 1; i <= len(players); i++ {
		p := players[(start+i)%len(players)]
		if canAct(p) {
			return p.ID
		}
	}
	return ""
}

func seatIndex(players []*domain.Player, id string) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// advanceAfterAction is the canonical turn/round advancer: it runs after
// every accepted action, decides whether the current street is over and,
// if so, whether the hand ends outright (everyone else folded), runs the
// chip-capping refund and deals into the next street, or reaches showdown.
func (e *Engine) advanceAfterAction(ctx context.Context, tx store.Tx, hand *domain.Hand, players []*domain.Player, actingPlayerID string) error {
	for {
		complete, err := isStreetComplete(ctx, tx, hand, players)
		if err != nil {
			return err
		}
		if !complete {
			hand.CurrentPlayerTurnID = nextPlayerToAct(players, actingPlayerID)
			return tx.UpdateHand(ctx, hand)
		}

		var inHand []*domain.Player
		for _, p := range players {
			if stillInHand(p) {
				inHand = append(inHand, p)
			}
		}
		if len(inHand) <= 1 {
			return e.completeHandUncontested(ctx, tx, hand, inHand)
		}

		if anyUncappedOverbet(players) {
			if err := capOverbet(ctx, tx, hand, players); err != nil {
				return err
			}
		}

		if hand.CurrentRound == domain.RoundRiver {
			stateRoundShowdown(hand, nil)
			hand.IsChangedCurrentRound = true
			return tx.UpdateHand(ctx, hand)
		}

		advanceRound(hand)
		hand.LastRaiseAmount = hand.BigBlindAmount
		hand.IsChangedCurrentRound = true
		if err := tx.ResetStreetState(ctx, hand.GameID); err != nil {
			return err
		}
		for _, p := range players {
			if p.Action != domain.ActionAllIn && p.Action != domain.ActionFold {
				p.Action = domain.ActionNone
				p.ActionAmount = 0
			}
		}

		contestants := 0
		for _, p := range players {
			if canAct(p) {
				contestants++
			}
		}
		if contestants == 0 {
			// Nobody left who can voluntarily act: run the remaining
			// streets out with no betting, same as an all-in showdown.
			// CurrentMaxBet keeps the last betting street's (capped) top bet.
			actingPlayerID = hand.Dealer
			continue
		}

		hand.CurrentMaxBet = 0
		hand.CurrentPlayerTurnID = nextPlayerToAct(players, hand.Dealer)
		return tx.UpdateHand(ctx, hand)
	}
}

// completeHandUncontested awards the pot to the last player standing when
// everyone else has folded; no showdown, no card evaluation needed.
func (e *Engine) completeHandUncontested(ctx context.Context, tx store.Tx, hand *domain.Hand, inHand []*domain.Player) error {
	if len(inHand) == 1 {
		winner := inHand[0]
		winner.Amount += hand.PotAmount
		hand.PotAmount = 0
		if err := tx.UpdatePlayer(ctx, winner); err != nil {
			return err
		}
	}
	stateRoundShowdown(hand, nil)
	return tx.UpdateHand(ctx, hand)
}

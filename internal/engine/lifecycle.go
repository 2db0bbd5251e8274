package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
	"github.com/vctt94/holdem-engine/internal/store"
)

// CreateGame opens a new tournament session. blindTime is the number of
// seconds each blind level lasts; chips is the starting stack every seat
// receives. The blind ladder itself (GameBlind rows) is seeded separately,
// ahead of time, since it is shared across games rather than owned by one.
func (e *Engine) CreateGame(ctx context.Context, blindTime int, chips int64) (*Snapshot, error) {
	gameID := uuid.NewString()

	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game := &domain.Game{
			ID:        gameID,
			BlindTime: blindTime,
			Level:     1,
			Chips:     chips,
			StartTime: time.Now().UTC(),
		}
		if err := tx.CreateGame(ctx, game); err != nil {
			return err
		}
		var err error
		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SeatPlayer adds a new player to gameID with a full starting stack. It may
// be called between hands to add late entrants; it never touches a hand in
// progress.
func (e *Engine) SeatPlayer(ctx context.Context, gameID, name string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if game.EndTime != nil {
			return pokererr.NewDomain(pokererr.CodeActiveGameExists, "game %s has already ended", gameID)
		}

		p := &domain.Player{
			ID:        uuid.NewString(),
			GameID:    gameID,
			Name:      name,
			Amount:    game.Chips,
			IsOnline:  true,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.CreatePlayer(ctx, p); err != nil {
			return err
		}
		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// EndGame closes gameID. A game that already has a hand in progress can
// still be ended — the hand simply stops accepting further actions, since
// SubmitAction rejects actions for a game that has an end time.
func (e *Engine) EndGame(ctx context.Context, gameID string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if game.EndTime == nil {
			now := time.Now().UTC()
			game.EndTime = &now
			if err := tx.UpdateGame(ctx, game); err != nil {
				return err
			}
		}
		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// nextActiveSeatFrom returns the index of the first seat after idx (wrapping)
// still in the tournament, or -1 if none. idx may be -1 to search the whole
// table starting at seat 0.
func nextActiveSeatFrom(players []*domain.Player, idx int) int {
	n := len(players)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		c := (idx + i) % n
		if c < 0 {
			c += n
		}
		if players[c].IsActive && players[c].Amount > 0 {
			return c
		}
	}
	return -1
}

func findByID(players []*domain.Player, id string) *domain.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// seatRotation computes the dealer, small blind and big blind seats for a
// new hand (spec.md §4.1 "Seat Rotation"). prevDealerID is the previous
// hand's dealer, or "" for the table's first hand. The small blind seat is
// the literal next seat after the new dealer, not a skip-aware search: if
// that seat busted, the small blind is dead this hand (nil) rather than
// reassigned, and the big blind is the next active seat after it.
func seatRotation(players []*domain.Player, prevDealerID string) (dealerIdx int, sbID *string, bbIdx int, err error) {
	n := len(players)
	activeCount := 0
	for _, p := range players {
		if p.IsActive && p.Amount > 0 {
			activeCount++
		}
	}
	if activeCount < 2 {
		return 0, nil, 0, pokererr.NewDomain(pokererr.CodeSeatRotation, "need at least two players with chips to start a hand, have %d", activeCount)
	}

	prevDealerIdx := -1
	if prevDealerID != "" {
		prevDealerIdx = seatIndex(players, prevDealerID)
	}
	dealerIdx = nextActiveSeatFrom(players, prevDealerIdx)
	if dealerIdx < 0 {
		return 0, nil, 0, pokererr.NewDomain(pokererr.CodeSeatRotation, "no eligible dealer seat found")
	}

	if activeCount == 2 {
		sb := players[dealerIdx].ID
		sbID = &sb
		bbIdx = nextActiveSeatFrom(players, dealerIdx)
	} else {
		sbSeatIdx := (dealerIdx + 1) % n
		if players[sbSeatIdx].IsActive && players[sbSeatIdx].Amount > 0 {
			sb := players[sbSeatIdx].ID
			sbID = &sb
		}
		bbIdx = nextActiveSeatFrom(players, sbSeatIdx)
	}
	if bbIdx < 0 {
		return 0, nil, 0, pokererr.NewDomain(pokererr.CodeSeatRotation, "no eligible big blind seat found")
	}
	return dealerIdx, sbID, bbIdx, nil
}

// postBlinds debits the small blind (if any) and the big blind from their
// stacks, marks either all-in if it empties them, opens hand's betting
// state at the big blind amount, and sets the first player to act.
func postBlinds(hand *domain.Hand, players []*domain.Player, sbID *string, bbPlayer *domain.Player) {
	if sbID != nil {
		sbPlayer := findByID(players, *sbID)
		amt := hand.SmallBlindAmount
		if amt > sbPlayer.Amount {
			amt = sbPlayer.Amount
		}
		sbPlayer.Amount -= amt
		sbPlayer.ActionAmount = amt
		sbPlayer.AllBetSum += amt
		hand.PotAmount += amt
		if sbPlayer.Amount == 0 {
			sbPlayer.Action = domain.ActionAllIn
		}
	}

	bbAmt := hand.BigBlindAmount
	if bbAmt > bbPlayer.Amount {
		bbAmt = bbPlayer.Amount
	}
	bbPlayer.Amount -= bbAmt
	bbPlayer.ActionAmount = bbAmt
	bbPlayer.AllBetSum += bbAmt
	hand.PotAmount += bbAmt
	if bbPlayer.Amount == 0 {
		bbPlayer.Action = domain.ActionAllIn
	}

	hand.CurrentMaxBet = bbPlayer.ActionAmount
	hand.LastCallAmount = bbPlayer.ActionAmount
	hand.LastRaiseAmount = bbPlayer.ActionAmount
	hand.CurrentPlayerTurnID = nextPlayerToAct(players, bbPlayer.ID)
}

// resetStreetState clears every active player's per-street fields ahead of
// dealing a new hand.
func resetStreetState(players []*domain.Player) {
	for _, p := range players {
		if !p.IsActive {
			continue
		}
		p.Action = domain.ActionNone
		p.ActionAmount = 0
		p.AllBetSum = 0
	}
}

func persistActivePlayers(ctx context.Context, tx store.Tx, players []*domain.Player) error {
	for _, p := range players {
		if !p.IsActive {
			continue
		}
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// StartHand deals a hand (spec.md §4.1 start-game): the table's first hand,
// or a later one rotated off the previous hand's dealer. It rotates the
// dealer button, assigns small/big blind seats — applying the
// dead-small-blind rule if needed — posts blinds, and sets the first
// player to act. No ante is collected here, on any hand: in this design the
// ante is only ever debited from the big blind, and only by NextHand — the
// table's first hand never pays one.
func (e *Engine) StartHand(ctx context.Context, gameID string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if game.EndTime != nil {
			return pokererr.NewDomain(pokererr.CodeActiveGameExists, "game %s has already ended", gameID)
		}

		players, err := tx.ListPlayersByGame(ctx, gameID)
		if err != nil {
			return err
		}

		prevDealerID := ""
		if prevHand, err := tx.LastHandForGame(ctx, gameID); err == nil {
			prevDealerID = prevHand.Dealer
		} else if _, notFound := err.(*pokererr.NotFoundError); !notFound {
			return err
		}

		dealerIdx, sbID, bbIdx, err := seatRotation(players, prevDealerID)
		if err != nil {
			return err
		}

		blind, err := tx.GetGameBlind(ctx, game.Level)
		if err != nil {
			return err
		}

		hand := &domain.Hand{
			ID:               uuid.NewString(),
			GameID:           gameID,
			Level:            game.Level,
			Dealer:           players[dealerIdx].ID,
			SmallBlind:       sbID,
			BigBlind:         players[bbIdx].ID,
			Ante:             blind.Ante,
			SmallBlindAmount: blind.SmallBlindAmount,
			BigBlindAmount:   blind.BigBlindAmount,
			CurrentRound:     domain.RoundPreflop,
			CreatedAt:        time.Now().UTC(),
		}

		resetStreetState(players)
		postBlinds(hand, players, sbID, players[bbIdx])

		if err := persistActivePlayers(ctx, tx, players); err != nil {
			return err
		}
		if err := tx.CreateHand(ctx, hand); err != nil {
			return err
		}

		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Winner is one share of the pot credited by NextHand. The caller supplies
// winners directly (spec.md §4.1 step 1); there is no check that shares
// sum to the pot — showdown hand evaluation is out of scope.
type Winner struct {
	PlayerID string
	Amount   int64
}

// rebuyPlayer restores playerID to a full starting stack and clears its
// busted state — the shared core of both NextHand's rebuyPlayerIds list
// (spec.md §4.1 step 2) and the standalone Rebuy command.
func rebuyPlayer(ctx context.Context, tx store.Tx, game *domain.Game, playerID string) error {
	p, err := tx.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if p.GameID != game.ID {
		return pokererr.NewDomain(pokererr.CodeGameMismatch, "player %s is not seated in game %s", playerID, game.ID)
	}
	p.Amount = game.Chips
	p.IsActive = true
	p.InactiveHandID = nil
	p.Action = domain.ActionNone
	p.ActionAmount = 0
	return tx.UpdatePlayer(ctx, p)
}

// NextHand implements spec.md §4.1's handle-next-hand algorithm: credit
// winners, process rebuys, advance the blind level, eliminate anyone left
// at zero chips, then rotate the dealer button and deal the next hand.
func (e *Engine) NextHand(ctx context.Context, gameID, lastHandID string, winners []Winner, newLevel int, rebuyPlayerIds []string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if game.EndTime != nil {
			return pokererr.NewDomain(pokererr.CodeActiveGameExists, "game %s has already ended", gameID)
		}
		lastHand, err := tx.GetHand(ctx, lastHandID)
		if err != nil {
			return err
		}
		if lastHand.GameID != gameID {
			return pokererr.NewDomain(pokererr.CodeGameMismatch, "hand %s does not belong to game %s", lastHandID, gameID)
		}

		// 1. Credit each winner's stated share.
		for _, w := range winners {
			winner, err := tx.GetPlayer(ctx, w.PlayerID)
			if err != nil {
				return err
			}
			winner.Amount += w.Amount
			if err := tx.UpdatePlayer(ctx, winner); err != nil {
				return err
			}
		}

		// 2. Rebuys restore a full stack and rejoin the tournament.
		for _, id := range rebuyPlayerIds {
			if err := rebuyPlayer(ctx, tx, game, id); err != nil {
				return err
			}
		}

		// 3. Persist the new blind level.
		game.Level = newLevel
		if err := tx.UpdateGame(ctx, game); err != nil {
			return err
		}

		players, err := tx.ListPlayersByGame(ctx, gameID)
		if err != nil {
			return err
		}

		// 4. Anyone still at zero chips, not already marked busted, is
		// eliminated as of lastHandID — this freezes their seat slot for
		// rotation accounting without removing the row.
		for _, p := range players {
			if p.Amount == 0 && p.InactiveHandID == nil {
				p.IsActive = false
				handID := lastHandID
				p.InactiveHandID = &handID
				if err := tx.UpdatePlayer(ctx, p); err != nil {
					return err
				}
			}
		}

		// 5. Rotate the dealer button off the previous hand's dealer.
		dealerIdx, sbID, bbIdx, err := seatRotation(players, lastHand.Dealer)
		if err != nil {
			return err
		}

		blind, err := tx.GetGameBlind(ctx, game.Level)
		if err != nil {
			return err
		}

		hand := &domain.Hand{
			ID:               uuid.NewString(),
			GameID:           gameID,
			Level:            game.Level,
			Dealer:           players[dealerIdx].ID,
			SmallBlind:       sbID,
			BigBlind:         players[bbIdx].ID,
			Ante:             blind.Ante,
			SmallBlindAmount: blind.SmallBlindAmount,
			BigBlindAmount:   blind.BigBlindAmount,
			CurrentRound:     domain.RoundPreflop,
			CreatedAt:        time.Now().UTC(),
		}

		// 6. The big blind alone pays this hand's ante — debited before the
		// street-state reset below, which is why it never shows up in
		// all_bet_sum (a repo-specific quirk spec.md §9 says to preserve).
		bbPlayer := players[bbIdx]
		if blind.Ante > 0 {
			ante := blind.Ante
			if ante > bbPlayer.Amount {
				ante = bbPlayer.Amount
			}
			bbPlayer.Amount -= ante
			hand.PotAmount += ante
		}

		// 7. Reset every active player's street state for the new hand.
		resetStreetState(players)

		// 8. Post small and big blind.
		postBlinds(hand, players, sbID, bbPlayer)

		if err := persistActivePlayers(ctx, tx, players); err != nil {
			return err
		}
		if err := tx.CreateHand(ctx, hand); err != nil {
			return err
		}

		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Rebuy is the standalone rebuy command (spec.md §6): restores playerID to
// a full stack between hands, independent of the bulk rebuyPlayerIds list
// NextHand also accepts.
func (e *Engine) Rebuy(ctx context.Context, gameID, handID, playerID string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withGame(ctx, gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if game.EndTime != nil {
			return pokererr.NewDomain(pokererr.CodeActiveGameExists, "game %s has already ended", gameID)
		}
		hand, err := tx.GetHand(ctx, handID)
		if err != nil {
			return err
		}
		if hand.GameID != gameID {
			return pokererr.NewDomain(pokererr.CodeGameMismatch, "hand %s does not belong to game %s", handID, gameID)
		}
		if err := rebuyPlayer(ctx, tx, game, playerID); err != nil {
			return err
		}
		snap, err = collectSnapshot(ctx, tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

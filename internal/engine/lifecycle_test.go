package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdem-engine/internal/domain"
)

func TestStartHandPostsBlindsCorrectly(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	snap := seatPlayers(t, e, 3, 1000)
	snap, err := e.StartHand(ctx, snap.GameID)
	require.NoError(t, err)
	require.NotNil(t, snap.Hand)

	byName := make(map[string]PlayerView)
	for _, p := range snap.Players {
		byName[p.Name] = p
	}

	require.Equal(t, byName["alice"].ID, snap.Hand.Dealer)
	require.NotNil(t, snap.Hand.SmallBlind)
	require.Equal(t, byName["bob"].ID, *snap.Hand.SmallBlind)
	require.Equal(t, byName["carol"].ID, snap.Hand.BigBlind)

	require.Equal(t, int64(1000), byName["alice"].Amount)
	require.Equal(t, int64(975), byName["bob"].Amount)
	require.Equal(t, int64(950), byName["carol"].Amount)

	require.Equal(t, int64(75), snap.Hand.PotAmount)
	require.Equal(t, int64(50), snap.Hand.CurrentMaxBet)
	require.Equal(t, byName["alice"].ID, snap.Hand.CurrentPlayerTurnID)
	require.Equal(t, domain.RoundPreflop, snap.Hand.CurrentRound)
}

func TestStartHandDeadSmallBlindAfterBust(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	snap := seatPlayers(t, e, 4, 1000)
	byName := make(map[string]PlayerView)
	for _, p := range snap.Players {
		byName[p.Name] = p
	}

	// Hand 1: alice is dealer (first hand, seat order).
	snap, err := e.StartHand(ctx, snap.GameID)
	require.NoError(t, err)
	require.Equal(t, byName["alice"].ID, snap.Hand.Dealer)

	// Carol busts out between hands.
	carol, err := st.GetPlayer(ctx, byName["carol"].ID)
	require.NoError(t, err)
	carol.Amount = 0
	require.NoError(t, st.UpdatePlayer(ctx, carol))

	// Hand 2: the button moves to bob (next live seat after alice). The
	// literal next seat after bob is carol's — busted — so the small
	// blind is dead this hand and dave posts the big blind alone.
	snap, err = e.StartHand(ctx, snap.GameID)
	require.NoError(t, err)
	require.Equal(t, byName["bob"].ID, snap.Hand.Dealer)
	require.Nil(t, snap.Hand.SmallBlind)
	require.Equal(t, byName["dave"].ID, snap.Hand.BigBlind)
}

func TestStartHandRejectsWithFewerThanTwoPlayers(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	snap := seatPlayers(t, e, 1, 1000)
	_, err := e.StartHand(ctx, snap.GameID)
	require.Error(t, err)
}

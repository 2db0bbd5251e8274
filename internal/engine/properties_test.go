package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdem-engine/internal/domain"
)

// TestMinRaiseDoesNotShrinkAfterShortAllIn exercises the min-raise
// monotonicity property: a short all-in raise moves the top bet up but must
// not lower the minimum size of the next legal raise.
func TestMinRaiseDoesNotShrinkAfterShortAllIn(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	snap := seatPlayers(t, e, 3, 1000)
	names := byName(snap)

	// Give bob a short stack before the hand is dealt: just enough to call
	// alice's upcoming open and still raise, but not by a full raise.
	bob, err := st.GetPlayer(ctx, names["bob"].ID)
	require.NoError(t, err)
	bob.Amount = 230
	require.NoError(t, st.UpdatePlayer(ctx, bob))

	snap, err = e.StartHand(ctx, snap.GameID)
	require.NoError(t, err)
	handID := snap.Hand.ID

	// alice (dealer/UTG three-handed) opens to 200: a full raise over the
	// 50 big blind, so LastRaiseAmount becomes 150 (200-50).
	snap, err = e.SubmitAction(ctx, handID, names["alice"].ID, domain.ActionRaise, 200)
	require.NoError(t, err)
	require.Equal(t, int64(200), snap.Hand.CurrentMaxBet)
	require.Equal(t, int64(150), snap.Hand.LastRaiseAmount)

	// bob, already in for the 25 small blind, shoves his remaining 205 —
	// a total commitment of 230, only a 30-chip raise over alice's 200.
	// Short of a full raise, so it raises CurrentMaxBet but must not lower
	// LastRaiseAmount.
	snap, err = e.SubmitAction(ctx, handID, names["bob"].ID, domain.ActionAllIn, 0)
	require.NoError(t, err)
	require.Equal(t, int64(230), snap.Hand.CurrentMaxBet)
	require.Equal(t, int64(150), snap.Hand.LastRaiseAmount)

	// carol (big blind) now faces a raise to 230. Since the last full raise
	// was still 150, the next legal raise must reach at least 230+150=380,
	// not 230+30=260.
	opp, err := e.GetOpportunities(ctx, handID, names["carol"].ID)
	require.NoError(t, err)
	require.True(t, opp.CanRaise)
	require.Equal(t, int64(380), opp.MinAmount)
}

// TestActionLogRecordsEveryAction exercises action-log totality: every
// accepted action is appended before the turn advancer runs, in increasing
// ActionOrder, and HasActedThisStreet reflects exactly the players who have
// acted since the street began.
func TestActionLogRecordsEveryAction(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	snap := seatPlayers(t, e, 3, 1000)
	snap, err := e.StartHand(ctx, snap.GameID)
	require.NoError(t, err)
	names := byName(snap)
	handID := snap.Hand.ID

	tx, err := st.BeginTx(ctx)
	require.NoError(t, err)
	acted, err := tx.HasActedThisStreet(ctx, handID, names["alice"].ID, domain.RoundPreflop)
	require.NoError(t, err)
	require.False(t, acted, "alice has not acted yet this street")
	require.NoError(t, tx.Rollback())

	_, err = e.SubmitAction(ctx, handID, names["alice"].ID, domain.ActionCall, 0)
	require.NoError(t, err)
	_, err = e.SubmitAction(ctx, handID, names["bob"].ID, domain.ActionCall, 0)
	require.NoError(t, err)
	snap, err = e.SubmitAction(ctx, handID, names["carol"].ID, domain.ActionCheck, 0)
	require.NoError(t, err)
	require.Equal(t, domain.RoundFlop, snap.Hand.CurrentRound)

	tx, err = st.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	for _, name := range []string{"alice", "bob", "carol"} {
		acted, err := tx.HasActedThisStreet(ctx, handID, names[name].ID, domain.RoundPreflop)
		require.NoError(t, err)
		require.True(t, acted, "%s should have a logged preflop action", name)

		acted, err = tx.HasActedThisStreet(ctx, handID, names[name].ID, domain.RoundFlop)
		require.NoError(t, err)
		require.False(t, acted, "%s has not acted on the new street yet", name)
	}

	types, err := tx.DistinctActionTypes(ctx, handID, domain.RoundPreflop)
	require.NoError(t, err)
	require.True(t, types[domain.ActionCall])
	require.True(t, types[domain.ActionCheck])
	require.False(t, types[domain.ActionFold])

	last, err := tx.LastAction(ctx, handID)
	require.NoError(t, err)
	require.Equal(t, 3, last.ActionOrder)
	require.Equal(t, names["carol"].ID, last.PlayerID)
	require.Equal(t, domain.RoundPreflop, last.Round)
}

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/pokererr"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetGame(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := &domain.Game{
		ID:        "game-1",
		BlindTime: 600,
		Level:     1,
		Chips:     10000,
		StartTime: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateGame(ctx, g))

	got, err := s.GetGame(ctx, "game-1")
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)
	require.Equal(t, g.Chips, got.Chips)
	require.Nil(t, got.EndTime)

	_, err = s.GetGame(ctx, "missing")
	require.Error(t, err)
	var notFound *pokererr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetActiveGameOnlyReturnsOpenGame(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	closed := time.Now().UTC()
	g1 := &domain.Game{ID: "g1", Chips: 1000, StartTime: time.Now().UTC().Add(-time.Hour), EndTime: &closed}
	g2 := &domain.Game{ID: "g2", Chips: 2000, StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateGame(ctx, g1))
	require.NoError(t, s.CreateGame(ctx, g2))

	got, err := s.GetActiveGame(ctx)
	require.NoError(t, err)
	require.Equal(t, "g2", got.ID)
}

func TestPlayerCRUDAndStreetReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	game := &domain.Game{ID: "g1", Chips: 1000, StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateGame(ctx, game))

	p1 := &domain.Player{ID: "p1", GameID: "g1", Name: "alice", Amount: 1000, IsActive: true, CreatedAt: time.Now().UTC()}
	p2 := &domain.Player{ID: "p2", GameID: "g1", Name: "bob", Amount: 1000, IsActive: true,
		Action: domain.ActionAllIn, ActionAmount: 1000, CreatedAt: time.Now().UTC().Add(time.Millisecond)}
	require.NoError(t, s.CreatePlayer(ctx, p1))
	require.NoError(t, s.CreatePlayer(ctx, p2))

	p1.Action = domain.ActionBet
	p1.ActionAmount = 200
	require.NoError(t, s.UpdatePlayer(ctx, p1))

	require.NoError(t, s.IncrementPlayerAmount(ctx, "p1", -200))

	got, err := s.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(800), got.Amount)
	require.Equal(t, domain.ActionBet, got.Action)

	list, err := s.ListPlayersByGame(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "p1", list[0].ID)
	require.Equal(t, "p2", list[1].ID)

	require.NoError(t, s.ResetStreetState(ctx, "g1"))

	afterP1, err := s.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, domain.ActionNone, afterP1.Action)
	require.Equal(t, int64(0), afterP1.ActionAmount)

	// all-in player is untouched by a street reset.
	afterP2, err := s.GetPlayer(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, domain.ActionAllIn, afterP2.Action)
	require.Equal(t, int64(1000), afterP2.ActionAmount)
}

func TestHandLifecycleAndActionLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	game := &domain.Game{ID: "g1", Chips: 1000, StartTime: time.Now().UTC()}
	require.NoError(t, s.CreateGame(ctx, game))

	sb := "p1"
	h := &domain.Hand{
		ID: "h1", GameID: "g1", Level: 1, Dealer: "p1", SmallBlind: &sb, BigBlind: "p2",
		CurrentPlayerTurnID: "p1", Ante: 0, SmallBlindAmount: 5, BigBlindAmount: 10,
		CurrentRound: domain.RoundPreflop, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateHand(ctx, h))

	h.CurrentMaxBet = 10
	h.CurrentPlayerTurnID = "p2"
	require.NoError(t, s.UpdateHand(ctx, h))

	got, err := s.GetHand(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, int64(10), got.CurrentMaxBet)
	require.Equal(t, "p2", got.CurrentPlayerTurnID)
	require.NotNil(t, got.SmallBlind)
	require.Equal(t, "p1", *got.SmallBlind)

	last, err := s.LastHandForGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "h1", last.ID)

	a1 := &domain.Action{ID: "a1", HandID: "h1", PlayerID: "p1", Round: domain.RoundPreflop,
		ActionOrder: 1, ActionType: domain.ActionBet, BetAmount: 10, CreatedAt: time.Now().UTC()}
	a2 := &domain.Action{ID: "a2", HandID: "h1", PlayerID: "p2", Round: domain.RoundPreflop,
		ActionOrder: 2, ActionType: domain.ActionCall, BetAmount: 10, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.AppendAction(ctx, a1))
	require.NoError(t, s.AppendAction(ctx, a2))

	lastAction, err := s.LastAction(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "a2", lastAction.ID)

	sum, err := s.SumBetAmount(ctx, "h1", "p1", nil)
	require.NoError(t, err)
	require.Equal(t, int64(10), sum)

	bets, err := s.BetsThisStreet(ctx, "h1", domain.RoundPreflop)
	require.NoError(t, err)
	require.Equal(t, int64(10), bets["p1"])
	require.Equal(t, int64(10), bets["p2"])

	types, err := s.DistinctActionTypes(ctx, "h1", domain.RoundPreflop)
	require.NoError(t, err)
	require.True(t, types[domain.ActionBet])
	require.True(t, types[domain.ActionCall])

	acted, err := s.HasActedThisStreet(ctx, "h1", "p1", domain.RoundPreflop)
	require.NoError(t, err)
	require.True(t, acted)

	acted, err = s.HasActedThisStreet(ctx, "h1", "p1", domain.RoundFlop)
	require.NoError(t, err)
	require.False(t, acted)
}

func TestGetGameBlindNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetGameBlind(context.Background(), 99)
	require.Error(t, err)
}

func TestTransactionRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	g := &domain.Game{ID: "g1", Chips: 500, StartTime: time.Now().UTC()}
	require.NoError(t, tx.CreateGame(ctx, g))
	require.NoError(t, tx.Rollback())

	_, err = s.GetGame(ctx, "g1")
	require.Error(t, err)
}

func TestTransactionCommit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	g := &domain.Game{ID: "g1", Chips: 500, StartTime: time.Now().UTC()}
	require.NoError(t, tx.CreateGame(ctx, g))
	require.NoError(t, tx.Commit())

	got, err := s.GetGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, int64(500), got.Chips)
}

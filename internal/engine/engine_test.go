package engine

import (
	"context"
	"os"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/store"
	"github.com/vctt94/holdem-engine/internal/store/sqlite"
)

func createTestLogger() slog.Logger {
	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("test")
	log.SetLevel(slog.LevelError) // Reduce noise in tests
	return log
}

// newTestEngine returns an Engine over a fresh in-memory sqlite store with
// levels 1-3 of a simple blind ladder seeded in.
func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	st, err := sqlite.New(":memory:", createTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	ladder := []*domain.GameBlind{
		{Level: 1, SmallBlindAmount: 25, BigBlindAmount: 50},
		{Level: 2, SmallBlindAmount: 50, BigBlindAmount: 100},
		{Level: 3, SmallBlindAmount: 75, BigBlindAmount: 150, Ante: 10},
	}
	for _, b := range ladder {
		require.NoError(t, st.UpsertGameBlind(ctx, b))
	}

	return New(st, createTestLogger()), st
}

// seatPlayers creates a game with n players, each with the given starting
// stack, and returns the snapshot after seating.
func seatPlayers(t *testing.T, e *Engine, n int, stack int64) *Snapshot {
	t.Helper()
	ctx := context.Background()

	snap, err := e.CreateGame(ctx, 600, stack)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		snap, err = e.SeatPlayer(ctx, snap.GameID, playerName(i))
		require.NoError(t, err)
	}
	return snap
}

func playerName(i int) string {
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	if i < len(names) {
		return names[i]
	}
	return "player"
}

// Package engine implements the betting engine core: the action processor,
// the turn/round advancer, the chip-capping refund, and the opportunity
// calculator, all driven through the store.Store repository contract. Every
// exported command that changes state holds a per-game lock and, under it,
// runs in one store transaction, so two goroutines can never interleave
// such commands against the same game. The read-only commands take no lock.
package engine

import (
	"context"
	"sync"

	"github.com/decred/slog"

	"github.com/vctt94/holdem-engine/internal/pokererr"
	"github.com/vctt94/holdem-engine/internal/store"
)

// Engine is the entry point for every command in this package. It holds no
// poker state itself — all state lives in the Store — only the plumbing
// needed to serialize access to it.
type Engine struct {
	store store.Store
	log   slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New builds an Engine over store, logging through log. log may be nil, in
// which case logging is a no-op (slog.Disabled).
func New(st store.Store, log slog.Logger) *Engine {
	if log == nil {
		log = slog.Disabled
	}
	return &Engine{
		store: st,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// gameLock returns the mutex guarding gameID, creating it on first use.
// Locks are never removed: a tournament's lifetime is bounded by the
// process, and the map stays small (one entry per game ever played).
func (e *Engine) gameLock(gameID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	m, ok := e.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[gameID] = m
	}
	return m
}

// withGame serializes fn against every other command touching gameID and
// runs it inside one store transaction. fn's error determines whether the
// transaction commits: a nil error commits, anything else rolls back. A
// rollback never need to be retried by the caller — pokererr.DomainError
// and pokererr.NotFoundError mean the command was rejected outright, not
// that it partially applied.
func (e *Engine) withGame(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	lock := e.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return pokererr.Wrap("BeginTx", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.log.Warnf("rollback after %v failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return pokererr.Wrap("Commit", err)
	}
	return nil
}

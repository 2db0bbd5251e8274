// Package store defines the repository contract the engine depends on
// (spec §4.6): transactional CRUD for Game/GameBlind/Player/Hand/Action,
// targeted updaters, and aggregate queries over the action log.
// internal/store/sqlite provides the only
// concrete implementation this module ships; persistence backend details
// beyond that (pooling, migrations) are explicitly out of scope (spec §1).
package store

import (
	"context"

	"github.com/vctt94/holdem-engine/internal/domain"
)

// Querier is the set of operations available both outside and inside a
// transaction.
type Querier interface {
	// Game
	CreateGame(ctx context.Context, g *domain.Game) error
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	GetActiveGame(ctx context.Context) (*domain.Game, error)
	UpdateGame(ctx context.Context, g *domain.Game) error

	// GameBlind
	GetGameBlind(ctx context.Context, level int) (*domain.GameBlind, error)
	UpsertGameBlind(ctx context.Context, b *domain.GameBlind) error

	// Player
	CreatePlayer(ctx context.Context, p *domain.Player) error
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	ListPlayersByGame(ctx context.Context, gameID string) ([]*domain.Player, error)
	UpdatePlayer(ctx context.Context, p *domain.Player) error
	IncrementPlayerAmount(ctx context.Context, playerID string, delta int64) error
	ResetStreetState(ctx context.Context, gameID string) error // action='', action_amount=0 for active players who are neither folded nor all-in

	// Hand
	CreateHand(ctx context.Context, h *domain.Hand) error
	GetHand(ctx context.Context, id string) (*domain.Hand, error)
	UpdateHand(ctx context.Context, h *domain.Hand) error
	LastHandForGame(ctx context.Context, gameID string) (*domain.Hand, error)

	// Action log
	AppendAction(ctx context.Context, a *domain.Action) error
	LastAction(ctx context.Context, handID string) (*domain.Action, error)
	SumBetAmount(ctx context.Context, handID, playerID string, round *domain.Round) (int64, error)
	BetsThisStreet(ctx context.Context, handID string, round domain.Round) (map[string]int64, error)
	DistinctActionTypes(ctx context.Context, handID string, round domain.Round) (map[domain.ActionType]bool, error)
	HasActedThisStreet(ctx context.Context, handID, playerID string, round domain.Round) (bool, error)
}

// Tx is a Querier bound to one transaction.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// Store is the top-level repository handle. BeginTx opens a transactional
// boundary; the engine wraps every command dispatch in exactly one.
type Store interface {
	Querier
	BeginTx(ctx context.Context) (Tx, error)
}

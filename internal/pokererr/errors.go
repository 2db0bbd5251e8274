// Package pokererr implements the three error kinds the engine surfaces
// (spec §7): DomainError and NotFoundError are user-facing rule violations
// that never mutate state; Infrastructure wraps an opaque store failure.
package pokererr

import (
	"errors"
	"fmt"
)

// Code identifies a stable, client-facing error reason. Transport layers
// switch on Code rather than parsing Error() strings.
type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeGameMismatch      Code = "game_mismatch"
	CodePlayerInactive    Code = "player_inactive"
	CodeOutOfTurn         Code = "out_of_turn"
	CodeInvalidAction     Code = "invalid_action"
	CodeBetTooSmall       Code = "bet_too_small"
	CodeRaiseTooSmall     Code = "raise_too_small"
	CodeInsufficientChips Code = "insufficient_chips"
	CodeNoOutstandingBet  Code = "no_outstanding_bet"
	CodeOutstandingBet    Code = "outstanding_bet"
	CodeConflictingTurn   Code = "conflicting_turn"
	CodeActiveGameExists  Code = "active_game_exists"
	CodeSeatRotation      Code = "seat_rotation"
)

// DomainError is a user-facing rule violation. It never leaves a
// transaction half-applied.
type DomainError struct {
	Code    Code
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomain builds a DomainError.
func NewDomain(code Code, format string, args ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced id was absent. Handled identically to a
// DomainError by callers, but kept as a distinct type so callers can tell
// "bad request" apart from "stale reference" if they want to.
type NotFoundError struct {
	Code    Code
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFound builds a NotFoundError.
func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// Infrastructure wraps a store/transport failure. It carries no Code —
// the underlying error is never inspected by callers for business logic,
// only logged.
type Infrastructure struct {
	Op  string
	Err error
}

func (e *Infrastructure) Error() string {
	return fmt.Sprintf("infrastructure error during %s: %v", e.Op, e.Err)
}

func (e *Infrastructure) Unwrap() error {
	return e.Err
}

// Wrap builds an Infrastructure error, or returns nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Infrastructure{Op: op, Err: err}
}

// IsDomain reports whether err (or something it wraps) is a DomainError or
// NotFoundError — the two kinds that must never trigger a retry.
func IsDomain(err error) bool {
	var domainErr *DomainError
	var notFound *NotFoundError
	return errors.As(err, &domainErr) || errors.As(err, &notFound)
}

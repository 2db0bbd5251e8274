package engine

import (
	"github.com/vctt94/holdem-engine/internal/domain"
	"github.com/vctt94/holdem-engine/internal/statemachine"
)

// The five streets are modeled the same way the teacher models a player's
// lifecycle: one state function per stage, each doing that stage's entry
// work on the live *domain.Hand and returning the function for the stage
// that follows. The turn advancer never walks these step by step — it
// jumps straight to the target stage's function — but keeping every
// transition as a named Fn[domain.Hand] means a caller inspecting
// roundStateFor(hand.CurrentRound) gets the same state back every time,
// mirroring the player state machine's GetGameState/SetGameState pattern.
type roundState = statemachine.Fn[domain.Hand]

func stateRoundPreflop(h *domain.Hand, cb statemachine.Callback) roundState {
	h.CurrentRound = domain.RoundPreflop
	if cb != nil {
		cb("preflop", statemachine.Entered)
	}
	return stateRoundFlop
}

func stateRoundFlop(h *domain.Hand, cb statemachine.Callback) roundState {
	h.CurrentRound = domain.RoundFlop
	if cb != nil {
		cb("flop", statemachine.Entered)
	}
	return stateRoundTurn
}

func stateRoundTurn(h *domain.Hand, cb statemachine.Callback) roundState {
	h.CurrentRound = domain.RoundTurn
	if cb != nil {
		cb("turn", statemachine.Entered)
	}
	return stateRoundRiver
}

func stateRoundRiver(h *domain.Hand, cb statemachine.Callback) roundState {
	h.CurrentRound = domain.RoundRiver
	if cb != nil {
		cb("river", statemachine.Entered)
	}
	return stateRoundShowdown
}

func stateRoundShowdown(h *domain.Hand, cb statemachine.Callback) roundState {
	h.CurrentRound = domain.RoundShowdown
	h.CurrentPlayerTurnID = ""
	if cb != nil {
		cb("showdown", statemachine.Entered)
	}
	return nil
}

func roundStateFor(r domain.Round) roundState {
	switch r {
	case domain.RoundPreflop:
		return stateRoundPreflop
	case domain.RoundFlop:
		return stateRoundFlop
	case domain.RoundTurn:
		return stateRoundTurn
	case domain.RoundRiver:
		return stateRoundRiver
	default:
		return stateRoundShowdown
	}
}

// advanceRound moves hand to the street following its current one by
// dispatching straight into that street's state function.
func advanceRound(h *domain.Hand) {
	next := roundStateFor(h.CurrentRound.Next())
	next(h, nil)
}

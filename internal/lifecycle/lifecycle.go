// Package lifecycle encodes the match state machine:
//
//	SCHEDULED → ACTIVE → FINISHED → REVIEWED
//
// The machine is strictly linear. There are no skips, no reverse moves and no
// cancellation; REVIEWED is terminal.
package lifecycle

import (
	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/model"
)

// transitions maps each state to the states it may move to.
var transitions = map[model.MatchStatus][]model.MatchStatus{
	model.MatchScheduled: {model.MatchActive},
	model.MatchActive:    {model.MatchFinished},
	model.MatchFinished:  {model.MatchReviewed},
	model.MatchReviewed:  nil,
}

// Initial is the state every new match starts in.
const Initial = model.MatchScheduled

// Known reports whether s belongs to the closed set of statuses.
func Known(s model.MatchStatus) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func Terminal(s model.MatchStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to model.MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns an InvalidTransition error unless from → to is legal.
func Check(from, to model.MatchStatus) error {
	if !CanTransition(from, to) {
		return apperror.InvalidTransition(string(from), string(to))
	}
	return nil
}

// Next returns the single successor of s, or false when s is terminal or unknown.
func Next(s model.MatchStatus) (model.MatchStatus, bool) {
	next := transitions[s]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// ManualTarget reports whether a participant may request a move into s
// directly. REVIEWED is reached only by submitting reviews.
func ManualTarget(s model.MatchStatus) bool {
	return s == model.MatchActive || s == model.MatchFinished
}

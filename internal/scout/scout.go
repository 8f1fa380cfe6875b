// Package scout produces the short text report shown on a player's profile.
//
// The text comes from an external Generator when one is configured. Every
// failure of the generator is absorbed here: Reporter.Report always returns
// displayable text and never an error.
package scout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pitchperfect/internal/apperror"
)

// Stats is the subset of a player's record a report is written from.
type Stats struct {
	Name    string
	Skill   float64
	Manner  float64
	Matches int
}

// Generator writes a report from stats. Implementations return an error
// wrapping apperror.ErrCollaboratorUnavailable when the backend fails.
type Generator interface {
	Generate(ctx context.Context, s Stats) (string, error)
}

// Outcome labels how a report was produced.
type Outcome string

const (
	OutcomeGenerated    Outcome = "generated"
	OutcomeUnconfigured Outcome = "fallback_unconfigured"
	OutcomeFailed       Outcome = "fallback_failed"
	OutcomeEmpty        Outcome = "fallback_empty"
)

const (
	busyText        = "Our scouts are currently busy watching another match. Check back later!"
	unavailableText = "Scout report currently unavailable."
)

// unconfiguredText is returned when no generator is wired in.
func unconfiguredText(s Stats) string {
	return fmt.Sprintf("⚽ Scout Report for %s: With %.1f/5.0 skill and %.1f/5.0 sportsmanship over %d matches, this player shows great potential! (AI reports require a Gemini API key)",
		s.Name, s.Skill, s.Manner, s.Matches)
}

// Recorder observes report outcomes. metrics.Manager satisfies it.
type Recorder interface {
	ScoutReport(outcome string)
}

type Reporter struct {
	gen      Generator
	recorder Recorder
	logger   *slog.Logger
}

// NewReporter returns a Reporter. gen and recorder may be nil.
func NewReporter(gen Generator, recorder Recorder, logger *slog.Logger) *Reporter {
	return &Reporter{gen: gen, recorder: recorder, logger: logger}
}

// Report returns the scout text for s.
func (r *Reporter) Report(ctx context.Context, s Stats) string {
	text, outcome := r.report(ctx, s)
	if r.recorder != nil {
		r.recorder.ScoutReport(string(outcome))
	}
	return text
}

func (r *Reporter) report(ctx context.Context, s Stats) (string, Outcome) {
	if r.gen == nil {
		return unconfiguredText(s), OutcomeUnconfigured
	}

	text, err := r.gen.Generate(ctx, s)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, context.Canceled) {
			level = slog.LevelInfo
		}
		r.logger.Log(ctx, level, "scout report generation failed",
			"player", s.Name,
			"collaborator_unavailable", errors.Is(err, apperror.ErrCollaboratorUnavailable),
			"error", err,
		)
		return busyText, OutcomeFailed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return unavailableText, OutcomeEmpty
	}
	return text, OutcomeGenerated
}

// Prompt is the instruction sent to a text generator for s.
func Prompt(s Stats) string {
	return fmt.Sprintf(`You are a professional futsal scout. Write a short, energetic, and engaging 2-sentence scout report for a player named %s.

Here are their stats (out of 5):
- Skill Level: %.1f/5.0
- Sportsmanship/Manner: %.1f/5.0
- Experience: %d matches played.

If skill is high and manner is low, warn them about attitude.
If manner is high and skill is low, praise their teamwork but suggest practice.
If both are high, call them a "World Class Prospect".
If both are low, encourage them to keep trying.

Keep it fun and sporty.`, s.Name, s.Skill, s.Manner, s.Matches)
}

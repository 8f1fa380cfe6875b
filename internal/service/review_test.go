package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/rating"
	"github.com/sakif/pitchperfect/internal/repository/memory"
)

type reviewEnv struct {
	f        fixture
	matches  *MatchService
	reviews  *ReviewService
	recorder *fakeRecorder
}

func newReviewEnv(t *testing.T, responder rating.Responder) reviewEnv {
	t.Helper()
	f := newFixture(t)
	rec := &fakeRecorder{}
	reviews := NewReviewService(f.db, responder, rec, testLogger())
	reviews.now = func() time.Time { return kickoff.Add(2 * time.Hour) }
	return reviewEnv{
		f:        f,
		matches:  NewMatchService(f.db, rec, testLogger()),
		reviews:  reviews,
		recorder: rec,
	}
}

// snapshot captures everything a failed submission must leave untouched.
type snapshot struct {
	matches []model.Match
	users   []model.User
}

func takeSnapshot(t *testing.T, db *memory.DB, ids ...string) snapshot {
	t.Helper()
	matches, err := db.ListMatches(context.Background())
	require.NoError(t, err)
	users, err := db.GetUsersByIDs(context.Background(), ids)
	require.NoError(t, err)
	return snapshot{matches: matches, users: users}
}

// =========================================================================
// SUBMIT TESTS
// =========================================================================

func TestSubmit_CreateToReviewedScenario(t *testing.T) {
	env := newReviewEnv(t, nil)
	ctx := context.Background()

	m, err := env.matches.Create(ctx, env.f.a.ID, "Downtown Arena", kickoff, []string{env.f.b.ID})
	require.NoError(t, err)
	assert.Equal(t, model.MatchScheduled, m.Status)
	assert.Equal(t, model.Score{TeamA: 0, TeamB: 0}, m.Score)
	assert.Equal(t, []string{env.f.a.ID, env.f.b.ID}, m.PlayerIDs)

	v, err := env.matches.Transition(ctx, env.f.a.ID, m.ID, model.MatchActive)
	require.NoError(t, err)
	assert.Equal(t, model.MatchActive, v.Status)
	v, err = env.matches.Transition(ctx, env.f.a.ID, m.ID, model.MatchFinished)
	require.NoError(t, err)
	assert.Equal(t, model.MatchFinished, v.Status)

	out, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, map[string]model.Rating{
		env.f.b.ID: {Skill: 4.5, Manner: 5.0, Comment: " Solid keeper "},
	})
	require.NoError(t, err)

	assert.Equal(t, model.MatchReviewed, out.Match.Status)
	require.Len(t, out.Rated, 1)
	assert.Equal(t, env.f.b.MatchesPlayed+1, out.Rated[0].MatchesPlayed)

	stored, err := env.f.db.GetUserByID(ctx, env.f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MatchesPlayed)
	require.Len(t, stored.Reviews, 1)
	review := stored.Reviews[0]
	assert.Equal(t, env.f.a.ID, review.FromUserID)
	assert.Equal(t, "Alice", review.FromName)
	assert.Equal(t, m.ID, review.MatchID)
	assert.Equal(t, "Solid keeper", review.Comment)
	assert.Equal(t, kickoff.Add(2*time.Hour), review.CreatedAt)
	assert.NotEmpty(t, review.ID)

	storedMatch, err := env.f.db.GetMatchByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchReviewed, storedMatch.Status)

	reviewer, _ := env.f.db.GetUserByID(ctx, env.f.a.ID)
	assert.Equal(t, 0, reviewer.MatchesPlayed, "ratings flow one way without simulated opponents")
}

func TestSubmit_RunningAverage(t *testing.T) {
	env := newReviewEnv(t, nil)
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)

	out, err := env.reviews.Submit(context.Background(), env.f.a.ID, m.ID, map[string]model.Rating{
		env.f.b.ID: {Skill: 5.0, Manner: 3.0},
	})
	require.NoError(t, err)

	// Bruno starts at 4.0 / 4.0 over one match.
	assert.InDelta(t, 4.5, out.Rated[0].SkillScore, 1e-9)
	assert.InDelta(t, 3.5, out.Rated[0].MannerScore, 1e-9)
	assert.Equal(t, 2, out.Rated[0].MatchesPlayed)
}

func TestSubmit_RatesEveryOpponent(t *testing.T) {
	env := newReviewEnv(t, nil)
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID, env.f.c.ID)

	out, err := env.reviews.Submit(context.Background(), env.f.a.ID, m.ID, map[string]model.Rating{
		env.f.c.ID: {Skill: 2.0, Manner: 5.0},
		env.f.b.ID: {Skill: 4.0, Manner: 4.0},
	})
	require.NoError(t, err)

	require.Len(t, out.Rated, 2)
	assert.Equal(t, env.f.b.ID, out.Rated[0].ID, "rated players follow match order")
	assert.Equal(t, env.f.c.ID, out.Rated[1].ID)
	// Chen: (3.0*2 + 2.0) / 3, (3.5*2 + 5.0) / 3
	assert.InDelta(t, 8.0/3, out.Rated[1].SkillScore, 1e-9)
	assert.InDelta(t, 4.0, out.Rated[1].MannerScore, 1e-9)
	assert.Empty(t, out.Rated[0].PhoneNumber)
	assert.Equal(t, 1, env.recorder.reviews)
	assert.Equal(t, 2, env.recorder.ratings)
}

func TestSubmit_FailsAtomically(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, env reviewEnv) (reviewer, matchID string, ratings map[string]model.Rating)
		wantErr error
	}{
		{
			name: "match not finished",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m, err := env.matches.Create(context.Background(), env.f.a.ID, "Arena", kickoff, []string{env.f.b.ID})
				require.NoError(t, err)
				_, err = env.matches.Transition(context.Background(), env.f.a.ID, m.ID, model.MatchActive)
				require.NoError(t, err)
				return env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}
			},
			wantErr: apperror.ErrInvalidTransition,
		},
		{
			name: "match still scheduled",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m, err := env.matches.Create(context.Background(), env.f.a.ID, "Arena", kickoff, []string{env.f.b.ID})
				require.NoError(t, err)
				return env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}
			},
			wantErr: apperror.ErrInvalidTransition,
		},
		{
			name: "missing opponent rating",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID, env.f.c.ID)
				return env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}
			},
			wantErr: apperror.ErrIncompleteReview,
		},
		{
			name: "rating for a non-opponent",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.a.ID, m.ID, map[string]model.Rating{
					env.f.b.ID: {Skill: 4, Manner: 4},
					env.f.c.ID: {Skill: 4, Manner: 4},
				}
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name: "rating yourself",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.a.ID, m.ID, map[string]model.Rating{
					env.f.a.ID: {Skill: 5, Manner: 5},
					env.f.b.ID: {Skill: 4, Manner: 4},
				}
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name: "value out of range",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 6, Manner: 4}}
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name: "value off the half-point grid",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 3.3}}
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name: "no ratings",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.a.ID, m.ID, nil
			},
			wantErr: apperror.ErrValidation,
		},
		{
			name: "reviewer not in match",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
				return env.f.c.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}
			},
			wantErr: apperror.ErrForbidden,
		},
		{
			name: "unknown match",
			prepare: func(t *testing.T, env reviewEnv) (string, string, map[string]model.Rating) {
				return env.f.a.ID, "missing", map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}
			},
			wantErr: apperror.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newReviewEnv(t, &fixedResponder{rating: model.Rating{Skill: 5, Manner: 5}})
			reviewer, matchID, ratings := tt.prepare(t, env)
			before := takeSnapshot(t, env.f.db, env.f.a.ID, env.f.b.ID, env.f.c.ID)

			_, err := env.reviews.Submit(context.Background(), reviewer, matchID, ratings)

			assert.ErrorIs(t, err, tt.wantErr)
			after := takeSnapshot(t, env.f.db, env.f.a.ID, env.f.b.ID, env.f.c.ID)
			assert.Equal(t, before, after, "a failed submission must not change any state")
			assert.Zero(t, env.recorder.reviews)
		})
	}
}

func TestSubmit_OnlyOnce(t *testing.T) {
	env := newReviewEnv(t, nil)
	ctx := context.Background()
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)
	ratings := map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}}

	_, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, ratings)
	require.NoError(t, err)

	_, err = env.reviews.Submit(ctx, env.f.a.ID, m.ID, ratings)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	_, err = env.reviews.Submit(ctx, env.f.b.ID, m.ID, map[string]model.Rating{env.f.a.ID: {Skill: 4, Manner: 4}})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	bruno, _ := env.f.db.GetUserByID(ctx, env.f.b.ID)
	assert.Equal(t, 2, bruno.MatchesPlayed)
}

func TestSubmit_SecondParticipantSeesAlreadyReviewed(t *testing.T) {
	env := newReviewEnv(t, nil)
	ctx := context.Background()
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID, env.f.c.ID)

	_, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, map[string]model.Rating{
		env.f.b.ID: {Skill: 4, Manner: 4},
		env.f.c.ID: {Skill: 3, Manner: 5},
	})
	require.NoError(t, err)

	_, err = env.reviews.Submit(ctx, env.f.b.ID, m.ID, map[string]model.Rating{
		env.f.a.ID: {Skill: 4, Manner: 4},
		env.f.c.ID: {Skill: 4, Manner: 4},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "already reviewed")
	assert.NotContains(t, err.Error(), "REVIEWED to REVIEWED")
}

func TestSubmit_ReturnsCommittedMatch(t *testing.T) {
	env := newReviewEnv(t, nil)
	ctx := context.Background()
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)

	out, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 4, Manner: 4}})
	require.NoError(t, err)

	stored, err := env.f.db.GetMatchByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, out.Match.UpdatedAt.IsZero())
	assert.Equal(t, stored.UpdatedAt, out.Match.UpdatedAt)
	assert.Equal(t, model.MatchReviewed, out.Match.Status)
}

// =========================================================================
// RECIPROCAL RATING TESTS
// =========================================================================

func TestSubmit_SimulatedOpponentRatesBack(t *testing.T) {
	responder := &fixedResponder{rating: model.Rating{Skill: 4.5, Manner: 3.5, Comment: "Great game!"}}
	env := newReviewEnv(t, responder)
	ctx := context.Background()

	bot := model.User{Name: "Alex Striker", Position: model.PositionForward, SkillScore: 4.5, MannerScore: 3.8, MatchesPlayed: 12, Simulated: true}
	require.NoError(t, env.f.db.CreateUser(ctx, &bot))
	m := finishedMatch(t, env.matches, env.f.a.ID, bot.ID)

	out, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, map[string]model.Rating{bot.ID: {Skill: 5, Manner: 5}})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Reciprocal)
	assert.Equal(t, 1, responder.calls)
	assert.Equal(t, 13, out.Rated[0].MatchesPlayed)

	alice, err := env.f.db.GetUserByID(ctx, env.f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, alice.MatchesPlayed)
	assert.InDelta(t, 4.5, alice.SkillScore, 1e-9)
	assert.InDelta(t, 3.5, alice.MannerScore, 1e-9)
	require.Len(t, alice.Reviews, 1)
	assert.Equal(t, "Alex Striker", alice.Reviews[0].FromName)
	assert.Equal(t, bot.ID, alice.Reviews[0].FromUserID)
	assert.Equal(t, "Great game!", alice.Reviews[0].Comment)
	assert.Equal(t, *alice, out.Reviewer)
}

func TestSubmit_RealOpponentDoesNotRateBack(t *testing.T) {
	responder := &fixedResponder{rating: model.Rating{Skill: 4, Manner: 4}}
	env := newReviewEnv(t, responder)
	m := finishedMatch(t, env.matches, env.f.a.ID, env.f.b.ID)

	out, err := env.reviews.Submit(context.Background(), env.f.a.ID, m.ID, map[string]model.Rating{env.f.b.ID: {Skill: 3, Manner: 3}})
	require.NoError(t, err)

	assert.Zero(t, out.Reciprocal)
	assert.Zero(t, responder.calls)
}

func TestSubmit_InvalidReciprocalRatingAborts(t *testing.T) {
	env := newReviewEnv(t, &fixedResponder{rating: model.Rating{Skill: 9, Manner: 4}})
	ctx := context.Background()
	bot := model.User{Name: "Jamie Keeper", Simulated: true}
	require.NoError(t, env.f.db.CreateUser(ctx, &bot))
	m := finishedMatch(t, env.matches, env.f.a.ID, bot.ID)
	before := takeSnapshot(t, env.f.db, env.f.a.ID, bot.ID)

	_, err := env.reviews.Submit(ctx, env.f.a.ID, m.ID, map[string]model.Rating{bot.ID: {Skill: 4, Manner: 4}})

	require.Error(t, err)
	assert.Equal(t, before, takeSnapshot(t, env.f.db, env.f.a.ID, bot.ID))
}

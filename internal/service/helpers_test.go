package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRecorder counts the events a service reports.
type fakeRecorder struct {
	mu          sync.Mutex
	created     int
	transitions []string
	reviews     int
	ratings     int
	logins      int
}

func (f *fakeRecorder) MatchCreated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
}

func (f *fakeRecorder) MatchTransitioned(from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, from+"->"+to)
}

func (f *fakeRecorder) ReviewSubmitted(ratings int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews++
	f.ratings += ratings
}

func (f *fakeRecorder) LoginCompleted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
}

// fixedResponder always rates back with the same values.
type fixedResponder struct {
	rating model.Rating
	calls  int
}

func (f *fixedResponder) RateBack(model.User) model.Rating {
	f.calls++
	return f.rating
}

// addUser stores a user with the given stats and returns it.
func addUser(t *testing.T, db *memory.DB, name string, skill, manner float64, played int) model.User {
	t.Helper()
	u := &model.User{
		Name:          name,
		PhoneNumber:   "555-" + name,
		Position:      model.PositionMidfielder,
		SkillScore:    skill,
		MannerScore:   manner,
		MatchesPlayed: played,
	}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return *u
}

// fixture is a store with three players.
type fixture struct {
	db      *memory.DB
	a, b, c model.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := memory.New()
	return fixture{
		db: db,
		a:  addUser(t, db, "Alice", 0, 0, 0),
		b:  addUser(t, db, "Bruno", 4.0, 4.0, 1),
		c:  addUser(t, db, "Chen", 3.0, 3.5, 2),
	}
}

var kickoff = time.Date(2026, 7, 4, 19, 30, 0, 0, time.UTC)

// finishedMatch creates a match and walks it to FINISHED.
func finishedMatch(t *testing.T, svc *MatchService, creator string, opponents ...string) model.MatchView {
	t.Helper()
	ctx := context.Background()

	m, err := svc.Create(ctx, creator, "Downtown Arena", kickoff, opponents)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, creator, m.ID, model.MatchActive)
	require.NoError(t, err)
	v, err := svc.Transition(ctx, creator, m.ID, model.MatchFinished)
	require.NoError(t, err)
	return *v
}

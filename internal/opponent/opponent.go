// Package opponent holds the fixed pool of simulated players a user can
// schedule matches against, and the demo fixture built from them.
//
// Pool members are ordinary users in the registry with Simulated set; their
// statistics change through the rating aggregator like anyone else's.
package opponent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/pitchperfect/internal/lifecycle"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository"
)

// roster is the pool as first registered.
var roster = []model.User{
	{
		Name:          "Alex Striker",
		PhoneNumber:   "555-0102",
		AvatarURL:     "https://randomuser.me/api/portraits/men/32.jpg",
		Country:       "ar",
		Position:      model.PositionForward,
		SkillScore:    4.5,
		MannerScore:   3.8,
		MatchesPlayed: 12,
	},
	{
		Name:          "Jamie Keeper",
		PhoneNumber:   "555-0103",
		AvatarURL:     "https://randomuser.me/api/portraits/women/44.jpg",
		Country:       "br",
		Position:      model.PositionGoalkeeper,
		SkillScore:    3.2,
		MannerScore:   4.9,
		MatchesPlayed: 8,
	},
	{
		Name:          "Sam Defender",
		PhoneNumber:   "555-0104",
		AvatarURL:     "https://randomuser.me/api/portraits/men/86.jpg",
		Country:       "it",
		Position:      model.PositionDefender,
		SkillScore:    4.0,
		MannerScore:   4.2,
		MatchesPlayed: 15,
	},
}

const (
	demoLocation = "Downtown Arena"
	demoAge      = 24 * time.Hour
)

var demoScore = model.Score{TeamA: 5, TeamB: 3}

// Pool is the registered opponent roster.
type Pool struct {
	users repository.UserRepository
	ids   []string
}

// Register adds every roster member to the registry and returns the pool.
func Register(ctx context.Context, users repository.UserRepository) (*Pool, error) {
	p := &Pool{users: users, ids: make([]string, 0, len(roster))}
	for _, candidate := range roster {
		u := candidate.Clone()
		u.Simulated = true
		u.Reviews = []model.Review{}
		if err := users.CreateUser(ctx, &u); err != nil {
			return nil, fmt.Errorf("opponent: registering %s: %w", u.Name, err)
		}
		p.ids = append(p.ids, u.ID)
	}
	return p, nil
}

// IDs returns the registry ids of the pool in roster order.
func (p *Pool) IDs() []string {
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Candidates returns the current records of every pool member.
func (p *Pool) Candidates(ctx context.Context) ([]model.User, error) {
	return p.users.GetUsersByIDs(ctx, p.ids)
}

// SeedDemoMatch stores a finished match between playerID and the first pool
// member, played a day before now, so a new player has a match to review.
func (p *Pool) SeedDemoMatch(ctx context.Context, matches repository.MatchRepository, playerID string, now time.Time) (*model.Match, error) {
	if len(p.ids) == 0 {
		return nil, errors.New("opponent: demo match needs a pool member")
	}
	if playerID == "" || playerID == p.ids[0] {
		return nil, fmt.Errorf("opponent: invalid demo player %q", playerID)
	}

	m := &model.Match{
		CreatorID:   playerID,
		Location:    demoLocation,
		ScheduledAt: now.Add(-demoAge),
		Status:      lifecycle.Initial,
		PlayerIDs:   []string{playerID, p.ids[0]},
		Score:       demoScore,
	}
	// Walk the lifecycle forward rather than writing FINISHED directly.
	for m.Status != model.MatchFinished {
		next, ok := lifecycle.Next(m.Status)
		if !ok {
			return nil, fmt.Errorf("opponent: no successor for %s", m.Status)
		}
		m.Status = next
	}

	if err := matches.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("opponent: seeding demo match: %w", err)
	}
	return m, nil
}

// DemoSeeder gives every newly registered player a demo match.
type DemoSeeder struct {
	pool    *Pool
	matches repository.MatchRepository
	now     func() time.Time
}

func NewDemoSeeder(pool *Pool, matches repository.MatchRepository) *DemoSeeder {
	return &DemoSeeder{pool: pool, matches: matches, now: time.Now}
}

// Welcome seeds the demo match for userID.
func (d *DemoSeeder) Welcome(ctx context.Context, userID string) error {
	_, err := d.pool.SeedDemoMatch(ctx, d.matches, userID, d.now())
	return err
}

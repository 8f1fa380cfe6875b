package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/rating"
	"github.com/sakif/pitchperfect/internal/repository"
	"github.com/sakif/pitchperfect/internal/scout"
)

// Profile is a user's record with the numbers derived from it.
type Profile struct {
	User model.User `json:"user"`
	// Overall is absent until the user has played a match.
	Overall    *int               `json:"overall,omitempty"`
	Attributes []rating.Attribute `json:"attributes"`
	// Reviews are newest first.
	Reviews []model.Review `json:"reviews"`
}

// ScoutReporter turns stats into display text. It never fails.
type ScoutReporter interface {
	Report(ctx context.Context, s scout.Stats) string
}

type ProfileService struct {
	users  repository.UserRepository
	scout  ScoutReporter
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, scout ScoutReporter, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, scout: scout, logger: logger}
}

// Get builds the profile of userID.
func (s *ProfileService) Get(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		User:       *u,
		Attributes: rating.Attributes(*u),
		Reviews:    rating.Latest(u.Reviews),
	}
	if ovr, ok := rating.Overall(*u); ok {
		p.Overall = &ovr
	}
	return p, nil
}

// ScoutReport returns the scout text for userID. Players without matches
// have nothing to scout.
func (s *ProfileService) ScoutReport(ctx context.Context, userID string) (string, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.MatchesPlayed == 0 {
		return "", apperror.ValidationFailed("matchesPlayed", "play a match before requesting a scout report")
	}

	return s.scout.Report(ctx, scout.Stats{
		Name:    u.Name,
		Skill:   u.SkillScore,
		Manner:  u.MannerScore,
		Matches: u.MatchesPlayed,
	}), nil
}

func (s *ProfileService) lookup(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, userID)
}

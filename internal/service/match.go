package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/lifecycle"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository"
)

const MaxLocationLength = 120

// MatchService is the match lifecycle manager. It is the only writer of
// Match.Status outside review submission.
type MatchService struct {
	store    repository.Store
	recorder Recorder
	logger   *slog.Logger
}

// NewMatchService creates a MatchService. recorder may be nil.
func NewMatchService(store repository.Store, recorder Recorder, logger *slog.Logger) *MatchService {
	return &MatchService{
		store:    store,
		recorder: recorderOrNop(recorder),
		logger:   logger,
	}
}

// Create schedules a match between the creator and opponentIDs. The match
// starts SCHEDULED with a 0-0 score and goes to the head of the collection.
// scheduledAt may lie in the past or the future.
func (s *MatchService) Create(ctx context.Context, creatorID, location string, scheduledAt time.Time, opponentIDs []string) (*model.MatchView, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperror.ValidationFailed("location", "location is required")
	}
	if !utf8.ValidString(location) {
		return nil, apperror.ValidationFailed("location", "location must be valid UTF-8")
	}
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return nil, apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}
	if scheduledAt.IsZero() {
		return nil, apperror.ValidationFailed("scheduledAt", "scheduled time is required")
	}

	playerIDs, err := matchPlayers(creatorID, opponentIDs)
	if err != nil {
		return nil, err
	}

	// Every player must exist before anything is stored.
	if _, err := s.store.GetUsersByIDs(ctx, playerIDs); err != nil {
		return nil, err
	}

	m := &model.Match{
		CreatorID:   creatorID,
		Location:    location,
		ScheduledAt: scheduledAt,
		Status:      lifecycle.Initial,
		PlayerIDs:   playerIDs,
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		s.logger.Error("failed to create match",
			slog.String("creator", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating match: %w", err)
	}

	s.recorder.MatchCreated()
	s.logger.Info("match created",
		slog.String("id", m.ID),
		slog.String("location", m.Location),
		slog.Int("players", len(m.PlayerIDs)),
	)

	view, err := resolveView(ctx, s.store, *m, creatorID)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// matchPlayers returns the creator followed by the distinct opponents.
func matchPlayers(creatorID string, opponentIDs []string) ([]string, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperror.ValidationFailed("creatorId", "creator is required")
	}

	ids := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, id := range opponentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if id == creatorID {
			return nil, apperror.ValidationFailed("opponentIds", "you cannot play against yourself")
		}
		if seen[id] {
			return nil, apperror.ValidationFailed("opponentIds", fmt.Sprintf("opponent %s listed twice", id))
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, apperror.ValidationFailed("opponentIds", "select at least one opponent")
	}
	return ids, nil
}

// Transition moves a match one step along its lifecycle on behalf of a
// participant. Only ACTIVE and FINISHED may be requested directly; REVIEWED
// is reached by submitting reviews.
func (s *MatchService) Transition(ctx context.Context, actorID, matchID string, target model.MatchStatus) (*model.MatchView, error) {
	if !lifecycle.Known(target) {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", target))
	}

	var from model.MatchStatus
	var updated model.Match
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Match(matchID)
		if err != nil {
			return err
		}
		if !m.HasPlayer(actorID) {
			return apperror.Forbidden("only players in this match can change its status")
		}
		if !lifecycle.ManualTarget(target) {
			return apperror.InvalidTransition(string(m.Status), string(target))
		}
		if err := lifecycle.Check(m.Status, target); err != nil {
			return err
		}

		from = m.Status
		m.Status = target
		if err := tx.PutMatch(*m); err != nil {
			return err
		}
		staged, err := tx.Match(matchID)
		if err != nil {
			return err
		}
		updated = *staged
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			s.logger.Error("failed to change match status",
				slog.String("id", matchID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("changing match status: %w", err)
		}
		return nil, err
	}

	s.recorder.MatchTransitioned(string(from), string(target))
	s.logger.Info("match status changed",
		slog.String("id", matchID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
		slog.String("by", actorID),
	)

	view, err := resolveView(ctx, s.store, updated, actorID)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Get returns one match with its players resolved for viewerID.
func (s *MatchService) Get(ctx context.Context, viewerID, matchID string) (*model.MatchView, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, apperror.ValidationFailed("id", "match ID is required")
	}

	m, err := s.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	view, err := resolveView(ctx, s.store, *m, viewerID)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// List partitions the collection into active matches (anything not yet
// REVIEWED) and history (REVIEWED), both most recent first.
func (s *MatchService) List(ctx context.Context, viewerID string) (*model.MatchBoard, error) {
	matches, err := s.store.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	board := &model.MatchBoard{
		Active:  []model.MatchView{},
		History: []model.MatchView{},
	}
	for _, m := range matches {
		view, err := resolveView(ctx, s.store, m, viewerID)
		if err != nil {
			return nil, err
		}
		if m.Status == model.MatchReviewed {
			board.History = append(board.History, view)
		} else {
			board.Active = append(board.Active, view)
		}
	}
	return board, nil
}

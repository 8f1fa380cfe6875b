package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/lifecycle"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/rating"
	"github.com/sakif/pitchperfect/internal/repository"
)

// ReviewOutcome is everything a successful submission changed.
type ReviewOutcome struct {
	Match model.Match `json:"match"`
	// Rated holds the updated opponents in match order.
	Rated []model.User `json:"rated"`
	// Reviewer is the reviewer's record after reciprocal ratings, if any.
	Reviewer model.User `json:"reviewer"`
	// Reciprocal counts the ratings simulated opponents gave back.
	Reciprocal int `json:"reciprocal"`
}

// ReviewService is the rating aggregator. It is the only writer of user
// score fields, match counts and review histories.
type ReviewService struct {
	store     repository.Store
	responder rating.Responder
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a ReviewService. With a nil responder simulated
// opponents never rate back. recorder may be nil.
func NewReviewService(store repository.Store, responder rating.Responder, recorder Recorder, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     store,
		responder: responder,
		recorder:  recorderOrNop(recorder),
		logger:    logger,
		now:       time.Now,
	}
}

// Submit records the reviewer's ratings of every opponent in a FINISHED match
// and moves the match to REVIEWED.
//
// Each rating updates the rated opponent's running means and appends a review
// authored by the reviewer. Simulated opponents also rate the reviewer back
// when a responder is configured. All of it commits together or not at all.
func (s *ReviewService) Submit(ctx context.Context, reviewerID, matchID string, ratings map[string]model.Rating) (*ReviewOutcome, error) {
	if len(ratings) == 0 {
		return nil, apperror.ValidationFailed("ratings", "at least one rating is required")
	}
	for _, id := range sortedKeys(ratings) {
		if err := rating.Validate(ratings[id]); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var out ReviewOutcome
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Match(matchID)
		if err != nil {
			return err
		}
		if !m.HasPlayer(reviewerID) {
			return apperror.Forbidden("only players in this match can review it")
		}
		if m.Status == model.MatchReviewed {
			return apperror.AlreadyReviewed(m.ID)
		}
		if err := lifecycle.Check(m.Status, model.MatchReviewed); err != nil {
			return err
		}

		opponents := m.OpponentsOf(reviewerID)
		if err := checkCoverage(opponents, ratings); err != nil {
			return err
		}

		reviewer, err := tx.User(reviewerID)
		if err != nil {
			return err
		}
		author := *reviewer
		updatedReviewer := *reviewer

		out.Rated = make([]model.User, 0, len(opponents))
		for _, id := range opponents {
			opp, err := tx.User(id)
			if err != nil {
				return err
			}

			review := rating.NewReview(xid.New().String(), m.ID, author, ratings[id], now)
			rated := rating.Apply(*opp, review)
			if err := tx.PutUser(rated); err != nil {
				return err
			}
			out.Rated = append(out.Rated, rated)

			if s.responder == nil || !opp.Simulated {
				continue
			}
			back := s.responder.RateBack(author)
			if err := rating.Validate(back); err != nil {
				return fmt.Errorf("reciprocal rating from %s: %w", opp.ID, err)
			}
			updatedReviewer = rating.Apply(updatedReviewer,
				rating.NewReview(xid.New().String(), m.ID, *opp, back, now))
			out.Reciprocal++
		}

		if out.Reciprocal > 0 {
			if err := tx.PutUser(updatedReviewer); err != nil {
				return err
			}
		}

		m.Status = model.MatchReviewed
		if err := tx.PutMatch(*m); err != nil {
			return err
		}
		reviewed, err := tx.Match(matchID)
		if err != nil {
			return err
		}
		out.Match = *reviewed
		out.Reviewer = updatedReviewer
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			s.logger.Error("failed to submit review",
				slog.String("match", matchID),
				slog.String("reviewer", reviewerID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("submitting review: %w", err)
		}
		return nil, err
	}

	s.recorder.ReviewSubmitted(len(out.Rated) + out.Reciprocal)
	s.recorder.MatchTransitioned(string(model.MatchFinished), string(model.MatchReviewed))
	s.logger.Info("review submitted",
		slog.String("match", matchID),
		slog.String("reviewer", reviewerID),
		slog.Int("rated", len(out.Rated)),
		slog.Int("reciprocal", out.Reciprocal),
	)

	for i := range out.Rated {
		out.Rated[i] = publicUser(out.Rated[i], reviewerID)
	}
	return &out, nil
}

// checkCoverage requires exactly one rating per opponent.
func checkCoverage(opponents []string, ratings map[string]model.Rating) error {
	want := make(map[string]bool, len(opponents))
	for _, id := range opponents {
		want[id] = true
		if _, ok := ratings[id]; !ok {
			return apperror.IncompleteReview(id)
		}
	}
	for _, id := range sortedKeys(ratings) {
		if !want[id] {
			return apperror.ValidationFailed("ratings",
				fmt.Sprintf("player %s is not an opponent in this match", id))
		}
	}
	return nil
}

// sortedKeys returns the rated player ids in lexical order.
func sortedKeys(ratings map[string]model.Rating) []string {
	keys := make([]string, 0, len(ratings))
	for k := range ratings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

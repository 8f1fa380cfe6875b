// Package rating implements the aggregation rules for player statistics.
//
// Every received rating updates a player's running means in place:
//
//	newSkill  = (skill  * n + s) / (n + 1)
//	newManner = (manner * n + m) / (n + 1)
//	newCount  = n + 1
//
// so after k ratings the scores equal the plain mean of those k ratings.
// Nothing here touches storage; callers commit the returned values.
package rating

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/model"
)

const (
	MinValue = 1.0
	MaxValue = 5.0
	Step     = 0.5

	MaxCommentLength = 280
)

// RunningMean folds x into a mean of n values.
func RunningMean(mean float64, n int, x float64) float64 {
	return (mean*float64(n) + x) / float64(n+1)
}

// Validate checks both values lie in [1, 5] on the 0.5 grid and the comment
// fits.
func Validate(r model.Rating) error {
	if err := checkValue("skill", r.Skill); err != nil {
		return err
	}
	if err := checkValue("manner", r.Manner); err != nil {
		return err
	}
	comment := strings.TrimSpace(r.Comment)
	if !utf8.ValidString(comment) {
		return apperror.ValidationFailed("comment", "comment must be valid UTF-8")
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return apperror.ValidationFailed("comment",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	return nil
}

func checkValue(field string, v float64) error {
	if math.IsNaN(v) || v < MinValue || v > MaxValue {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be between %.0f and %.0f", field, MinValue, MaxValue))
	}
	if steps := v / Step; steps != math.Trunc(steps) {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be a multiple of %.1f", field, Step))
	}
	return nil
}

// NewReview builds the review record for a rating given by author.
func NewReview(id, matchID string, author model.User, r model.Rating, at time.Time) model.Review {
	return model.Review{
		ID:         id,
		MatchID:    matchID,
		FromUserID: author.ID,
		FromName:   author.Name,
		FromAvatar: author.AvatarURL,
		Skill:      r.Skill,
		Manner:     r.Manner,
		Comment:    strings.TrimSpace(r.Comment),
		CreatedAt:  at,
	}
}

// Apply returns a copy of u with review folded into its statistics and
// appended to its review history. u itself is not modified.
func Apply(u model.User, review model.Review) model.User {
	out := u.Clone()
	out.SkillScore = RunningMean(u.SkillScore, u.MatchesPlayed, review.Skill)
	out.MannerScore = RunningMean(u.MannerScore, u.MatchesPlayed, review.Manner)
	out.MatchesPlayed = u.MatchesPlayed + 1
	out.Reviews = append(out.Reviews, review)
	return out
}

// Latest returns reviews newest first without reordering the stored slice.
func Latest(reviews []model.Review) []model.Review {
	out := make([]model.Review, len(reviews))
	for i, r := range reviews {
		out[len(reviews)-1-i] = r
	}
	return out
}

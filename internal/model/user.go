// Package model defines the data structures used throughout the application.
package model

import "time"

// Position is a player's preferred role on the pitch.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// Positions lists every position in display order.
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}

// Valid reports whether p is one of the four known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward:
		return true
	}
	return false
}

// User is a player account together with its aggregate rating statistics.
//
// SkillScore and MannerScore are always the arithmetic mean of exactly
// MatchesPlayed received ratings, or 0 when MatchesPlayed is 0. Only the
// rating aggregator writes those fields and Reviews.
//
// Simulated marks members of the opponent pool: seeded players that never log
// in themselves.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	AvatarURL     string    `json:"avatarUrl"`
	Country       string    `json:"country"` // ISO code, lowercase
	Position      Position  `json:"position"`
	SkillScore    float64   `json:"skillScore"`
	MannerScore   float64   `json:"mannerScore"`
	MatchesPlayed int       `json:"matchesPlayed"`
	Reviews       []Review  `json:"reviews"`
	Simulated     bool      `json:"simulated,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Clone returns a copy of u that shares no slices with it.
func (u User) Clone() User {
	if u.Reviews != nil {
		reviews := make([]Review, len(u.Reviews))
		copy(reviews, u.Reviews)
		u.Reviews = reviews
	}
	return u
}

// Review is one received rating. Author name and avatar are copied at creation
// time; reviews are never edited or removed.
type Review struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"matchId"`
	FromUserID string    `json:"fromUserId"`
	FromName   string    `json:"fromName"`
	FromAvatar string    `json:"fromAvatar"`
	Skill      float64   `json:"skill"`
	Manner     float64   `json:"manner"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Rating is the score one player gives another after a match.
// Skill and Manner lie in [1, 5] in steps of 0.5.
type Rating struct {
	Skill   float64 `json:"skill"`
	Manner  float64 `json:"manner"`
	Comment string  `json:"comment,omitempty"`
}

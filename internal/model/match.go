package model

import "time"

// MatchStatus is the lifecycle state of a match. The legal moves between
// states live in the lifecycle package.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchActive    MatchStatus = "ACTIVE"
	MatchFinished  MatchStatus = "FINISHED"
	MatchReviewed  MatchStatus = "REVIEWED"
)

// Score is the goal tally of a match. The lifecycle never changes it.
type Score struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// Match is a scheduled game between two or more players.
//
// PlayerIDs holds identifiers only, in the order the players were added
// (creator first). Display data is resolved against the user registry when a
// match is read, so it never goes stale.
type Match struct {
	ID          string      `json:"id"`
	CreatorID   string      `json:"creatorId"`
	Location    string      `json:"location"`
	ScheduledAt time.Time   `json:"scheduledAt"`
	Status      MatchStatus `json:"status"`
	PlayerIDs   []string    `json:"playerIds"`
	Score       Score       `json:"score"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// HasPlayer reports whether userID takes part in the match.
func (m Match) HasPlayer(userID string) bool {
	for _, id := range m.PlayerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OpponentsOf returns every participant except userID, in match order.
func (m Match) OpponentsOf(userID string) []string {
	out := make([]string, 0, len(m.PlayerIDs))
	for _, id := range m.PlayerIDs {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns a copy of m that shares no slices with it.
func (m Match) Clone() Match {
	if m.PlayerIDs != nil {
		ids := make([]string, len(m.PlayerIDs))
		copy(ids, m.PlayerIDs)
		m.PlayerIDs = ids
	}
	return m
}

// MatchView is a match with its players resolved to their current records.
// Participant is set when the viewing user plays in the match.
type MatchView struct {
	Match
	Players     []User `json:"players"`
	Participant bool   `json:"participant"`
}

// MatchBoard partitions the match collection for display. Both slices keep
// the collection order (most recent first).
type MatchBoard struct {
	Active  []MatchView `json:"active"`
	History []MatchView `json:"history"`
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionValid(t *testing.T) {
	for _, p := range Positions {
		assert.True(t, p.Valid(), "position %q should be valid", p)
	}
	assert.False(t, Position("ST").Valid())
	assert.False(t, Position("").Valid())
}

func TestUserCloneDoesNotShareReviews(t *testing.T) {
	u := User{ID: "u1", Reviews: []Review{{ID: "r1"}}}

	c := u.Clone()
	c.Reviews[0].ID = "changed"
	c.Reviews = append(c.Reviews, Review{ID: "r2"})

	assert.Equal(t, "r1", u.Reviews[0].ID)
	assert.Len(t, u.Reviews, 1)
}

func TestMatchParticipants(t *testing.T) {
	m := Match{PlayerIDs: []string{"a", "b", "c"}}

	assert.True(t, m.HasPlayer("b"))
	assert.False(t, m.HasPlayer("z"))
	assert.Equal(t, []string{"a", "c"}, m.OpponentsOf("b"))
	assert.Equal(t, []string{"a", "b", "c"}, m.OpponentsOf("z"))
}

func TestMatchCloneDoesNotSharePlayers(t *testing.T) {
	m := Match{ID: "m1", PlayerIDs: []string{"a", "b"}}

	c := m.Clone()
	c.PlayerIDs[0] = "x"

	assert.Equal(t, "a", m.PlayerIDs[0])
}

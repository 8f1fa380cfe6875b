package rating

import (
	"math"

	"github.com/sakif/pitchperfect/internal/model"
)

// Attribute is one axis of the profile radar. Values share the 0-5 scale.
type Attribute struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
}

// Overall scales the mean of skill and manner onto the 0-99 card rating,
// adding up to 4 experience points (one per five matches). It returns false
// for players without matches.
func Overall(u model.User) (int, bool) {
	if u.MatchesPlayed <= 0 {
		return 0, false
	}
	avg := (u.SkillScore + u.MannerScore) / 2
	ovr := int(math.Round(avg/MaxValue*95)) + min(4, u.MatchesPlayed/5)
	return min(99, ovr), true
}

// Attributes derives the radar axes shown on a profile.
func Attributes(u model.User) []Attribute {
	return []Attribute{
		{Name: "Skill", Value: u.SkillScore, Max: MaxValue},
		{Name: "Manner", Value: u.MannerScore, Max: MaxValue},
		{Name: "Pace", Value: u.SkillScore * 0.8, Max: MaxValue},
		{Name: "Defense", Value: u.MannerScore * 0.9, Max: MaxValue},
		{Name: "Power", Value: (u.SkillScore + u.MannerScore) / 2, Max: MaxValue},
	}
}

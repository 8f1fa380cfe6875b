package rating

import (
	"math/rand/v2"
	"sync"

	"github.com/sakif/pitchperfect/internal/model"
)

var cannedComments = []string{"Great game!", "Fast player!", "Good defense.", "Nice goals."}

// Responder produces the rating a simulated opponent gives back to the
// player who reviewed them.
type Responder interface {
	RateBack(reviewer model.User) model.Rating
}

// RandomResponder rates back with values drawn uniformly from 3.0-5.0 on the
// 0.5 grid and one of a few canned comments.
type RandomResponder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomResponder seeds the generator; equal seeds give equal sequences.
func NewRandomResponder(seed uint64) *RandomResponder {
	return &RandomResponder{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomResponder) RateBack(model.User) model.Rating {
	r.mu.Lock()
	defer r.mu.Unlock()

	return model.Rating{
		Skill:   3 + float64(r.rng.IntN(5))*Step,
		Manner:  3 + float64(r.rng.IntN(5))*Step,
		Comment: cannedComments[r.rng.IntN(len(cannedComments))],
	}
}

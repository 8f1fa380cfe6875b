// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, enforces rules, orchestrates
//	Repository      → stores records
//
// Services take primitives and the acting user's id, never HTTP types, and
// return apperror values the handler layer maps to status codes. Every
// mutation goes through repository.Transactor so a rejected call leaves the
// store exactly as it was.
package service

import (
	"context"

	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository"
)

// Recorder receives business events. metrics.Manager satisfies it.
type Recorder interface {
	MatchCreated()
	MatchTransitioned(from, to string)
	ReviewSubmitted(ratings int)
	LoginCompleted()
}

type nopRecorder struct{}

func (nopRecorder) MatchCreated()                 {}
func (nopRecorder) MatchTransitioned(_, _ string) {}
func (nopRecorder) ReviewSubmitted(int)           {}
func (nopRecorder) LoginCompleted()               {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// publicUser strips contact details from a user record shown to someone else.
func publicUser(u model.User, viewerID string) model.User {
	if u.ID != viewerID {
		u.PhoneNumber = ""
	}
	return u
}

// resolveView loads the current records of m's players for viewerID.
func resolveView(ctx context.Context, users repository.UserRepository, m model.Match, viewerID string) (model.MatchView, error) {
	players, err := users.GetUsersByIDs(ctx, m.PlayerIDs)
	if err != nil {
		return model.MatchView{}, err
	}
	for i := range players {
		players[i] = publicUser(players[i], viewerID)
	}
	return model.MatchView{
		Match:       m,
		Players:     players,
		Participant: m.HasPlayer(viewerID),
	}, nil
}

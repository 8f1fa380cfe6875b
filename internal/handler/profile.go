package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/service"
)

// Profiles is implemented by *service.ProfileService.
type Profiles interface {
	Get(ctx context.Context, userID string) (*service.Profile, error)
	ScoutReport(ctx context.Context, userID string) (string, error)
}

// Candidates lists the players a match can be scheduled against.
// *opponent.Pool implements it.
type Candidates interface {
	Candidates(ctx context.Context) ([]model.User, error)
}

// ProfileHandler serves the caller's own profile and the opponent directory.
type ProfileHandler struct {
	profiles   Profiles
	candidates Candidates
	logger     *slog.Logger
}

func NewProfileHandler(profiles Profiles, candidates Candidates, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, candidates: candidates, logger: logger}
}

// HandleMe returns the caller's profile: stats, overall rating, attribute
// radar and reviews newest first.
//
// HTTP: GET /api/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type scoutReportResponse struct {
	Report string `json:"report"`
}

// HandleScoutReport returns a short scout report on the caller.
//
// HTTP: GET /api/me/scout-report
//
// Generator failures never surface here; the report degrades to fallback text.
// A player with no matches gets 400.
func (h *ProfileHandler) HandleScoutReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	text, err := h.profiles.ScoutReport(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scoutReportResponse{Report: text})
}

// HandleOpponents lists the candidates for a new match.
//
// HTTP: GET /api/opponents
func (h *ProfileHandler) HandleOpponents(w http.ResponseWriter, r *http.Request) {
	users, err := h.candidates.Candidates(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		// Directory entries never carry contact details.
		u.PhoneNumber = ""
		out = append(out, u)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleHealth reports liveness.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/service"
)

// Matches is the lifecycle manager as seen by HTTP. *service.MatchService
// implements it.
type Matches interface {
	Create(ctx context.Context, creatorID, location string, scheduledAt time.Time, opponentIDs []string) (*model.MatchView, error)
	Transition(ctx context.Context, actorID, matchID string, target model.MatchStatus) (*model.MatchView, error)
	Get(ctx context.Context, viewerID, matchID string) (*model.MatchView, error)
	List(ctx context.Context, viewerID string) (*model.MatchBoard, error)
}

// Reviews is the rating aggregator as seen by HTTP. *service.ReviewService
// implements it.
type Reviews interface {
	Submit(ctx context.Context, reviewerID, matchID string, ratings map[string]model.Rating) (*service.ReviewOutcome, error)
}

// MatchHandler serves the match board, the lifecycle and review submission.
// Every route requires a session; the acting user always comes from it.
type MatchHandler struct {
	matches Matches
	reviews Reviews
	logger  *slog.Logger
}

func NewMatchHandler(matches Matches, reviews Reviews, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, reviews: reviews, logger: logger}
}

// HandleList returns the caller's board.
//
// HTTP: GET /api/matches
// RESPONSE: {"active": [...], "history": [...]}, both most recent first.
func (h *MatchHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	board, err := h.matches.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type createMatchRequest struct {
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduledAt"`
	OpponentIDs []string  `json:"opponentIds"`
}

// HandleCreate schedules a match with the caller as creator.
//
// HTTP: POST /api/matches
// REQUEST BODY: {"location": "Downtown Arena", "scheduledAt": "2026-07-04T19:30:00Z", "opponentIds": ["..."]}
// RESPONSE:     201 with the resolved match
func (h *MatchHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req createMatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.matches.Create(r.Context(), userID, req.Location, req.ScheduledAt, req.OpponentIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleGet returns one match.
//
// HTTP: GET /api/matches/{id}
func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.matches.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type transitionRequest struct {
	Status model.MatchStatus `json:"status"`
}

// HandleTransition starts or ends a match.
//
// HTTP: PUT /api/matches/{id}/status
// REQUEST BODY: {"status": "ACTIVE"} or {"status": "FINISHED"}
//
// REVIEWED cannot be set here; it is reached by submitting reviews.
func (h *MatchHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.matches.Transition(r.Context(), userID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type submitReviewRequest struct {
	Ratings map[string]model.Rating `json:"ratings"`
}

// HandleSubmitReview rates every opponent of a finished match.
//
// HTTP: POST /api/matches/{id}/reviews
// REQUEST BODY: {"ratings": {"<userId>": {"skill": 4.5, "manner": 4, "comment": "Great game!"}}}
// RESPONSE:     200 with the reviewed match and the updated players
func (h *MatchHandler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	out, err := h.reviews.Submit(r.Context(), userID, chi.URLParam(r, "id"), req.Ratings)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

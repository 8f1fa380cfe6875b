package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/auth"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/service"
)

// Onboarding is the login flow AuthHandler drives. *service.AuthService
// implements it.
type Onboarding interface {
	RequestCode(ctx context.Context, phone string) (*service.Challenge, error)
	VerifyCode(ctx context.Context, challengeID, code string) error
	Complete(ctx context.Context, challengeID, name string, position model.Position) (*service.AuthResult, error)
}

// AuthHandler manages the phone onboarding flow and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRequestCode → open a login challenge for a phone number
//   - HandleVerifyCode  → check the code sent for a challenge
//   - HandleComplete    → create the player, issue the session token and cookie
//   - HandleLogout      → clear the cookie
type AuthHandler struct {
	onboarding   Onboarding
	cookieSecure bool
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthHandler creates an AuthHandler. cookieSecure sets the Secure flag on
// the session cookie and must be on wherever the API is served over HTTPS.
func NewAuthHandler(onboarding Onboarding, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		onboarding:   onboarding,
		cookieSecure: cookieSecure,
		logger:       logger,
		now:          time.Now,
	}
}

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

// HandleRequestCode opens a login challenge.
//
// HTTP: POST /auth/code
// REQUEST BODY: {"phone": "+44 7700 900123"}
// RESPONSE:     201 {"challengeId": "...", "expiresAt": "..."}
func (h *AuthHandler) HandleRequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ch, err := h.onboarding.RequestCode(r.Context(), req.Phone)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

type verifyCodeRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

// HandleVerifyCode checks the code for a challenge.
//
// HTTP: POST /auth/verify
// REQUEST BODY: {"challengeId": "...", "code": "123456"}
// RESPONSE:     204
func (h *AuthHandler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.onboarding.VerifyCode(r.Context(), req.ChallengeID, req.Code); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type completeRequest struct {
	ChallengeID string         `json:"challengeId"`
	Name        string         `json:"name"`
	Position    model.Position `json:"position"`
}

// HandleComplete finishes onboarding for a verified challenge.
//
// HTTP: POST /auth/complete
// REQUEST BODY: {"challengeId": "...", "name": "Maya", "position": "FWD"}
// RESPONSE:     201 {"user": {...}, "token": "...", "expiresAt": "..."}
//
// The token is also set as an HttpOnly cookie for browser clients.
func (h *AuthHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.onboarding.Complete(r.Context(), req.ChallengeID, req.Name, req.Position)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, res.ExpiresAt.Sub(h.now()), h.cookieSecure)
	writeJSON(w, http.StatusCreated, res)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless, so the token stays valid until it expires; the
// browser simply stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, h.cookieSecure)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// sessionUserID returns the acting user of a RequireAuth-protected request.
// It answers 401 itself when the session is missing.
func sessionUserID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, logger, apperror.Unauthorized("valid authentication required"))
		return "", false
	}
	return s.UserID, true
}

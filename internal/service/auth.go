package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/xid"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/auth"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository"
)

const (
	CodeLength          = 6
	MinPhoneLength      = 5
	MaxPhoneLength      = 20
	MaxNameLength       = 50
	DefaultCountry      = "gb"
	DefaultChallengeTTL = 5 * time.Minute
)

// Challenge is one pending login: a phone number waiting for its code.
type Challenge struct {
	ID        string    `json:"challengeId"`
	ExpiresAt time.Time `json:"expiresAt"`

	phone    string
	verified bool
}

// AuthResult bundles the new user and the session token issued for it.
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Welcomer prepares something for a player who just registered.
// *opponent.DemoSeeder implements it.
type Welcomer interface {
	Welcome(ctx context.Context, userID string) error
}

// AuthConfig tunes the onboarding flow.
type AuthConfig struct {
	// DemoCode, when set, is the only code VerifyCode accepts. Otherwise any
	// well-formed code passes.
	DemoCode     string
	ChallengeTTL time.Duration
	// Welcome, if set, runs once for every new user.
	Welcome Welcomer
}

// AuthService runs the mocked phone onboarding: request a code, verify it,
// then complete the profile to receive a session token. There is no real
// SMS delivery.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	codes    *auth.CodeHasher
	recorder Recorder
	logger   *slog.Logger

	demoHash string
	ttl      time.Duration
	now      func() time.Time
	welcome  Welcomer

	// mu guards the verified flag and consumption of challenges.
	mu         sync.Mutex
	challenges *ttlcache.Cache[string, *Challenge]
}

// NewAuthService creates an AuthService. The demo code, if any, is hashed
// once here.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	codes *auth.CodeHasher,
	cfg AuthConfig,
	recorder Recorder,
	logger *slog.Logger,
) (*AuthService, error) {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		codes:    codes,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		ttl:      cfg.ChallengeTTL,
		now:      time.Now,
		welcome:  cfg.Welcome,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultChallengeTTL
	}
	s.challenges = ttlcache.New[string, *Challenge](
		ttlcache.WithTTL[string, *Challenge](s.ttl),
		ttlcache.WithDisableTouchOnHit[string, *Challenge](),
	)

	if cfg.DemoCode != "" {
		if len(cfg.DemoCode) != CodeLength {
			return nil, fmt.Errorf("service/auth: demo code must be %d characters", CodeLength)
		}
		hash, err := codes.Hash(cfg.DemoCode)
		if err != nil {
			return nil, fmt.Errorf("service/auth: hashing demo code: %w", err)
		}
		s.demoHash = hash
	}
	return s, nil
}

// RequestCode opens a login challenge for phone.
func (s *AuthService) RequestCode(ctx context.Context, phone string) (*Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if n := utf8.RuneCountInString(phone); !utf8.ValidString(phone) || n < MinPhoneLength || n > MaxPhoneLength {
		return nil, apperror.ValidationFailed("phone",
			fmt.Sprintf("phone number must be between %d and %d characters", MinPhoneLength, MaxPhoneLength))
	}

	now := s.now()
	c := &Challenge{
		ID:        xid.New().String(),
		ExpiresAt: now.Add(s.ttl),
		phone:     phone,
	}

	s.challenges.DeleteExpired()
	s.challenges.Set(c.ID, c, ttlcache.DefaultTTL)

	s.logger.Debug("login code requested", slog.String("challenge", c.ID))
	out := *c
	return &out, nil
}

// VerifyCode marks a challenge verified. Any code of CodeLength characters
// passes unless a demo code is configured.
func (s *AuthService) VerifyCode(ctx context.Context, challengeID, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if len(code) != CodeLength {
		return apperror.ValidationFailed("code", fmt.Sprintf("code must be %d characters", CodeLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.challengeLocked(challengeID)
	if err != nil {
		return err
	}

	if s.demoHash != "" {
		if err := s.codes.Verify(s.demoHash, code); err != nil {
			if errors.Is(err, auth.ErrCodeMismatch) {
				return apperror.Unauthorized("the code you entered is incorrect")
			}
			return err
		}
	}

	c.verified = true
	return nil
}

// Complete registers the user behind a verified challenge and signs a
// session token for them. The challenge is consumed.
func (s *AuthService) Complete(ctx context.Context, challengeID, name string, position model.Position) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if !utf8.ValidString(name) {
		return nil, apperror.ValidationFailed("name", "name must be valid UTF-8")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if position == "" {
		position = model.PositionMidfielder
	}
	if !position.Valid() {
		return nil, apperror.ValidationFailed("position", fmt.Sprintf("unknown position %q", position))
	}

	s.mu.Lock()
	c, err := s.challengeLocked(challengeID)
	if err == nil && !c.verified {
		err = apperror.Unauthorized("verify your code first")
	}
	if err == nil {
		s.challenges.Delete(challengeID)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:        name,
		PhoneNumber: c.phone,
		AvatarURL:   randomAvatar(),
		Country:     DefaultCountry,
		Position:    position,
		Reviews:     []model.Review{},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	if s.welcome != nil {
		// Best effort: the account is already stored.
		if err := s.welcome.Welcome(ctx, user.ID); err != nil {
			s.logger.Error("failed to welcome new user",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.recorder.LoginCompleted()
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("position", string(user.Position)),
	)

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}, nil
}

// challengeLocked returns a live challenge. s.mu must be held.
//
// Expiry is decided by ExpiresAt against s.now; the cache TTL only bounds
// how long stale entries are held.
func (s *AuthService) challengeLocked(id string) (*Challenge, error) {
	item := s.challenges.Get(id)
	if item == nil {
		return nil, apperror.NotFound("login challenge", id)
	}
	c := item.Value()
	if !s.now().Before(c.ExpiresAt) {
		s.challenges.Delete(id)
		return nil, apperror.Unauthorized("login code expired, request a new one")
	}
	return c, nil
}

func randomAvatar() string {
	gender := "men"
	if rand.IntN(2) == 0 {
		gender = "women"
	}
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", gender, rand.IntN(99))
}

// Package memory implements the repository interfaces with process memory.
//
// All state sits behind a single RWMutex. Records are copied on the way in and
// on the way out, so callers can never alias stored slices. Every mutation is
// a whole-record replacement by ID; WithinTx stages replacements and applies
// them together, so a failed operation leaves the store exactly as it was.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/model"
	"github.com/sakif/pitchperfect/internal/repository"
)

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

type DB struct {
	mu    sync.RWMutex
	users map[string]model.User
	// matches keeps records by ID; order holds IDs most recent first.
	matches map[string]model.Match
	order   []string
	now     func() time.Time
}

// New returns an empty store.
func New() *DB {
	return &DB{
		users:   make(map[string]model.User),
		matches: make(map[string]model.Match),
		now:     time.Now,
	}
}

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if _, exists := db.users[user.ID]; exists {
		return fmt.Errorf("memory: user %s already exists", user.ID)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = db.now()
	}
	if user.Reviews == nil {
		user.Reviews = []model.Review{}
	}
	db.users[user.ID] = user.Clone()
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := u.Clone()
	return &out, nil
}

func (db *DB) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, ok := db.users[id]
		if !ok {
			return nil, apperror.NotFound("user", id)
		}
		out = append(out, u.Clone())
	}
	return out, nil
}

func (db *DB) CreateMatch(ctx context.Context, match *model.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if match.ID == "" {
		match.ID = xid.New().String()
	}
	if _, exists := db.matches[match.ID]; exists {
		return fmt.Errorf("memory: match %s already exists", match.ID)
	}
	now := db.now()
	if match.CreatedAt.IsZero() {
		match.CreatedAt = now
	}
	match.UpdatedAt = now

	db.matches[match.ID] = match.Clone()
	db.order = append([]string{match.ID}, db.order...)
	return nil
}

func (db *DB) GetMatchByID(ctx context.Context, id string) (*model.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	m, ok := db.matches[id]
	if !ok {
		return nil, apperror.NotFound("match", id)
	}
	out := m.Clone()
	return &out, nil
}

func (db *DB) ListMatches(ctx context.Context) ([]model.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]model.Match, 0, len(db.order))
	for _, id := range db.order {
		out = append(out, db.matches[id].Clone())
	}
	return out, nil
}

// WithinTx holds the write lock for the duration of fn.
func (db *DB) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &tx{
		db:      db,
		now:     db.now(),
		users:   make(map[string]model.User),
		matches: make(map[string]model.Match),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, m := range tx.matches {
		db.matches[id] = m
	}
	for id, u := range tx.users {
		db.users[id] = u
	}
	return nil
}

// tx stages replacements on top of the locked DB.
type tx struct {
	db      *DB
	now     time.Time
	users   map[string]model.User
	matches map[string]model.Match
}

func (t *tx) Match(id string) (*model.Match, error) {
	m, ok := t.matches[id]
	if !ok {
		m, ok = t.db.matches[id]
	}
	if !ok {
		return nil, apperror.NotFound("match", id)
	}
	out := m.Clone()
	return &out, nil
}

func (t *tx) User(id string) (*model.User, error) {
	u, ok := t.users[id]
	if !ok {
		u, ok = t.db.users[id]
	}
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := u.Clone()
	return &out, nil
}

func (t *tx) PutMatch(match model.Match) error {
	if _, ok := t.db.matches[match.ID]; !ok {
		return apperror.NotFound("match", match.ID)
	}
	staged := match.Clone()
	staged.UpdatedAt = t.now
	t.matches[match.ID] = staged
	return nil
}

func (t *tx) PutUser(user model.User) error {
	if _, ok := t.db.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	t.users[user.ID] = user.Clone()
	return nil
}

// Package repository declares the storage contracts used by the service layer.
//
// The service layer depends only on these interfaces; internal/repository/memory
// provides the implementation wired in by the server.
package repository

import (
	"context"

	"github.com/sakif/pitchperfect/internal/model"
)

// UserRepository is the user registry.
type UserRepository interface {
	// CreateUser stores a new user. An empty ID is filled in.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUsersByIDs returns users in the order of ids, or NotFound for the
	// first id that does not exist.
	GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

// MatchRepository owns the match collection. Matches are kept most recent
// first and are never deleted.
type MatchRepository interface {
	// CreateMatch stores a new match at the head of the collection. An empty
	// ID is filled in.
	CreateMatch(ctx context.Context, match *model.Match) error
	GetMatchByID(ctx context.Context, id string) (*model.Match, error)
	ListMatches(ctx context.Context) ([]model.Match, error)
}

// Tx is a consistent view of the store inside WithinTx. Reads observe earlier
// writes made through the same Tx.
type Tx interface {
	Match(id string) (*model.Match, error)
	User(id string) (*model.User, error)
	// PutMatch and PutUser replace an existing record by ID. PutMatch stamps
	// UpdatedAt; read the match back through the Tx to see it.
	PutMatch(match model.Match) error
	PutUser(user model.User) error
}

// Transactor runs fn with exclusive access to the store. Writes made through
// the Tx become visible together when fn returns nil and are discarded when
// it returns an error.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Store bundles everything the services need.
type Store interface {
	UserRepository
	MatchRepository
	Transactor
}

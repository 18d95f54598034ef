package repository

import (
	"context"
	"errors"

	"erauchess-api/internal/model"
)

var (
	// ErrDuplicateEmail is returned when inserting a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrUnknownReference is returned when a game names a user that does not exist.
	ErrUnknownReference = errors.New("referenced user does not exist")
)

// UserRepository defines member data access methods.
type UserRepository interface {
	// InsertUser stores a member and returns its id, or ErrDuplicateEmail.
	InsertUser(ctx context.Context, u model.NewUser) (int64, error)

	// FindUserByEmail returns the member with the given email, or ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListUsers returns all members ordered by id.
	ListUsers(ctx context.Context) ([]model.User, error)
}

// GameRepository defines game data access methods.
type GameRepository interface {
	// InsertGame stores a game and returns its id, or ErrUnknownReference.
	InsertGame(ctx context.Context, g model.NewGame) (int64, error)

	// ListGames returns all games, most recently finished first.
	ListGames(ctx context.Context) ([]model.Game, error)
}

// Store is the full persistence collaborator.
type Store interface {
	UserRepository
	GameRepository

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Stats returns row counts for the admin endpoint.
	Stats(ctx context.Context) (*model.StoreStats, error)

	// Close closes the underlying connection pool.
	Close() error
}

package service

import (
	"errors"

	"erauchess-api/internal/repository"
	"erauchess-api/pkg/apierror"
)

// storeError maps a repository failure onto the client-facing taxonomy.
// Only sentinels with a client meaning survive; everything else becomes a
// StoreFailure whose cause is logged but never sent.
func storeError(err error) *apierror.Error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apierror.EmailAlreadyRegistered()
	case errors.Is(err, repository.ErrNotFound):
		return apierror.UserNotFound()
	case errors.Is(err, repository.ErrUnknownReference):
		return apierror.InvalidInput("player does not exist")
	default:
		return apierror.StoreFailure("unknown database error").WithCause(err)
	}
}

// services/errors.go - Service level errors
package services

import (
	"errors"

	"f1cards/game"
	"f1cards/storage"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
	ErrOwnListing         = errors.New("cannot buy your own listing")
	ErrNotListingOwner    = errors.New("listing belongs to another user")
	ErrListingUnavailable = errors.New("listing is no longer available")
	ErrInvalidPrice       = errors.New("price must be positive")

	// Re-exported so handlers only need this package.
	ErrNotFound          = storage.ErrNotFound
	ErrInsufficientFunds = game.ErrInsufficientFunds
	ErrCardNotFound      = game.ErrCardNotFound
)

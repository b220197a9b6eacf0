package tracker

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrMissingField indicates that a required input was blank or absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField indicates that an input was present but out of range.
	ErrInvalidField = errors.New("invalid field")
	// ErrDuplicateEmail indicates that the email belongs to another user.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateFoodItem indicates that a food item with the same name exists.
	ErrDuplicateFoodItem = errors.New("food item already exists")
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates that no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates that the record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
)

// notFound translates a storage miss into ErrNotFound and leaves other errors untouched.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

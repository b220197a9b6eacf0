package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/mealtrack/internal/database"
	"gorm.io/gorm"
)

// NormalizeEmail returns the form in which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Register creates a new user with a salted password hash.
// The name is optional and defaults to the local part of the email.
func (t *Tracker) Register(ctx context.Context, name, email, password string) (*database.User, error) {
	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrMissingField)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName(email)
	}

	salt, hash, err := t.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		Name:               name,
		Email:              email,
		PasswordSalt:       salt,
		PasswordHash:       hash,
		PasswordIterations: t.iterations,
	}
	if err := t.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("User registered", "user", user.ID)
	return user, nil
}

// Verify checks an email and password pair.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (t *Tracker) Verify(ctx context.Context, email, password string) (*database.User, error) {
	user, err := t.db.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			derive(password, dummySalt, t.iterations)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the password of a user after verifying the current one.
// A new salt is generated on every change.
func (t *Tracker) ChangePassword(ctx context.Context, userID, current, next string) error {
	if strings.TrimSpace(next) == "" {
		return fmt.Errorf("%w: new password is required", ErrMissingField)
	}

	user, err := t.db.GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}
	if !checkPassword(user, current) {
		return ErrInvalidCredentials
	}

	salt, hash, err := t.hashPassword(next)
	if err != nil {
		return err
	}

	_, err = t.db.UpdateUser(ctx, userID, func(u *database.User) error {
		// the hash changed since it was verified
		if u.PasswordHash != user.PasswordHash {
			return ErrInvalidCredentials
		}
		u.PasswordSalt = salt
		u.PasswordHash = hash
		u.PasswordIterations = t.iterations
		return nil
	})
	if err != nil {
		return notFound(err, "user")
	}

	log.Info("Password changed", "user", userID)
	return nil
}

// UpdateProfile changes the name and email of a user. A blank name keeps the current one.
func (t *Tracker) UpdateProfile(ctx context.Context, userID, name, email string) (*database.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrMissingField)
	}
	name = strings.TrimSpace(name)

	user, err := t.db.UpdateUser(ctx, userID, func(u *database.User) error {
		if name != "" {
			u.Name = name
		}
		u.Email = email
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return nil, notFound(err, "user")
	}
	return user, nil
}

// LoginOrCreateExternal returns the user with the given email, creating one without a
// password when it does not exist yet. It is used after a successful OIDC login.
func (t *Tracker) LoginOrCreateExternal(ctx context.Context, name, email string) (*database.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrMissingField)
	}

	user, err := t.db.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName(email)
	}
	user = &database.User{Name: name, Email: email}
	if err := t.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			// created concurrently by another login
			return t.db.GetUserByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("User created from external login", "user", user.ID)
	return user, nil
}

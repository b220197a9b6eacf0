package tracker

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/jon4hz/mealtrack/internal/database"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPasswordIterations is the PBKDF2 work factor for new password hashes.
	DefaultPasswordIterations = 600_000

	saltSize = 16
	keySize  = 32
)

// dummySalt is used to spend the same work on unknown emails as on wrong passwords.
var dummySalt = hex.EncodeToString(make([]byte, saltSize))

func newSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func derive(password, salt string, iterations int) string {
	if iterations <= 0 {
		iterations = DefaultPasswordIterations
	}
	return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), iterations, keySize, sha256.New))
}

// hashPassword returns a fresh salt and the derived hash of password.
func (t *Tracker) hashPassword(password string) (salt, hash string, err error) {
	salt, err = newSalt()
	if err != nil {
		return "", "", err
	}
	return salt, derive(password, salt, t.iterations), nil
}

// checkPassword reports whether password matches the stored hash of user.
func checkPassword(user *database.User, password string) bool {
	if !user.HasPassword() {
		derive(password, dummySalt, user.PasswordIterations)
		return false
	}
	got := derive(password, user.PasswordSalt, user.PasswordIterations)
	return subtle.ConstantTimeCompare([]byte(got), []byte(user.PasswordHash)) == 1
}

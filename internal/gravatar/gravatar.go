package gravatar

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/samber/lo"
)

// AvatarURL returns the Gravatar URL of a user's email address.
// Returns an empty string if Gravatar is disabled or email is empty.
func AvatarURL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled {
		return ""
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	avatar := fmt.Sprintf("https://www.gravatar.com/avatar/%x", hash)

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}
	if len(params) > 0 {
		avatar += "?" + params.Encode()
	}
	return avatar
}

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// Validate checks the gravatar options against the values the service accepts.
func Validate(cfg *config.GravatarConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.DefaultImage != "" && !lo.Contains(defaultImages, cfg.DefaultImage) {
		return fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !lo.Contains(ratings, cfg.Rating) {
		return fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return fmt.Errorf("gravatar size must be between 1 and 2048")
	}
	return nil
}

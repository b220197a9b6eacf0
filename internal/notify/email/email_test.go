package email

import (
	"context"
	"testing"
	"time"

	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmailBody(t *testing.T) {
	body, err := generateEmailBody(Reminder{
		UserEmail:     "alice@example.com",
		UserName:      "Alice",
		LastMealName:  "Pasta <al dente>",
		LastMealAt:    time.Now().Add(-5 * time.Hour),
		LastMealAgo:   "5 hours ago",
		IntervalHours: 4,
		ServerURL:     "https://meals.example.com",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Hi Alice,")
	assert.Contains(t, body, "last 4 hours")
	assert.Contains(t, body, "5 hours ago")
	assert.Contains(t, body, "Pasta &lt;al dente&gt;")
	assert.Contains(t, body, `href="https://meals.example.com"`)
}

func TestGenerateEmailBody_Anonymous(t *testing.T) {
	body, err := generateEmailBody(Reminder{IntervalHours: 2})
	require.NoError(t, err)

	assert.Contains(t, body, "Hi there,")
	assert.NotContains(t, body, "Your last meal was")
	assert.NotContains(t, body, "Log a meal now")
}

func TestSendReminder_Skips(t *testing.T) {
	ctx := context.Background()

	disabled := New(&config.EmailConfig{Enabled: false})
	assert.NoError(t, disabled.SendReminder(ctx, Reminder{UserEmail: "alice@example.com"}))

	enabled := New(&config.EmailConfig{Enabled: true, SMTPHost: "localhost", SMTPPort: 1})
	assert.NoError(t, enabled.SendReminder(ctx, Reminder{}))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, enabled.SendReminder(canceled, Reminder{UserEmail: "alice@example.com"}), context.Canceled)
}

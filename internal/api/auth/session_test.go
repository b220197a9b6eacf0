package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/config"
	dbmock "github.com/jon4hz/mealtrack/internal/database/mock"
	"github.com/jon4hz/mealtrack/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name", tracker.ErrMissingField), http.StatusBadRequest},
		{tracker.ErrInvalidField, http.StatusBadRequest},
		{tracker.ErrDuplicateEmail, http.StatusBadRequest},
		{tracker.ErrDuplicateFoodItem, http.StatusBadRequest},
		{tracker.ErrInvalidCredentials, http.StatusBadRequest},
		{tracker.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: meal", tracker.ErrNotFound), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SessionMaxAge: 3600,
		Cache:         &config.CacheConfig{Type: config.CacheTypeMemory, TTL: 60},
	}
	tr, err := tracker.New(cfg, dbmock.NewMockDB(), tracker.WithPasswordIterations(1000))
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions(SessionName, cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.GET("/private", RequireAuth(tr), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, errors.New("secret detail"))
	})
	return r
}

func TestRequireAuth_RejectsMissingSession(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
}

func TestAbortWithError_HidesInternalErrors(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/mealtrack/internal/api/models"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/tracker"
	"golang.org/x/oauth2"
)

// OIDCProvider logs users in through an OpenID Connect provider.
// Unknown emails get an account without a password.
type OIDCProvider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   *oauth2.Config
	cfg      *config.OIDCConfig
	tracker  *tracker.Tracker
}

// NewOIDCProvider discovers the issuer and prepares the oauth2 flow.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig, tr *tracker.Tracker) (*OIDCProvider, error) {
	p := OIDCProvider{
		cfg:     cfg,
		tracker: tr,
	}
	var err error
	p.provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer: %w", err)
	}

	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	p.verifier = p.provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return &p, nil
}

// Login redirects to the provider with a random state remembered in the session.
func (p *OIDCProvider) Login(c *gin.Context) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, p.config.AuthCodeURL(state))
}

// Callback completes the flow, creates the user if needed and starts a session.
func (p *OIDCProvider) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	session := sessions.Default(c)
	state, _ := session.Get(oauthStateKey).(string)
	if state == "" || c.Query("state") != state {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid oauth state"})
		return
	}
	session.Delete(oauthStateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.Error{Error: "missing code"})
		return
	}

	oauth2Token, err := p.config.Exchange(ctx, code)
	if err != nil {
		log.Warn("Failed to exchange oauth code", "error", err)
		c.JSON(http.StatusUnauthorized, models.Error{Error: "unauthorized"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Error{Error: "missing id token"})
		return
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn("Failed to verify id token", "error", err)
		c.JSON(http.StatusUnauthorized, models.Error{Error: "unauthorized"})
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := p.tracker.LoginOrCreateExternal(ctx, claims.Name, claims.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	token, err := p.tracker.IssueSession(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	session.Set(sessionTokenKey, token)
	if err := session.Save(); err != nil {
		AbortWithError(c, err)
		return
	}

	log.Info("User logged in via oidc", "user", user.ID, "provider", p.cfg.Name)
	c.Redirect(http.StatusFound, "/")
}

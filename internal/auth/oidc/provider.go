// Package oidc adapts an external OIDC/OAuth2 identity provider to the
// identity-linking path. The provider performs the handshake and identity
// proofing; this adapter only drives the code exchange and maps verified
// ID-token claims into a domain profile.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/pkg/cryptox"
)

// Provider wraps a discovered OIDC provider and its token verifier.
type Provider struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

// Config holds the provider settings consumed from the environment.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	HTTPClient   *http.Client // optional, defaults to a 30s-timeout client
}

// New discovers the provider's endpoints and builds the verifier. The
// discovery round trip is the only network call at construction time.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("oidc: client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("oidc: redirect URL is required")
	}
	if cfg.IssuerURL == "" {
		return nil, errors.New("oidc: issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	op, err := gooidc.NewProvider(ctx, strings.TrimSuffix(cfg.IssuerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc: provider discovery: %w", err)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "openid profile email"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Begin returns the provider authorization URL plus the state and nonce the
// caller must stash (cookies) and check on the way back.
func (p *Provider) Begin() (authURL, state, nonce string, err error) {
	state, err = cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", "", fmt.Errorf("oidc: generate state: %w", err)
	}
	nonce, err = cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", "", fmt.Errorf("oidc: generate nonce: %w", err)
	}

	authURL = p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the authorization code, verifies the ID token (signature,
// issuer, audience, nonce) and maps its claims to an ExternalProfile. An
// account without a provider-verified email is rejected: linking keys on
// provider id but the directory still records the address.
func (p *Provider) Exchange(ctx context.Context, code, nonce string) (domain.ExternalProfile, error) {
	if code == "" {
		return domain.ExternalProfile{}, errors.New("oidc: authorization code is required")
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("oidc: code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domain.ExternalProfile{}, errors.New("oidc: token response missing id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("oidc: id_token verify: %w", err)
	}
	if idToken.Nonce != nonce {
		return domain.ExternalProfile{}, errors.New("oidc: nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return domain.ExternalProfile{}, fmt.Errorf("oidc: parse claims: %w", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return domain.ExternalProfile{}, errors.New("oidc: provider did not supply a verified email")
	}

	return domain.ExternalProfile{
		ProviderID:  idToken.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PictureURL:  claims.Picture,
	}, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"chatgate/internal/config"
	"chatgate/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Provider-call timeout. A slow identity provider fails the attempt; the
// user restarts from the login step.
const providerTimeout = 10 * time.Second

var (
	// ErrNoIDToken indicates the token exchange succeeded but returned no id_token
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrSigningKeyNotFound indicates the id_token's kid is not in the published key set
	ErrSigningKeyNotFound = errors.New("signing key not found in JWKS")
)

// Service drives the authorization-code flow against the identity provider
type Service struct {
	config       *config.AuthConfig
	oauth        *oauth2.Config
	httpClient   *http.Client
	jwksCache    map[string]*rsa.PublicKey
	jwksCacheMu  sync.RWMutex
	jwksCacheExp time.Time
}

// NewService creates a new authentication service
func NewService(cfg *config.AuthConfig) *Service {
	return &Service{
		config: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL(),
				TokenURL: cfg.TokenURL(),
			},
		},
		httpClient: &http.Client{Timeout: providerTimeout},
		jwksCache:  make(map[string]*rsa.PublicKey),
	}
}

// NewState returns a fresh URL-safe anti-CSRF state value.
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// LoginURL builds the provider authorize redirect for a login attempt.
func (s *Service) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_mode", "query"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange trades the authorization code for tokens and returns the raw
// id_token from the response.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("token endpoint returned %d: %s", retrieveErr.Response.StatusCode, string(retrieveErr.Body))
		}
		return "", fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", ErrNoIDToken
	}
	return rawIDToken, nil
}

// VerifyIDToken validates an id_token against the provider's published key
// set and the configured audience and issuer. exp, iat, iss and aud claims
// are all required.
func (s *Service) VerifyIDToken(ctx context.Context, rawIDToken string) (*auth.IdentityClaims, error) {
	// Parse without validation first to get the key ID from the header
	unverified, _, err := new(jwt.Parser).ParseUnverified(rawIDToken, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}

	kid, ok := unverified.Header["kid"].(string)
	if !ok {
		return nil, ErrSigningKeyNotFound
	}

	publicKey, err := s.getSigningKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse(rawIDToken,
		func(t *jwt.Token) (interface{}, error) { return publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(s.config.ClientID),
		jwt.WithIssuer(s.config.IssuerURL()),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	// jwt.WithAudience and WithIssuer only reject mismatches; absence of the
	// claims themselves must be rejected too.
	for _, required := range []string{"exp", "iat", "iss", "aud"} {
		if _, present := claims[required]; !present {
			return nil, fmt.Errorf("token missing required claim %q", required)
		}
	}

	return &auth.IdentityClaims{
		TenantID:          getStringClaim(claims, "tid"),
		ObjectID:          getStringClaim(claims, "oid"),
		Subject:           getStringClaim(claims, "sub"),
		Email:             getStringClaim(claims, "email"),
		Name:              getStringClaim(claims, "name"),
		PreferredUsername: getStringClaim(claims, "preferred_username"),
		Issuer:            getStringClaim(claims, "iss"),
		ExpiresAt:         getInt64Claim(claims, "exp"),
		IssuedAt:          getInt64Claim(claims, "iat"),
	}, nil
}

// getSigningKey retrieves the public key for kid from the provider's JWKS
func (s *Service) getSigningKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	// Check cache
	s.jwksCacheMu.RLock()
	if time.Now().Before(s.jwksCacheExp) {
		if key, ok := s.jwksCache[kid]; ok {
			s.jwksCacheMu.RUnlock()
			return key, nil
		}
	}
	s.jwksCacheMu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.JWKSURL(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch JWKS: status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	s.jwksCacheMu.Lock()
	s.jwksCache = make(map[string]*rsa.PublicKey)
	for _, key := range jwks.Keys {
		if key.Kid == "" {
			continue
		}
		pubKey, err := key.publicKey()
		if err == nil {
			s.jwksCache[key.Kid] = pubKey
		}
	}
	s.jwksCacheExp = time.Now().Add(time.Hour)
	s.jwksCacheMu.Unlock()

	s.jwksCacheMu.RLock()
	defer s.jwksCacheMu.RUnlock()
	if key, ok := s.jwksCache[kid]; ok {
		return key, nil
	}

	return nil, ErrSigningKeyNotFound
}

// Helper functions to extract claims
func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Claim(claims jwt.MapClaims, key string) int64 {
	if val, ok := claims[key].(float64); ok {
		return int64(val)
	}
	return 0
}

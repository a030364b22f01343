// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Cookie names emitted alongside a session token.
const (
	UsernameCookieName = "userName"
	TokenCookieName    = "adminToken"
)

// Day is the unit session lifetimes are configured in.
const Day = 24 * time.Hour

// SessionConfig is the process-wide session configuration. It is built once
// at startup and never mutated.
type SessionConfig struct {
	Secret       []byte
	Algorithm    string // HS256, HS384 or HS512
	TokenExpiry  time.Duration
	CookieExpiry time.Duration
	CookieSecure bool
}

// Validate checks the configuration.
func (c SessionConfig) Validate() error {
	if len(c.Secret) == 0 {
		return oops.Code("SESSION_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if signingMethod(c.Algorithm) == nil {
		return oops.Code("SESSION_CONFIG_INVALID").
			With("algorithm", c.Algorithm).
			Errorf("unsupported signing algorithm %q", c.Algorithm)
	}
	if c.TokenExpiry <= 0 {
		return oops.Code("SESSION_CONFIG_INVALID").Errorf("token expiry must be positive")
	}
	if c.CookieExpiry <= 0 {
		return oops.Code("SESSION_CONFIG_INVALID").Errorf("cookie expiry must be positive")
	}
	return nil
}

func signingMethod(alg string) *jwt.SigningMethodHMAC {
	switch alg {
	case "HS256":
		return jwt.SigningMethodHS256
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return nil
	}
}

// Claims are the signed contents of a session token.
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// AdminID parses the subject claim.
func (c *Claims) AdminID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeSessionInvalid).With("subject", c.Subject).Wrap(err)
	}
	return id, nil
}

// Session holds the artifacts produced by a successful login.
type Session struct {
	Token     string
	AdminID   ulid.ULID
	Username  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time

	// UsernameCookie is a convenience cookie; it carries no authority. Its
	// value is the percent-encoded username.
	UsernameCookie *http.Cookie
	// TokenCookie carries the signed token for browser clients and expires
	// with it.
	TokenCookie *http.Cookie
}

// Cookies returns the cookies to set on the response.
func (s *Session) Cookies() []*http.Cookie {
	return []*http.Cookie{s.UsernameCookie, s.TokenCookie}
}

// IssuerOption configures a SessionIssuer.
type IssuerOption func(*SessionIssuer)

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *SessionIssuer) {
		i.now = now
	}
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer struct {
	cfg    SessionConfig
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewSessionIssuer creates a SessionIssuer from a validated configuration.
func NewSessionIssuer(cfg SessionConfig, opts ...IssuerOption) (*SessionIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	i := &SessionIssuer{
		cfg:    cfg,
		method: signingMethod(cfg.Algorithm),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a fresh token for admin and builds the session cookies.
func (i *SessionIssuer) Issue(admin *Administrator) (*Session, error) {
	if admin == nil || admin.ID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeInternal).Errorf("cannot issue a session without an administrator")
	}

	now := i.now()
	expiresAt := now.Add(i.cfg.TokenExpiry)
	claims := &Claims{
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   admin.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(i.method, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return nil, oops.Code(CodeInternal).
			With("operation", "sign session token").
			With("algorithm", i.cfg.Algorithm).
			Wrap(err)
	}

	cookieExpires := now.Add(i.cfg.CookieExpiry)
	return &Session{
		Token:          token,
		AdminID:        admin.ID,
		Username:       admin.Username,
		Role:           admin.Role,
		IssuedAt:       now,
		ExpiresAt:      expiresAt,
		UsernameCookie: i.cookie(UsernameCookieName, url.PathEscape(admin.Username), cookieExpires),
		TokenCookie:    i.cookie(TokenCookieName, token, expiresAt),
	}, nil
}

// Verify checks the token signature, algorithm and expiry.
func (i *SessionIssuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code(CodeSessionInvalid).Errorf("session token cannot be empty")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.cfg.Secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code(CodeSessionExpired).Errorf("session has expired")
		}
		return nil, oops.Code(CodeSessionInvalid).With("reason", err.Error()).Errorf("invalid session token")
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ClearCookies returns cookies that expire both session cookies on the
// client. The token itself stays valid until it expires.
func (i *SessionIssuer) ClearCookies() []*http.Cookie {
	expired := func(name string) *http.Cookie {
		c := i.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		return c
	}
	return []*http.Cookie{expired(UsernameCookieName), expired(TokenCookieName)}
}

func (i *SessionIssuer) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   i.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

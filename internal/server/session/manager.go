// Package session implements the cookie-based JWT session lifecycle: login,
// access validation, access renewal from a refresh token and logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// UserFinder is the read side of the user store the manager needs.
// Both methods return common.ErrorNotFound when no user matches.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type PasswordVerifier interface {
	Verify(hash, password string) bool
	DummyVerify(password string)
}

// Config is fixed at startup. Expiries are whole minutes.
type Config struct {
	Keys                  *auth.Keys
	AccessTokenExpiresIn  int
	RefreshTokenExpiresIn int
	CookieSecure          bool
}

// Token is a signed claim together with the lifetime of the cookie that
// carries it.
type Token struct {
	Value     string
	ExpiresAt time.Time
	MaxAge    int
}

type TokenPair struct {
	UserID  string
	Access  Token
	Refresh Token
}

type Manager struct {
	cfg    Config
	codec  *auth.Codec
	users  UserFinder
	hasher PasswordVerifier
	now    func() time.Time

	accessExtractors  []Extractor
	refreshExtractors []Extractor
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithAccessExtractors replaces the default header-then-cookie order.
func WithAccessExtractors(e ...Extractor) Option {
	return func(m *Manager) { m.accessExtractors = e }
}

func WithRefreshExtractors(e ...Extractor) Option {
	return func(m *Manager) { m.refreshExtractors = e }
}

func NewManager(cfg Config, users UserFinder, hasher PasswordVerifier, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		codec:  auth.NewCodec(cfg.Keys),
		users:  users,
		hasher: hasher,
		now:    time.Now,
		accessExtractors: []Extractor{
			BearerHeader(),
			Cookie(common.AccessTokenCookieName),
		},
		refreshExtractors: []Extractor{
			Cookie(common.RefreshTokenCookieName),
		},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Authenticate checks credentials and mints an access and a refresh token.
// An unknown email and a wrong password are indistinguishable.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := m.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			m.hasher.DummyVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if !m.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	now := m.now()

	access, err := m.issue(user.ID, auth.KindAccess, now, m.cfg.AccessTokenExpiresIn)
	if err != nil {
		return nil, err
	}
	refresh, err := m.issue(user.ID, auth.KindRefresh, now, m.cfg.RefreshTokenExpiresIn)
	if err != nil {
		return nil, err
	}

	return &TokenPair{UserID: user.ID, Access: access, Refresh: refresh}, nil
}

// ValidateAccess returns the id of the user the access token belongs to.
// It never changes session state.
func (m *Manager) ValidateAccess(r *http.Request) (string, error) {
	raw, ok := firstToken(r, m.accessExtractors)
	if !ok {
		return "", ErrMissingToken
	}

	claims, err := m.codec.Parse(raw, auth.KindAccess, m.now())
	if err != nil {
		return "", newError(KindTokenExpiredOrInvalid, err)
	}

	user, err := m.lookup(r.Context(), claims.Subject)
	if err != nil {
		return "", err
	}

	if !user.Verified {
		return "", ErrNotVerified
	}

	return user.ID, nil
}

// RefreshAccess mints a new access token from the refresh cookie. The
// refresh token itself is left as is and stays usable until it expires.
func (m *Manager) RefreshAccess(r *http.Request) (*Token, error) {
	raw, ok := firstToken(r, m.refreshExtractors)
	if !ok {
		return nil, ErrMissingToken
	}

	now := m.now()

	claims, err := m.codec.Parse(raw, auth.KindRefresh, now)
	if err != nil {
		return nil, newError(KindTokenExpiredOrInvalid, err)
	}

	if claims.Subject == "" {
		return nil, ErrInvalidRefreshState
	}

	user, err := m.lookup(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}

	access, err := m.issue(user.ID, auth.KindAccess, now, m.cfg.AccessTokenExpiresIn)
	if err != nil {
		return nil, err
	}
	return &access, nil
}

// SetSessionCookies writes the access, refresh and logged_in cookies.
func (m *Manager) SetSessionCookies(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, m.cookie(common.AccessTokenCookieName, pair.Access.Value, pair.Access, true))
	http.SetCookie(w, m.cookie(common.RefreshTokenCookieName, pair.Refresh.Value, pair.Refresh, true))
	http.SetCookie(w, m.cookie(common.LoggedInCookieName, "True", pair.Access, false))
}

// SetAccessCookies writes the access and logged_in cookies after a refresh.
func (m *Manager) SetAccessCookies(w http.ResponseWriter, access *Token) {
	http.SetCookie(w, m.cookie(common.AccessTokenCookieName, access.Value, *access, true))
	http.SetCookie(w, m.cookie(common.LoggedInCookieName, "True", *access, false))
}

// Logout expires all three cookies. Safe to call without a session.
func (m *Manager) Logout(w http.ResponseWriter) {
	for _, c := range []struct {
		name     string
		httpOnly bool
	}{
		{common.AccessTokenCookieName, true},
		{common.RefreshTokenCookieName, true},
		{common.LoggedInCookieName, false},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: c.httpOnly,
			Secure:   m.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (m *Manager) issue(userID string, kind auth.TokenKind, now time.Time, minutes int) (Token, error) {
	value, expiresAt, err := m.codec.Issue(userID, kind, now, time.Duration(minutes)*time.Minute)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: expiresAt, MaxAge: minutes * 60}, nil
}

// lookup resolves a claim subject. Malformed ids cannot name a user and are
// reported the same way as missing ones; storage faults pass through.
func (m *Manager) lookup(ctx context.Context, id string) (*models.User, error) {
	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidID) {
			return nil, newError(KindUserNotFound, err)
		}
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	return user, nil
}

func (m *Manager) cookie(name, value string, t Token, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  t.ExpiresAt.UTC(),
		MaxAge:   t.MaxAge,
		HttpOnly: httpOnly,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

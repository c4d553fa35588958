// Package auth holds the credential slot and the signed-in user session.
// The OAuth redirect handshake happens outside the client; it only receives
// the resulting bearer token.
package auth

import (
	"context"
	"time"

	errx "github.com/triptrop/client/internal/core/error"
	"github.com/triptrop/client/internal/resource"
	"github.com/triptrop/client/internal/transport"
	logx "github.com/triptrop/client/pkg/logger"
)

// Config holds credential settings.
type Config struct {
	AccessToken string        `envconfig:"ACCESS_TOKEN"`
	TTL         time.Duration `envconfig:"CREDENTIAL_TTL" default:"30m"`
	Store       string        `envconfig:"CREDENTIAL_STORE" default:"memory"`
	Profile     string        `envconfig:"CREDENTIAL_PROFILE" default:"default"`
}

// User is the authenticated account as returned by /auth/me.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	GoogleID  *string `json:"google_id,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

// Session tracks the signed-in user.
type Session struct {
	store     Store
	transport transport.Transport
	ttl       time.Duration
	loginURL  string
	now       func() time.Time
	ctrl      *resource.Controller[*User]
}

// NewSession builds a session over store. loginURL is where a browser
// starts the OAuth flow.
func NewSession(t transport.Transport, store Store, cfg Config, loginURL string) *Session {
	return &Session{
		store:     store,
		transport: t,
		ttl:       cfg.TTL,
		loginURL:  loginURL,
		now:       time.Now,
		ctrl:      resource.New[*User]("session", nil),
	}
}

// LoginURL returns the backend OAuth entry point.
func (s *Session) LoginURL() string { return s.loginURL }

// SignIn stores token in the credential slot and loads the user it belongs
// to. An already expired JWT is rejected without a round trip.
func (s *Session) SignIn(ctx context.Context, token string) (*User, error) {
	ttl := s.ttl
	if exp, ok := ExpiryOf(token); ok {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return nil, errx.New(errx.KindAuth, 0, "credential expired", nil).WithOp("auth.sign_in")
		}
	}
	if err := s.store.Set(ctx, token, ttl); err != nil {
		return nil, err
	}
	return s.Me(ctx)
}

// Me loads the current user. An auth failure evicts the credential and the
// cached user; any other failure keeps both. A rejection only evicts when it
// reached the session state and the slot still holds the token it was sent
// with, so a late 401 for a replaced token never signs out a newer sign-in.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var sent string
	u, applied, err := s.ctrl.RunApplied(ctx, func(ctx context.Context) (*User, error) {
		tok, err := s.store.Token(ctx)
		if err == nil {
			sent = tok
		}
		return transport.Call[*User](ctx, s.transport, transport.Get("/auth/me", nil))
	})
	if err != nil {
		if applied && errx.IsKind(err, errx.KindAuth) {
			s.evict(ctx, sent)
		}
		return nil, err
	}
	return u, nil
}

// SignOut clears the credential and the cached user.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.ctrl.Update(func(*User) *User { return nil })
	return err
}

// User returns the cached user, nil when signed out.
func (s *Session) User() *User { return s.ctrl.Snapshot().Data }

// Authenticated reports whether a user is loaded.
func (s *Session) Authenticated() bool { return s.User() != nil }

// State returns the session's status, error and user.
func (s *Session) State() resource.State[*User] { return s.ctrl.Snapshot() }

// Subscribe registers fn for session changes.
func (s *Session) Subscribe(fn func(resource.State[*User])) func() {
	return s.ctrl.Subscribe(fn)
}

func (s *Session) evict(ctx context.Context, rejected string) {
	current, err := s.store.Token(ctx)
	if err == nil && current != rejected {
		logx.Debug().Msg("credential replaced since request, keeping session")
		return
	}
	logx.Info().Msg("credential rejected, signing out")
	if err := s.store.Clear(ctx); err != nil {
		logx.Warn().Err(err).Msg("failed to evict credential")
	}
	s.ctrl.Update(func(*User) *User { return nil })
}

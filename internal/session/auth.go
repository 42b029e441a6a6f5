package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
)

// ErrMissingCredentials is returned before any request when email or
// password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// AuthAPI is the subset of the API client the Authenticator needs.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (api.UserProfile, error)
}

// Authenticator ties the auth endpoints to a Session.
type Authenticator struct {
	api     AuthAPI
	session *Session
	log     zerolog.Logger

	mu   sync.RWMutex
	user *api.UserProfile
}

// NewAuthenticator returns an Authenticator storing tokens in s.
func NewAuthenticator(client AuthAPI, s *Session, log zerolog.Logger) *Authenticator {
	return &Authenticator{api: client, session: s, log: log}
}

// Login exchanges credentials for a token and persists it.
func (a *Authenticator) Login(ctx context.Context, email, password string) (api.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return api.UserProfile{}, ErrMissingCredentials
	}
	resp, err := a.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return api.UserProfile{}, err
	}
	return a.accept(resp)
}

// Register creates an account and signs in with it.
func (a *Authenticator) Register(ctx context.Context, req api.RegisterRequest) (api.UserProfile, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return api.UserProfile{}, ErrMissingCredentials
	}
	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return api.UserProfile{}, err
	}
	return a.accept(resp)
}

func (a *Authenticator) accept(resp api.AuthResponse) (api.UserProfile, error) {
	if err := a.session.Set(resp.Token); err != nil {
		return api.UserProfile{}, fmt.Errorf("store token: %w", err)
	}
	a.setUser(&resp.User)
	a.log.Info().Str("user_id", resp.User.ID).Msg("signed in")
	return resp.User, nil
}

// Logout notifies the server and clears the local session even when the
// server call fails. The server error is returned for display.
func (a *Authenticator) Logout(ctx context.Context) error {
	var serverErr error
	if a.session.Authenticated() {
		serverErr = a.api.Logout(ctx)
		if serverErr != nil && !api.IsAuth(serverErr) {
			a.log.Warn().Err(serverErr).Msg("logout request failed")
		} else {
			serverErr = nil
		}
	}
	a.setUser(nil)
	if err := a.session.Clear(); err != nil {
		return err
	}
	return serverErr
}

// Restore loads the profile for a persisted token. A rejected token clears
// the session and reports no user without an error.
func (a *Authenticator) Restore(ctx context.Context) (*api.UserProfile, error) {
	if !a.session.Authenticated() {
		return nil, nil
	}
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		if api.KindOf(err) == api.KindAuthRequired {
			a.log.Info().Msg("stored token rejected, clearing session")
			a.setUser(nil)
			return nil, a.session.Clear()
		}
		return nil, err
	}
	a.setUser(&user)
	return &user, nil
}

// Authenticated reports whether a token is stored.
func (a *Authenticator) Authenticated() bool {
	return a.session.Authenticated()
}

// User returns the signed-in profile, if known.
func (a *Authenticator) User() (api.UserProfile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return api.UserProfile{}, false
	}
	return *a.user, true
}

func (a *Authenticator) setUser(u *api.UserProfile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u == nil {
		a.user = nil
		return
	}
	dup := *u
	a.user = &dup
}

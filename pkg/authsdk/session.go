package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Session holds a token pair and refreshes the access token shortly before
// it expires. Refresh tokens are single use, so concurrent callers share one
// refresh under the write lock.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	userID       int64
	role         string
}

// refreshSkew refreshes this long before the access token expires.
const refreshSkew = 30 * time.Second

var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client}
	s.apply(tok)
	return s
}

// NewSessionFromTokens resumes a session from stored tokens.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// apply must be called with mu held for writing, or before s is shared.
func (s *Session) apply(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshSkew)
	if tok.UserID != 0 {
		s.userID = tok.UserID
		s.role = tok.Role
	}
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed meanwhile.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	tok, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.apply(tok)
	return s.accessToken, nil
}

func (s *Session) call(ctx context.Context, method, path string, body, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.call(ctx, method, path, token, body, out)
}

// Me returns the profile of the session's user.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := s.call(ctx, http.MethodGet, "/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the password. The server ends every session of the
// user, this one included.
func (s *Session) ChangePassword(ctx context.Context, current, newPassword string) error {
	return s.call(ctx, http.MethodPost, "/v1/auth/password/change",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: newPassword}, nil)
}

// RevokeUserSessions ends every session of userID. Requires the admin role.
func (s *Session) RevokeUserSessions(ctx context.Context, userID int64) (*RevokeAllResponse, error) {
	var out RevokeAllResponse
	path := "/v1/admin/users/" + strconv.FormatInt(userID, 10) + "/sessions/revoke"
	if err := s.call(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserActive enables or disables userID. Requires the admin role.
func (s *Session) SetUserActive(ctx context.Context, userID int64, active bool) error {
	path := "/v1/admin/users/" + strconv.FormatInt(userID, 10) + "/active"
	return s.call(ctx, http.MethodPost, path, SetActiveRequest{Active: active}, nil)
}

// Logout revokes the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return ErrNoRefreshToken
	}
	return s.client.Revoke(ctx, refreshToken)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// UserID returns the id of the session's user, if the server reported it.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Role returns the role the session was issued with.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Package session owns who is signed in to the console: the bearer token,
// the administrator identity, and their persistence across restarts.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password. Please try again.")
	ErrNotAuthenticated   = errors.New("not signed in")
	ErrNotBound           = errors.New("session store has no authenticator")
)

var credentialFailure = regexp.MustCompile(`(?i)invalid (credentials|email|password)`)

// Authenticator performs the remote half of login and logout.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context) error
}

// Store is the single source of truth for the current credential. It is
// safe for concurrent use; Token is read from fetch goroutines.
type Store struct {
	mu     sync.RWMutex
	state  State
	cred   *models.Credential
	slots  Slots
	auth   Authenticator
	logger logging.Logger
}

func New(slots Slots, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{slots: slots, logger: logger.With("component", "session")}
}

// Bind attaches the API client. The client itself needs the store as its
// token source, so this happens after construction.
func (s *Store) Bind(auth Authenticator) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
}

// Restore reads both slots and settles in Authenticated or Anonymous. A
// missing slot, an identity that does not parse or a failed read clears
// both slots. Failures are handled here and never returned.
//
// The lock is not held while the slots are read, so other goroutines see
// Loading() report true. A Login or Logout that settles the state in the
// meantime wins and the restored values are discarded.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	s.state = StateRestoring
	s.cred = nil
	s.mu.Unlock()

	token, rawIdentity, err := s.slots.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRestoring {
		s.logger.Debug(ctx, "session settled during restore, discarding slots", "state", s.state)
		return
	}

	if err != nil {
		s.logger.Warn(ctx, "session restore failed, clearing", "error", err)
		_ = s.clearLocked(ctx)
		return
	}

	if len(token) == 0 || len(rawIdentity) == 0 {
		if len(token) > 0 || len(rawIdentity) > 0 {
			s.logger.Warn(ctx, "session slots incomplete, clearing")
		}
		_ = s.clearLocked(ctx)
		return
	}

	identity, err := parseIdentity(rawIdentity)
	if err != nil {
		s.logger.Warn(ctx, "stored identity is corrupt, clearing", "error", err)
		_ = s.clearLocked(ctx)
		return
	}

	s.cred = &models.Credential{Token: string(token), Identity: identity}
	s.state = StateAuthenticated
	s.logger.Info(ctx, "session restored", "email", identity.Email)
}

// Login authenticates remotely and persists the credential. On failure the
// state is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()
	if auth == nil {
		return ErrNotBound
	}

	res, err := auth.Login(ctx, email, password)
	if err != nil {
		return rewriteLoginError(err)
	}

	rawIdentity, err := json.Marshal(res.Admin)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.Save(ctx, []byte(res.Token), rawIdentity); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.cred = &models.Credential{Token: res.Token, Identity: *res.Admin}
	s.state = StateAuthenticated
	s.logger.Info(ctx, "signed in", "email", res.Admin.Email)
	return nil
}

// Logout asks the server to invalidate the token and then always clears
// the local credential. Remote failures are logged, not returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.RLock()
	auth, hasToken := s.auth, s.cred != nil && s.cred.Token != ""
	s.mu.RUnlock()

	if auth != nil && hasToken {
		if err := auth.Logout(ctx); err != nil {
			s.logger.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.clearLocked(ctx)
	s.logger.Info(ctx, "signed out")
	return err
}

// Expire drops the credential after the server rejected it.
func (s *Store) Expire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return
	}
	_ = s.clearLocked(ctx)
	s.logger.Info(ctx, "session expired")
}

// UpdateUser merges patch into the identity and persists the result. It
// does nothing unless the store is Authenticated.
func (s *Store) UpdateUser(ctx context.Context, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated || s.cred == nil {
		return nil
	}

	merged, err := s.cred.Identity.Merge(patch)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.cred.Identity = merged
	if err := s.slots.SaveIdentity(ctx, raw); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Token implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.Token
}

func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return models.Identity{}, false
	}
	return s.cred.Identity, true
}

// IsAuthenticated is false while restoring.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.cred != nil && s.cred.Token != ""
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading is true only while Restore is reading the slots.
func (s *Store) Loading() bool {
	return s.State() == StateRestoring
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.cred = nil
	s.state = StateAnonymous
	if err := s.slots.Clear(ctx); err != nil {
		s.logger.Warn(ctx, "failed to clear session slots", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func parseIdentity(raw []byte) (models.Identity, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return models.Identity{}, err
	}
	if probe == nil {
		return models.Identity{}, fmt.Errorf("identity is %s", bytes.TrimSpace(raw))
	}
	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return models.Identity{}, err
	}
	return identity, nil
}

// rewriteLoginError replaces credential failures with one canonical
// message; anything else is returned as is.
func rewriteLoginError(err error) error {
	if credentialFailure.MatchString(client.Message(err)) {
		return ErrInvalidCredentials
	}
	var se *client.StatusError
	if errors.As(err, &se) && se.StatusCode == 401 && se.Message == "" {
		return ErrInvalidCredentials
	}
	return err
}

var _ client.TokenSource = (*Store)(nil)

// Package session holds the client-side authentication state: who is logged
// in, with which token, and whether the server has confirmed it.
//
// A Store is the single source of truth for the bearer token. It is bound to
// a client.Client as its TokenSource, so requests always read the token from
// the store instead of from duplicated header state, and as its
// SessionClearer, so a 401 from any endpoint resets the session.
//
// Operations are not serialized against each other. Concurrent Login and
// Logout resolve as last write wins; individual state updates are atomic.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ainewshub/newshub/internal/cli/client"
	"github.com/ainewshub/newshub/internal/cli/storage"
)

// API is the part of the backend client the store calls
type API interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*client.AuthResponse, error)
	Me(ctx context.Context) (client.User, error)
}

// Store owns the session state
type Store struct {
	api     API
	storage storage.Storage
	logger  zerolog.Logger

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(State)
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "session").Logger()
	}
}

// NewStore creates an empty (anonymous) store. Call Rehydrate to restore a
// persisted session.
func NewStore(api API, st storage.Storage, opts ...Option) *Store {
	if st == nil {
		st = storage.NewMemory()
	}

	s := &Store{
		api:     api,
		storage: st,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind makes the store the client's token source and 401 handler
func (s *Store) Bind(c *client.Client) {
	c.SetTokenSource(s)
	c.SetSessionClearer(s)
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Token implements client.TokenSource
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token, nil
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Close drops all subscribers
func (s *Store) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = nil
}

// Rehydrate restores token and user from durable storage. The restored
// session stays unauthenticated until CheckAuth confirms it. Unreadable
// storage or a corrupt blob is logged and leaves the session anonymous.
func (s *Store) Rehydrate() {
	persisted, err := loadPersisted(s.storage)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring unreadable persisted session")
		return
	}

	s.update(func(st *State) {
		st.Token = persisted.Token
		st.User = persisted.User
		st.IsAuthenticated = false
		st.IsLoading = false
	})
}

// Login authenticates against /auth/login
func (s *Store) Login(ctx context.Context, email, password string) Result {
	return s.authenticate(ctx, "login failed", func() (*client.AuthResponse, error) {
		return s.api.Login(ctx, email, password)
	})
}

// Register creates an account through /auth/register and logs it in
func (s *Store) Register(ctx context.Context, username, email, password string) Result {
	return s.authenticate(ctx, "registration failed", func() (*client.AuthResponse, error) {
		return s.api.Register(ctx, username, email, password)
	})
}

func (s *Store) authenticate(ctx context.Context, fallback string, call func() (*client.AuthResponse, error)) Result {
	s.update(func(st *State) {
		st.IsLoading = true
	})

	resp, err := call()
	if err != nil {
		s.update(func(st *State) {
			st.IsLoading = false
		})
		s.logger.Debug().Err(err).Msg(fallback)
		return Result{Success: false, Message: failureMessage(err, fallback)}
	}

	s.update(func(st *State) {
		st.User = resp.User.Clone()
		st.Token = resp.Token
		st.IsAuthenticated = true
		st.IsLoading = false
	})
	s.persist()

	return Result{Success: true, Message: resp.Message}
}

// Logout clears the session. Calling it while anonymous is a no-op.
func (s *Store) Logout() {
	s.clear()
}

// ClearSession implements client.SessionClearer: the server rejected the
// token, so the persisted blob and every in-memory trace of it go.
func (s *Store) ClearSession() {
	s.logger.Info().Msg("Session invalidated by server")
	s.clear()
}

func (s *Store) clear() {
	if err := s.storage.Delete(StorageKey); err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete persisted session")
	}

	s.update(func(st *State) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
	})
}

// CheckAuth confirms the current token with /auth/me. Without a token it
// does nothing. On any failure the session collapses to anonymous and the
// error is returned.
func (s *Store) CheckAuth(ctx context.Context) error {
	token, _ := s.Token()
	if token == "" {
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Stored session rejected")
		s.Logout()
		return err
	}

	s.update(func(st *State) {
		st.User = user.Clone()
		st.IsAuthenticated = true
	})
	s.persist()
	return nil
}

// UpdateUser shallow-merges partial into the current user. It never
// changes IsAuthenticated.
func (s *Store) UpdateUser(partial client.User) {
	s.update(func(st *State) {
		st.User = st.User.Merge(partial)
	})
	s.persist()
}

// update applies fn under the lock, enforces the token invariant and
// notifies subscribers with the resulting state.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	if s.state.Token == "" {
		s.state.IsAuthenticated = false
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(state.clone())
	}
}

// persist writes token and user to durable storage
func (s *Store) persist() {
	s.mu.RLock()
	token, user := s.state.Token, s.state.User.Clone()
	s.mu.RUnlock()

	blob, err := encodeBlob(token, user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode session")
		return
	}
	if err := s.storage.Set(StorageKey, blob); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session")
	}
}

func failureMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback + ": " + client.Message(err)
}

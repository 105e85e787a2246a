package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/cache"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)

const sessionKeyPrefix = "session:"

// Session is the durable per-browser state: the authenticated user and
// the upstream bearer token.
type Session struct {
	ID        string      `json:"id"`
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store owns authentication sessions. Sessions persist in the cache
// backend so a gateway restart does not sign users out; the bound API
// clients (which carry in-flight refresh state) live in memory and are
// rebuilt on demand.
type Store struct {
	cache  cache.CacheService
	base   *api.Client
	ttl    time.Duration
	logger utils.Logger

	mu      sync.Mutex
	clients map[string]*api.Client
}

func NewStore(cacheService cache.CacheService, baseClient *api.Client, ttl time.Duration, logger utils.Logger) *Store {
	return &Store{
		cache:   cacheService,
		base:    baseClient,
		ttl:     ttl,
		logger:  logger,
		clients: make(map[string]*api.Client),
	}
}

// Login authenticates against the upstream and creates a durable session.
func (s *Store) Login(ctx context.Context, email, password string, role models.UserRole) (*Session, error) {
	auth, err := s.base.Login(ctx, email, password, role)
	if err != nil {
		return nil, err
	}
	return s.createSession(ctx, auth)
}

// Register creates an upstream account and signs the new user in.
func (s *Store) Register(ctx context.Context, name, email, password string) (*Session, error) {
	auth, err := s.base.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.createSession(ctx, auth)
}

func (s *Store) createSession(ctx context.Context, auth *api.AuthResponse) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        id,
		User:      auth.User,
		Token:     auth.Token,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+id, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("session created", "user_id", sess.User.ID, "role", sess.User.Role)
	return sess, nil
}

// Current loads the session for the given ID.
func (s *Store) Current(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	var sess Session
	if err := s.cache.Get(ctx, sessionKeyPrefix+sessionID, &sess); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Client returns the upstream client bound to the session's token store.
// At most one client exists per session, so concurrent requests share
// its single-flight refresh state instead of racing separate refreshes.
func (s *Store) Client(sessionID string) *api.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[sessionID]; ok {
		return client
	}
	client := s.base.WithTokens(&tokenStore{store: s, sessionID: sessionID})
	s.clients[sessionID] = client
	return client
}

// Logout tears the session down: best-effort upstream invalidation, then
// local removal. The local side always wins.
func (s *Store) Logout(ctx context.Context, sessionID string) {
	if err := s.Client(sessionID).Logout(ctx); err != nil {
		s.logger.Warn("upstream logout failed", "error", err)
	}
	s.drop(ctx, sessionID)
}

// Invalidate removes the session without calling the upstream; used when
// the upstream itself already rejected the token.
func (s *Store) Invalidate(ctx context.Context, sessionID string) {
	s.drop(ctx, sessionID)
}

func (s *Store) drop(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		s.logger.Warn("failed to delete session", "error", err)
	}
	s.mu.Lock()
	delete(s.clients, sessionID)
	s.mu.Unlock()
}

// RefreshIfNeeded re-verifies the session against the upstream and
// updates the cached user payload. A rejected token invalidates the
// session.
func (s *Store) RefreshIfNeeded(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.Client(sessionID).Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.drop(ctx, sessionID)
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	sess.User = *user
	if err := s.cache.Set(ctx, sessionKeyPrefix+sessionID, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return sess, nil
}

func newSessionID() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// tokenStore adapts one session entry to the client's TokenStore.
type tokenStore struct {
	store     *Store
	sessionID string
}

func (t *tokenStore) Token(ctx context.Context) (string, error) {
	sess, err := t.store.Current(ctx, t.sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNotAuthenticated) {
			return "", nil
		}
		return "", err
	}
	return sess.Token, nil
}

func (t *tokenStore) SetToken(ctx context.Context, token string) error {
	sess, err := t.store.Current(ctx, t.sessionID)
	if err != nil {
		return err
	}
	sess.Token = token
	return t.store.cache.Set(ctx, sessionKeyPrefix+t.sessionID, sess, t.store.ttl)
}

func (t *tokenStore) Clear(ctx context.Context) error {
	t.store.drop(ctx, t.sessionID)
	return nil
}

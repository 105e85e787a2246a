package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/cache"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

func testUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "correct-horse" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(api.AuthResponse{
				Token: "token-1",
				User:  models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleUser},
			})
		case "/auth/register":
			json.NewEncoder(w).Encode(api.AuthResponse{
				Token: "token-2",
				User:  models.User{ID: "u2", Name: "Grace", Email: "grace@example.com", Role: models.RoleUser},
			})
		case "/auth/me":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(models.User{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleUser})
		case "/auth/logout":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestStore(t *testing.T, upstreamURL string) *Store {
	t.Helper()
	client := api.NewClient(upstreamURL)
	return NewStore(cache.NewMemoryCache(), client, time.Hour, utils.NewDevelopmentLogger())
}

func TestStore_LoginCreatesSession(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	sess, err := store.Login(context.Background(), "ada@example.com", "correct-horse", models.RoleUser)

	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, "token-1", sess.Token)

	loaded, err := store.Current(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.User, loaded.User)
}

func TestStore_LoginRejectionDoesNotCreateSession(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	_, err := store.Login(context.Background(), "ada@example.com", "wrong", models.RoleUser)

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestStore_CurrentUnknownSession(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	_, err := store.Current(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Current(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStore_ClientIsMemoizedPerSession(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	sess, err := store.Register(context.Background(), "Grace", "grace@example.com", "correct-horse")
	require.NoError(t, err)

	first := store.Client(sess.ID)
	second := store.Client(sess.ID)
	assert.Same(t, first, second)

	other := store.Client("another-session")
	assert.NotSame(t, first, other)
}

func TestStore_LogoutDropsSessionAndClient(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	sess, err := store.Login(context.Background(), "ada@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)
	first := store.Client(sess.ID)

	store.Logout(context.Background(), sess.ID)

	_, err = store.Current(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NotSame(t, first, store.Client(sess.ID))
}

func TestStore_RefreshIfNeededUpdatesUser(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	sess, err := store.Login(context.Background(), "ada@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)

	refreshed, err := store.RefreshIfNeeded(context.Background(), sess.ID)

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", refreshed.User.Name)

	loaded, err := store.Current(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", loaded.User.Name)
}

func TestStore_TokenStoreRoundTrip(t *testing.T) {
	server := testUpstream(t)
	defer server.Close()
	store := newTestStore(t, server.URL)

	sess, err := store.Login(context.Background(), "ada@example.com", "correct-horse", models.RoleUser)
	require.NoError(t, err)

	tokens := &tokenStore{store: store, sessionID: sess.ID}

	token, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	require.NoError(t, tokens.SetToken(context.Background(), "rotated"))
	token, err = tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)

	require.NoError(t, tokens.Clear(context.Background()))
	token, err = tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

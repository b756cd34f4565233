package session_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/linemk/restaurant-orders/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisStore поднимает miniredis и RedisStore поверх него
func setupRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return session.NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_SaveLoad(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	s := session.New("abc")
	s.Set("cart", []byte(`{"1":{"quantity":2}}`))
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	v, ok := loaded.Get("cart")
	require.True(t, ok)
	assert.JSONEq(t, `{"1":{"quantity":2}}`, string(v))
	assert.False(t, loaded.Modified())
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisStore_SaveReplacesFields(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	s := session.New("abc")
	s.Set("cart", []byte("1"))
	s.Set("other", []byte("2"))
	require.NoError(t, store.Save(ctx, s))

	s.Delete("other")
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	_, ok := loaded.Get("other")
	assert.False(t, ok, "deleted key should not survive a save")
}

func TestRedisStore_SaveEmptyRemovesSession(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	s := session.New("abc")
	s.Set("cart", []byte("1"))
	require.NoError(t, store.Save(ctx, s))

	s.Delete("cart")
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, mr.Exists("session:abc"))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	s := session.New("abc")
	s.Set("cart", []byte("1"))
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("session:abc"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)

	s := session.New("abc")
	s.Set("k", []byte("v"))
	require.NoError(t, store.Save(ctx, s))

	// изменения после сохранения не протекают в хранилище
	s.Set("k", []byte("changed"))
	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	v, _ := loaded.Get("k")
	assert.Equal(t, "v", string(v))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMiddleware_NewSessionSavedWhenModified(t *testing.T) {
	store := session.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var seenID string
	handler := session.Middleware(logger, store, session.CookieOptions{Name: "sid", TTL: time.Hour})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			require.True(t, ok)
			seenID = s.ID()
			s.Set("cart", []byte("{}"))
			s.MarkModified()
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, seenID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	loaded, err := store.Load(context.Background(), seenID)
	require.NoError(t, err)
	_, ok := loaded.Get("cart")
	assert.True(t, ok)
}

func TestMiddleware_ExistingSessionReused(t *testing.T) {
	store := session.NewMemoryStore()
	existing := session.New("known-id")
	existing.Set("cart", []byte(`{"1":{}}`))
	require.NoError(t, store.Save(context.Background(), existing))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			assert.Equal(t, "known-id", s.ID())
			v, ok := s.Get("cart")
			assert.True(t, ok)
			assert.Equal(t, `{"1":{}}`, string(v))
		}),
	)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "known-id"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_UnknownCookieStartsNewSession(t *testing.T) {
	store := session.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			assert.NotEqual(t, "stale-id", s.ID())
		}),
	)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "stale-id"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// сессию не меняли - сохранять нечего
	_, err := store.Load(context.Background(), "stale-id")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMiddleware_StoreError(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	called := false
	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }),
	)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "abc"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, called)
}

// failingSaveStore грузит сессии из памяти, но не может их сохранить
type failingSaveStore struct {
	*session.MemoryStore
}

func (failingSaveStore) Save(ctx context.Context, s *session.Session) error {
	return errors.New("redis: connection refused")
}

func TestMiddleware_SavedBeforeResponseIsWritten(t *testing.T) {
	store := session.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			s.Set("cart", []byte("{}"))
			s.MarkModified()

			w.WriteHeader(http.StatusCreated)
			// к моменту отправки заголовков сессия уже в хранилище
			_, err := store.Load(r.Context(), s.ID())
			assert.NoError(t, err)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"ok":true}`, rr.Body.String())
}

func TestMiddleware_SaveErrorReplacesResponse(t *testing.T) {
	store := failingSaveStore{session.NewMemoryStore()}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var writeErr error
	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			s.Delete("cart")
			s.MarkModified()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, writeErr = w.Write([]byte(`{"order_number":"ORD-20240501-0001"}`))
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "ORD-20240501-0001")
	assert.Error(t, writeErr)
}

func TestMiddleware_SaveErrorWithoutBody(t *testing.T) {
	store := failingSaveStore{session.NewMemoryStore()}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := session.FromContext(r.Context())
			s.Set("cart", []byte("{}"))
			s.MarkModified()
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMiddleware_UnmodifiedSessionSkipsSave(t *testing.T) {
	store := failingSaveStore{session.NewMemoryStore()}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	handler := session.Middleware(logger, store, session.CookieOptions{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/cache"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/session"
)

func newMemoryManager(t *testing.T) (*session.Manager, *session.MemoryStore) {
	t.Helper()
	records := cache.New[session.Record](time.Minute)
	t.Cleanup(records.Close)
	store := session.NewMemoryStore(records)
	return session.NewManager(store, session.Config{TTL: 10 * time.Minute}, observability.NewMetrics(), zap.NewNop()), store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "jdoe", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestBegin_StoresToken(t *testing.T) {
	mgr, store := newMemoryManager(t)

	id, ttl, err := mgr.Begin(context.Background(), "  opaque-token  ")
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.Equal(t, 10*time.Minute, ttl)

	rec, ok, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "opaque-token", rec.Token)
}

func TestBegin_RejectsEmptyToken(t *testing.T) {
	mgr, _ := newMemoryManager(t)

	_, _, err := mgr.Begin(context.Background(), "   ")

	var validation *domain.ErrValidation
	assert.ErrorAs(t, err, &validation)
}

func TestBegin_JWTExpiryCapsTTL(t *testing.T) {
	mgr, _ := newMemoryManager(t)

	_, ttl, err := mgr.Begin(context.Background(), signedToken(t, time.Now().Add(2*time.Minute)))
	require.NoError(t, err)

	assert.LessOrEqual(t, ttl, 2*time.Minute)
	assert.Greater(t, ttl, time.Minute)
}

func TestBegin_ExpiredJWT(t *testing.T) {
	mgr, _ := newMemoryManager(t)

	_, _, err := mgr.Begin(context.Background(), signedToken(t, time.Now().Add(-time.Minute)))

	var validation *domain.ErrValidation
	assert.ErrorAs(t, err, &validation)
}

func TestMiddleware_CookieSession(t *testing.T) {
	mgr, _ := newMemoryManager(t)
	id, _, err := mgr.Begin(context.Background(), "tok-1")
	require.NoError(t, err)

	var got string
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = mgr.Token(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tok-1", got)
}

func TestMiddleware_BearerHeader(t *testing.T) {
	mgr, _ := newMemoryManager(t)

	var got string
	var ok bool
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = mgr.Token(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, ok)
	assert.Equal(t, "header-token", got)
}

func TestMiddleware_NoCredential(t *testing.T) {
	mgr, _ := newMemoryManager(t)

	ok := true
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = mgr.Token(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "unknown"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
}

func TestClear_ExpiresCookieAndRecordsRedirect(t *testing.T) {
	mgr, store := newMemoryManager(t)
	id, _, err := mgr.Begin(context.Background(), "tok-1")
	require.NoError(t, err)

	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mgr.Clear(r.Context())
		session.Navigator{}.GoTo(r.Context(), "/login")

		_, ok := mgr.Token(r.Context())
		assert.False(t, ok, "a cleared credential must not be served again")
		w.WriteHeader(http.StatusUnauthorized)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)

	_, ok, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok, "the stored session must be deleted")
}

func TestEnd_DeletesSession(t *testing.T) {
	mgr, store := newMemoryManager(t)
	id, _, err := mgr.Begin(context.Background(), "tok-1")
	require.NoError(t, err)

	ctx := session.WithSession(context.Background(), session.NewSession(id, "tok-1", true))
	require.NoError(t, mgr.End(ctx))

	_, ok, _ := store.Get(context.Background(), id)
	assert.False(t, ok)
	_, ok = mgr.Token(ctx)
	assert.False(t, ok)
}

func TestNavigator_WithoutSessionIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		session.Navigator{}.GoTo(context.Background(), "/login")
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := session.NewRedisStore(rdb)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "abc", session.Record{Token: "tok"}, time.Minute))

	rec, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", rec.Token)
	assert.Equal(t, time.Minute, mr.TTL("bfa:session:abc"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "expired sessions must disappear")

	require.NoError(t, store.Put(ctx, "def", session.Record{Token: "tok"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "def"))
	_, ok, _ = store.Get(ctx, "def")
	assert.False(t, ok)
}

func TestManager_WithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	metrics := observability.NewMetrics()
	mgr := session.NewManager(session.NewRedisStore(rdb), session.Config{}, metrics, zap.NewNop())

	id, ttl, err := mgr.Begin(context.Background(), "tok-r")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)

	var got string
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = mgr.Token(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tok-r", got)
	assert.InDelta(t, 1.0, metrics.GetLedgerSnapshot().SessionLookupHitRate, 1e-9)
}

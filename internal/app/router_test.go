package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodex-app/rolodex/internal/auth"
	"github.com/rolodex-app/rolodex/internal/contacts"
	"github.com/rolodex-app/rolodex/internal/observability"
	"github.com/rolodex-app/rolodex/internal/platform/httpx"
	_ "github.com/rolodex-app/rolodex/internal/testing/guard"
	"github.com/rolodex-app/rolodex/internal/users"
)

type emptyAuthRepo struct{}

func (emptyAuthRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, httpx.ErrNotFound
}
func (emptyAuthRepo) Create(ctx context.Context, user auth.User) (int64, error) { return 1, nil }
func (emptyAuthRepo) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	return nil
}
func (emptyAuthRepo) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return nil
}
func (emptyAuthRepo) ConfirmEmail(ctx context.Context, email string) error { return nil }

type noopUploader struct{}

func (noopUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	return "https://img.example.com/x.png", nil
}

type dropEnqueuer struct{}

func (dropEnqueuer) EnqueueSendConfirmation(ctx context.Context, to, username, token string) error {
	return nil
}

func newTestRouter(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	codec, err := auth.NewTokenCodec("test-secret", "HS256", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	service := auth.NewService(emptyAuthRepo{}, codec, dropEnqueuer{}, nil)

	return NewRouter(RouterParams{
		Config:          cfg,
		RedisClient:     client,
		Metrics:         observability.NewMetrics(),
		AuthHandler:     auth.NewHandler(nil, service),
		AuthMiddleware:  auth.Middleware{Service: service},
		ContactsHandler: contacts.NewHandler(nil, contacts.NewService(nil)),
		UsersHandler:    users.NewHandler(nil, service, noopUploader{}),
	})
}

func get(router http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.RemoteAddr = ip
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	res := get(router, "/healthz", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
}

func TestRouterSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, nil)

	res := get(router, "/healthz", "")
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", res.Header().Get("Content-Security-Policy"))
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/contacts/", "/me", "/upcoming_birthdays/"} {
		res := get(router, path, "")
		assert.Equal(t, http.StatusUnauthorized, res.Code, path)
	}
}

func TestRouterServesMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	require.Equal(t, http.StatusOK, get(router, "/healthz", "").Code)

	res := get(router, "/metrics", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "rolodex_http_requests_total")
}

func TestRouterGlobalRateLimit(t *testing.T) {
	cfg := &Config{GlobalRateLimit: 2, ContactsRateLimit: 5, AppRequestTimeout: 30 * time.Second}
	router := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, get(router, "/healthz", "10.9.8.7:1000").Code)
	assert.Equal(t, http.StatusOK, get(router, "/healthz", "10.9.8.7:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/healthz", "10.9.8.7:1000").Code)

	// Unrelated clients keep their own budget.
	assert.Equal(t, http.StatusOK, get(router, "/healthz", "10.9.8.8:1000").Code)
}

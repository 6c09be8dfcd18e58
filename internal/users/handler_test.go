package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodex-app/rolodex/internal/auth"
	"github.com/rolodex-app/rolodex/internal/platform/httpx"
	_ "github.com/rolodex-app/rolodex/internal/testing/guard"
)

type stubAuthRepo struct {
	user *auth.User
}

func (s *stubAuthRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, httpx.ErrNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubAuthRepo) Create(ctx context.Context, user auth.User) (int64, error) {
	return 0, errors.New("not supported")
}

func (s *stubAuthRepo) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	return nil
}

func (s *stubAuthRepo) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	if s.user == nil || s.user.ID != userID {
		return httpx.ErrNotFound
	}
	s.user.AvatarURL = &avatarURL
	return nil
}

func (s *stubAuthRepo) ConfirmEmail(ctx context.Context, email string) error {
	return nil
}

var _ auth.Repository = (*stubAuthRepo)(nil)

type stubUploader struct {
	url string
	err error

	filename string
	size     int
}

func (s *stubUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	s.filename = filename
	s.size = len(data)
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type recordingEnqueuer struct {
	sent int
}

func (r *recordingEnqueuer) EnqueueSendConfirmation(ctx context.Context, to, username, token string) error {
	r.sent++
	return nil
}

func newUsersRouter(t *testing.T, uploader Uploader) (chi.Router, *stubAuthRepo, *recordingEnqueuer) {
	t.Helper()
	repo := &stubAuthRepo{user: &auth.User{ID: 7, Email: "alice@example.com", Username: "alice"}}
	mail := &recordingEnqueuer{}

	codec, err := auth.NewTokenCodec("secret", "HS256", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	service := auth.NewService(repo, codec, mail, nil)
	handler := NewHandler(nil, service, uploader)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithUser(req.Context(), repo.user)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return r, repo, mail
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestMeEndpoint(t *testing.T) {
	router, _, _ := newUsersRouter(t, &stubUploader{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var user auth.UserResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUploadAvatarEndpoint(t *testing.T) {
	uploader := &stubUploader{url: "https://img.example.com/avatars/abc.png"}
	router, repo, _ := newUsersRouter(t, uploader)

	body, contentType := multipartBody(t, "file", "me.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload-avatar/", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, uploader.url, out["avatar_url"])
	assert.Equal(t, "me.png", uploader.filename)
	assert.Equal(t, len("png-bytes"), uploader.size)

	require.NotNil(t, repo.user.AvatarURL)
	assert.Equal(t, uploader.url, *repo.user.AvatarURL)
}

func TestUploadAvatarMissingFile(t *testing.T) {
	router, _, _ := newUsersRouter(t, &stubUploader{})

	body, contentType := multipartBody(t, "picture", "me.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload-avatar/", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUploadAvatarHostFailure(t *testing.T) {
	uploader := &stubUploader{err: errors.New("image host down")}
	router, repo, _ := newUsersRouter(t, uploader)

	body, contentType := multipartBody(t, "file", "me.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload-avatar/", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Nil(t, repo.user.AvatarURL)

	var problem struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, "Upload Failed", problem.Title)
}

func TestSendEmailEndpoint(t *testing.T) {
	router, _, mail := newUsersRouter(t, &stubUploader{})

	req := httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader([]byte(`{"email":"alice@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 1, mail.sent)

	var out map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, "email has been sent", out["message"])

	// Bad payloads are rejected before touching the queue.
	req = httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader([]byte(`{"email":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, 1, mail.sent)
}

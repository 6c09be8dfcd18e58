// Package users exposes the profile endpoints: current user, avatar upload,
// and confirmation-email dispatch.
package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rolodex-app/rolodex/internal/auth"
	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// maxAvatarBytes caps avatar uploads at 10 MiB.
const maxAvatarBytes = 10 << 20

// Uploader pushes image bytes to the third-party image host.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Handler wires the profile endpoints. All routes assume auth.Middleware has
// already resolved the current user.
type Handler struct {
	logger    *slog.Logger
	service   *auth.Service
	uploader  Uploader
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *auth.Service, uploader Uploader) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		uploader:  uploader,
		validator: validator.New(),
	}
}

// MountRoutes registers profile routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Post("/upload-avatar/", h.handleUploadAvatar)
	r.Post("/send-email", h.handleSendEmail)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, auth.NewUserResponse(user))
}

func (h *Handler) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "file field is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "could not read file")
		return
	}

	url, err := h.uploader.Upload(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Error("avatar upload failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Upload Failed", "failed to upload avatar to image host")
		return
	}

	if err := h.service.UpdateAvatar(r.Context(), user, url); err != nil {
		h.logger.Error("store avatar url failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// handleSendEmail queues a confirmation email for the given address. The
// send itself happens in the background worker.
func (h *Handler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	h.service.ResendConfirmation(r.Context(), req.Email)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "email has been sent"})
}

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// Handler wires HTTP endpoints for signup, login, and the token lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Get("/refresh", h.handleRefresh)
	r.Get("/confirmed_email/{token}", h.handleConfirmEmail)
	r.Post("/request_email", h.handleRequestEmail)
}

type signupResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Signup(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.logger.Warn("signup failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, signupResponse{
		User:   NewUserResponse(user),
		Detail: "User successfully created. Check your email for confirmation.",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

// handleRefresh rotates the token pair. The refresh token travels in the
// Authorization header the same way access tokens do.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	already, err := h.service.ConfirmEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	message := "Email confirmed"
	if already {
		message = "Your email is already confirmed"
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": message})
}

// handleRequestEmail re-sends the confirmation email. The response is the
// same whether or not the account exists, so addresses cannot be probed.
func (h *Handler) handleRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	h.service.ResendConfirmation(r.Context(), req.Email)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Check your email for confirmation."})
}

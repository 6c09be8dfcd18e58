package contacts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rolodex-app/rolodex/internal/auth"
	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// Handler wires the contact CRUD and birthday-query endpoints. All routes
// assume auth.Middleware has already resolved the current user.
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

// MountRoutes registers contact routes on the provided router.
// /user/contacts/ is an alias of the list route kept for API compatibility.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/contacts/", h.handleCreate)
	r.Get("/contacts/", h.handleList)
	r.Get("/user/contacts/", h.handleList)
	r.Get("/contacts/{id}", h.handleGet)
	r.Put("/contacts/{id}", h.handleUpdate)
	r.Delete("/contacts/{id}", h.handleDelete)
	r.Get("/upcoming_birthdays/", h.handleUpcomingBirthdays)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		h.logger.Error("create contact failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewContactResponse(*contact))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	contacts, total, err := h.service.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.logger.Error("list contacts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{
		Contacts: NewContactResponses(contacts),
		Total:    total,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewContactResponse(*contact))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewContactResponse(*contact))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.service.Delete(r.Context(), user.ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewContactResponse(*contact))
}

func (h *Handler) handleUpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	contacts, err := h.service.UpcomingBirthdays(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("upcoming birthdays failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewContactResponses(contacts))
}

func (h *Handler) decodeUpsert(w http.ResponseWriter, r *http.Request) (UpsertContactRequest, bool) {
	var req UpsertContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contact id")
		return 0, false
	}
	return id, true
}

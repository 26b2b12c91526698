package events

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

// Handler wires event calendar endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers event routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/years", h.years)
	r.Get("/year/{year}", h.listByYear)
	r.Get("/type/{type}", h.listByType)
	r.Get("/{eventID}", h.get)
	r.Put("/{eventID}", h.update)
	r.Delete("/{eventID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) listByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	events, err := h.service.ListByYear(r.Context(), year)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *Handler) listByType(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *Handler) years(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, years)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in EventInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "name and year are required")
		return
	}
	event, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in EventInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "name and year are required")
		return
	}
	event, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func eventID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
}

package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandap-rentals/mandap-server/internal/audit"
	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Handler wires customer endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	trail     *audit.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, trail *audit.Service) *Handler {
	return &Handler{logger: logger, service: service, trail: trail, validator: validator.New()}
}

// MountRoutes registers customer routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{customerID}", h.get)
	r.Put("/{customerID}", h.update)
	r.Delete("/{customerID}", h.delete)
	r.Get("/{customerID}/audit", h.auditTrail)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := listview.Query{
		Filters: map[string]string{
			"name":   r.URL.Query().Get("query"),
			"mobile": r.URL.Query().Get("mobile"),
			"pal":    r.URL.Query().Get("pal"),
		},
		SortBy: sortColumn(r.URL.Query().Get("sort")),
		Dir:    listview.ParseDirection(r.URL.Query().Get("dir")),
	}
	rows, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "name and mobile are required")
		return
	}
	customer, err := h.service.Create(r.Context(), shared.UserIDFromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "name and mobile are required")
		return
	}
	customer, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), shared.UserIDFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	timeline, err := h.trail.Timeline(r.Context(), "customer", strconv.FormatInt(id, 10))
	if err != nil {
		h.logger.Error("customer audit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, timeline)
}

func customerID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
}

func sortColumn(raw string) string {
	switch raw {
	case "name", "mobile", "pal":
		return raw
	default:
		return "name"
	}
}

package rentals

import (
	"context"
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

// Handler wires rental order endpoints.
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

// MountRoutes registers rental order routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/active", h.listActive)
	r.Post("/", h.create)
	r.Get("/{orderID}", h.get)
	r.Put("/{orderID}", h.update)
	r.Put("/{orderID}/dispatch", h.dispatch)
	r.Put("/{orderID}/receive", h.receive)
	r.Put("/{orderID}/cancel", h.cancel)
	r.Delete("/{orderID}", h.delete)
	r.Get("/{orderID}/audit", h.auditTrail)
	r.Get("/customer/{customerID}/unreturned", h.unreturned)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := listview.Query{
		Filters: map[string]string{
			"customer": r.URL.Query().Get("query"),
			"status":   r.URL.Query().Get("status"),
		},
		SortBy: r.URL.Query().Get("sort"),
		Dir:    listview.ParseDirection(r.URL.Query().Get("dir")),
	}
	orders, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list rental orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in BookingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "customer and at least one item are required")
		return
	}
	order, err := h.service.CreateBooking(r.Context(), shared.UserIDFromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in BookingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "customer and at least one item are required")
		return
	}
	order, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	h.transact(w, r, h.service.Dispatch)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	h.transact(w, r, h.service.Receive)
}

func (h *Handler) transact(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, actorID, id int64, in TransactionInput) (Order, error)) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in TransactionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "voucher number and items are required")
		return
	}
	order, err := apply(r.Context(), shared.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	order, err := h.service.Cancel(r.Context(), shared.UserIDFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
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
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	timeline, err := h.trail.Timeline(r.Context(), "rental_order", strconv.FormatInt(id, 10))
	if err != nil {
		h.logger.Error("rental order audit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, timeline)
}

func (h *Handler) unreturned(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	orders, err := h.service.UnreturnedByCustomer(r.Context(), customerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}

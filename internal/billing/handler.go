package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Handler wires bill and payment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountBillRoutes registers bill routes on the provided router.
func (h *Handler) MountBillRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/number/{billNumber}", h.getByNumber)
	r.Get("/customer/{customerID}", h.listByCustomer)
	r.Get("/{billID}", h.get)
	r.Put("/{billID}", h.update)
	r.Delete("/{billID}", h.delete)
}

// MountPaymentRoutes registers payment routes on the provided router.
func (h *Handler) MountPaymentRoutes(r chi.Router) {
	r.Get("/bill/{billID}", h.paymentsForBill)
	r.Post("/", h.addPayment)
	r.Put("/{paymentID}", h.updatePayment)
	r.Delete("/{paymentID}", h.deletePayment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := listview.Query{
		Filters: map[string]string{
			"query": r.URL.Query().Get("query"),
			"year":  r.URL.Query().Get("year"),
		},
		SortBy: r.URL.Query().Get("sort"),
		Dir:    listview.ParseDirection(r.URL.Query().Get("dir")),
	}
	bills, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bills)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "billNumber"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	bills, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bills)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in BillInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "customer and at least one item are required")
		return
	}
	bill, err := h.service.Create(r.Context(), shared.UserIDFromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in BillInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "customer and at least one item are required")
		return
	}
	bill, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
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

func (h *Handler) paymentsForBill(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	payments, err := h.service.PaymentsForBill(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var in PaymentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "bill and positive amount are required")
		return
	}
	payment, err := h.service.AddPayment(r.Context(), shared.UserIDFromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var in PaymentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "bill and positive amount are required")
		return
	}
	payment, err := h.service.UpdatePayment(r.Context(), shared.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.DeletePayment(r.Context(), shared.UserIDFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func billID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
}

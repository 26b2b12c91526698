package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mandap-rentals/mandap-server/internal/auth"
	"github.com/mandap-rentals/mandap-server/internal/billing"
	"github.com/mandap-rentals/mandap-server/internal/customers"
	"github.com/mandap-rentals/mandap-server/internal/events"
	"github.com/mandap-rentals/mandap-server/internal/inventory"
	"github.com/mandap-rentals/mandap-server/internal/rbac"
	"github.com/mandap-rentals/mandap-server/internal/rentals"
	"github.com/mandap-rentals/mandap-server/internal/roles"
	"github.com/mandap-rentals/mandap-server/internal/shared"
	"github.com/mandap-rentals/mandap-server/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Sessions           *shared.SessionManager
	RBAC               rbac.Middleware
	AuthHandler        *auth.Handler
	CustomersHandler   *customers.Handler
	InventoryHandler   *inventory.Handler
	RentalsHandler     *rentals.Handler
	BillingHandler     *billing.Handler
	EventsHandler      *events.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler
}

// NewRouter constructs the chi router for the JSON API. Every /api route
// except login runs behind the bearer-token session; reads and mutations are
// gated by the resource's view and edit permissions.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Sessions: params.Sessions,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		guard := func(view, edit []string) func(http.Handler) http.Handler {
			return requireByMethod(params.RBAC, view, edit)
		}

		r.Route("/customers", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermCustomersView, shared.PermCustomersEdit},
				[]string{shared.PermCustomersEdit}))
			params.CustomersHandler.MountRoutes(r)
		})
		r.Route("/inventory", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermInventoryView, shared.PermInventoryManage},
				[]string{shared.PermInventoryManage}))
			params.InventoryHandler.MountRoutes(r)
		})
		r.Route("/rental-orders", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermRentalsView, shared.PermRentalsEdit, shared.PermRentalsDispatch},
				[]string{shared.PermRentalsEdit, shared.PermRentalsDispatch}))
			params.RentalsHandler.MountRoutes(r)
		})
		r.Route("/bills", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermBillingView, shared.PermBillingEdit},
				[]string{shared.PermBillingEdit}))
			params.BillingHandler.MountBillRoutes(r)
		})
		r.Route("/payments", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermBillingView, shared.PermBillingEdit},
				[]string{shared.PermBillingEdit}))
			params.BillingHandler.MountPaymentRoutes(r)
		})
		r.Route("/events", func(r chi.Router) {
			r.Use(auth.RequireUser, guard(
				[]string{shared.PermEventsView, shared.PermEventsEdit},
				[]string{shared.PermEventsEdit}))
			params.EventsHandler.MountRoutes(r)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireUser, params.RBAC.RequireAny(shared.PermAdminUsers))
			params.UsersHandler.MountRoutes(r)
		})
		r.Route("/roles", func(r chi.Router) {
			r.Use(auth.RequireUser, params.RBAC.RequireAny(shared.PermAdminRoles))
			params.RolesHandler.MountRoutes(r)
		})
		r.Route("/permissions", func(r chi.Router) {
			r.Use(auth.RequireUser)
			params.PermissionsHandler.MountRoutes(r)
		})
	})

	return r
}

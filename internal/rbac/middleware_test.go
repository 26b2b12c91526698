package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mandap-rentals/mandap-server/internal/shared"
)

type stubSource struct {
	granted []string
	err     error
}

func (s stubSource) EffectivePermissions(context.Context, int64) ([]string, error) {
	return s.granted, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(userID int64) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID == 0 {
		return r
	}
	ctx := shared.ContextWithSession(r.Context(), &shared.Session{UserID: userID, Username: "clerk"})
	return r.WithContext(ctx)
}

func TestRequireAnyGrantsOnMatch(t *testing.T) {
	m := Middleware{Source: stubSource{granted: []string{shared.PermRentalsView}}}
	h := m.RequireAny(shared.PermRentalsView, shared.PermRentalsEdit)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(1))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyRejectsMissingPermission(t *testing.T) {
	m := Middleware{Source: stubSource{granted: []string{shared.PermCustomersView}}}
	h := m.RequireAny(shared.PermRentalsDispatch)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(1))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	m := Middleware{Source: stubSource{granted: []string{shared.PermRentalsView}}}
	h := m.RequireAny(shared.PermRentalsView)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(0))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	m := Middleware{Source: stubSource{granted: []string{shared.PermBillingView}}}
	h := m.RequireAll(shared.PermBillingView, shared.PermBillingEdit)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(1))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAllIsCaseInsensitive(t *testing.T) {
	m := Middleware{Source: stubSource{granted: []string{"Billing.View", "BILLING.EDIT"}}}
	h := m.RequireAll(shared.PermBillingView, shared.PermBillingEdit)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(1))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmptyRequirementPassesThrough(t *testing.T) {
	m := Middleware{Source: stubSource{}}
	h := m.RequireAny()(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(0))

	assert.Equal(t, http.StatusOK, rec.Code)
}

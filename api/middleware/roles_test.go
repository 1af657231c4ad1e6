package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
)

func TestRequireContentManager(t *testing.T) {
	cases := []struct {
		name    string
		role    enums.UserRole
		isStaff bool
		want    int
	}{
		{name: "customer denied", role: enums.UserRoleCustomer, want: http.StatusForbidden},
		{name: "sales manager denied", role: enums.UserRoleSalesManager, want: http.StatusForbidden},
		{name: "content manager allowed", role: enums.UserRoleContentManager, want: http.StatusOK},
		{name: "system admin allowed", role: enums.UserRoleSystemAdmin, want: http.StatusOK},
		{name: "staff customer allowed", role: enums.UserRoleCustomer, isStaff: true, want: http.StatusOK},
		{name: "missing actor denied", role: "", want: http.StatusForbidden},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireContentManager(nil)(next)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
			if tc.role != "" || tc.isStaff {
				req = req.WithContext(WithActor(req.Context(), "user", string(tc.role), tc.isStaff))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}

package middleware

import (
	"net/http"

	"github.com/shopcartlabs/shopcart-backend/api/responses"
	pkgAuth "github.com/shopcartlabs/shopcart-backend/pkg/auth"
	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
	"github.com/shopcartlabs/shopcart-backend/pkg/logger"
)

// RequireContentManager gates catalog mutations. System admins, content
// managers, and staff accounts pass.
func RequireContentManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := pkgAuth.AccessTokenClaims{
				Role:    enums.UserRole(RoleFromContext(r.Context())),
				IsStaff: IsStaffFromContext(r.Context()),
			}
			if !claims.IsContentManager() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "content manager role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

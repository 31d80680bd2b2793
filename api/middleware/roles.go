package middleware

import (
	"net/http"

	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

// RequireRole admits requests whose actor holds one of roles.
func RequireRole(logg *logger.Logger, roles ...enums.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := RoleFromContext(r.Context())
			for _, role := range roles {
				if actor == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}

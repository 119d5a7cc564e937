package middleware

import (
	"context"
	"net/http"

	"cobranzas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuardiaRuta decides whether a cobrador may use route-dependent endpoints.
type GuardiaRuta interface {
	PuedeIngresarRuta(ctx context.Context, cobradorID uuid.UUID) bool
}

// RequireRutaActiva denies with 403 unless the caller has an active route today.
// Must run after JWTAuth.
func RequireRutaActiva(guard GuardiaRuta) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UsuarioID(c)
		if id == uuid.Nil || !guard.PuedeIngresarRuta(c.Request.Context(), id) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.NewCode("ruta_inactiva", "Debe iniciar la ruta del dia para continuar"))
			return
		}
		c.Next()
	}
}

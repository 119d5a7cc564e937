package handler

import (
	"net/http"
	"strconv"

	"cobranzas/internal/apierror"
	"cobranzas/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type NotificacionesHandler struct{ rdb *redis.Client }

func NewNotificacionesHandler(rdb *redis.Client) *NotificacionesHandler {
	return &NotificacionesHandler{rdb: rdb}
}

// DLQ godoc
// @Summary Notificaciones que agotaron sus reintentos
// @Tags notificaciones
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximo de entradas (1-200)"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} apierror.APIError
// @Router /v1/notificaciones/dlq [get]
func (h *NotificacionesHandler) DLQ(c *gin.Context) {
	if h.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.NewCode("no_disponible", "Cola de notificaciones no configurada"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "limit debe estar entre 1 y 200"))
		return
	}

	ctx := c.Request.Context()
	total, err := worker.DLQLength(ctx, h.rdb, worker.QueueNotificaciones)
	if err != nil {
		log.Error().Err(err).Msg("dlq: no se pudo leer la longitud")
		c.JSON(http.StatusServiceUnavailable, apierror.NewCode("no_disponible", "Servicio temporalmente no disponible"))
		return
	}
	entries, err := worker.DLQEntries(ctx, h.rdb, worker.QueueNotificaciones, int64(limit))
	if err != nil {
		log.Error().Err(err).Msg("dlq: no se pudieron leer las entradas")
		c.JSON(http.StatusServiceUnavailable, apierror.NewCode("no_disponible", "Servicio temporalmente no disponible"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "data": entries})
}

package handler

import (
	"net/http"

	"cobranzas/internal/apierror"
	"cobranzas/internal/dto"
	"cobranzas/internal/middleware"
	"cobranzas/internal/periodo"
	"cobranzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PagosHandler struct {
	rutas         service.RutaService
	liquidaciones service.LiquidacionService
}

func NewPagosHandler(rutas service.RutaService, liquidaciones service.LiquidacionService) *PagosHandler {
	return &PagosHandler{rutas: rutas, liquidaciones: liquidaciones}
}

// Registrar godoc
// @Summary Registra un pago en la ruta activa
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarPagoRequest true "Pago"
// @Success 201 {object} dto.PagoResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/ruta/pagos [post]
func (h *PagosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.rutas.RegistrarPago(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resumen godoc
// @Summary Agrupa los pagos de un cobrador por periodo
// @Tags pagos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param modo query string false "weekly | biweekly | monthly" default(monthly)
// @Param comision query number false "Tasa de comision en porcentaje (0-100)"
// @Success 200 {object} dto.ResumenPagosResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cobradores/{id}/pagos/resumen [get]
func (h *PagosHandler) Resumen(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var filter dto.ResumenPagosFilter
	if !bindQuery(c, &filter) {
		return
	}
	modo, err := periodo.ParseModo(filter.Modo)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", err.Error()))
		return
	}
	var tasa *decimal.Decimal
	if filter.Comision != "" {
		d, err := decimal.NewFromString(filter.Comision)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "comision invalida"))
			return
		}
		tasa = &d
	}

	resp, err := h.liquidaciones.ResumenPagos(c.Request.Context(), id, modo, tasa)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

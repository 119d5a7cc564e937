package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"cobranzas/internal/apierror"
	"cobranzas/internal/dto"
	"cobranzas/internal/infra"
	"cobranzas/internal/periodo"
	"cobranzas/internal/service"

	"github.com/gin-gonic/gin"
)

type LiquidacionHandler struct {
	svc   service.LiquidacionService
	reloj service.Reloj
}

func NewLiquidacionHandler(svc service.LiquidacionService, reloj service.Reloj) *LiquidacionHandler {
	return &LiquidacionHandler{svc: svc, reloj: reloj}
}

// referencia resolves ?fecha= to a date inside the target week; empty means now.
func (h *LiquidacionHandler) referencia(c *gin.Context, q dto.LiquidacionQuery) (time.Time, bool) {
	if q.Fecha == "" {
		return h.reloj.Ahora(), true
	}
	ref, ok := periodo.ParseFecha(q.Fecha, h.reloj.Loc)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "fecha invalida, use YYYY-MM-DD"))
		return time.Time{}, false
	}
	return ref, true
}

// Preview godoc
// @Summary Calcula la liquidacion semanal sin persistirla
// @Tags liquidacion
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param fecha query string false "Cualquier fecha de la semana (YYYY-MM-DD)"
// @Success 200 {object} dto.LiquidacionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cobradores/{id}/liquidacion/preview [get]
func (h *LiquidacionHandler) Preview(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var q dto.LiquidacionQuery
	if !bindQuery(c, &q) {
		return
	}
	ref, ok := h.referencia(c, q)
	if !ok {
		return
	}
	resp, err := h.svc.Preview(c.Request.Context(), id, ref)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Generar godoc
// @Summary Genera (una sola vez) la liquidacion semanal
// @Description Si ya existe, devuelve la almacenada con ya_generada=true.
// @Tags liquidacion
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param fecha query string false "Cualquier fecha de la semana (YYYY-MM-DD)"
// @Success 201 {object} dto.LiquidacionResponse
// @Success 200 {object} dto.LiquidacionResponse
// @Router /v1/cobradores/{id}/liquidacion [post]
func (h *LiquidacionHandler) Generar(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var q dto.LiquidacionQuery
	if !bindQuery(c, &q) {
		return
	}
	ref, ok := h.referencia(c, q)
	if !ok {
		return
	}
	resp, err := h.svc.Generar(c.Request.Context(), id, ref)
	if err != nil {
		responderError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.YaGenerada {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// Historial godoc
// @Summary Historial de liquidaciones semanales
// @Tags liquidacion
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param fecha query string false "Fecha de la semana mas reciente"
// @Param semanas query int false "Cantidad de semanas (max 52)"
// @Success 200 {object} dto.HistorialLiquidacionResponse
// @Router /v1/cobradores/{id}/liquidacion/historial [get]
func (h *LiquidacionHandler) Historial(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var q dto.LiquidacionQuery
	if !bindQuery(c, &q) {
		return
	}
	ref, ok := h.referencia(c, q)
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), id, ref, q.Semanas)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary Comprobante PDF de la liquidacion semanal
// @Description Usa la liquidacion almacenada; si la semana no fue generada, el calculo en vivo marcado como preliminar.
// @Tags liquidacion
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param fecha query string false "Cualquier fecha de la semana (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /v1/cobradores/{id}/liquidacion/pdf [get]
func (h *LiquidacionHandler) PDF(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var q dto.LiquidacionQuery
	if !bindQuery(c, &q) {
		return
	}
	ref, ok := h.referencia(c, q)
	if !ok {
		return
	}
	resp, err := h.svc.Comprobante(c.Request.Context(), id, ref)
	if err != nil {
		responderError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.EscribirLiquidacionPDF(&buf, resp); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="liquidacion_%s.pdf"`, resp.SemanaInicio))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

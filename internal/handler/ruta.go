package handler

import (
	"net/http"

	"cobranzas/internal/apierror"
	"cobranzas/internal/dto"
	"cobranzas/internal/middleware"
	"cobranzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RutaHandler struct {
	svc    service.RutaService
	acceso service.AccesoService
}

func NewRutaHandler(svc service.RutaService, acceso service.AccesoService) *RutaHandler {
	return &RutaHandler{svc: svc, acceso: acceso}
}

// Iniciar godoc
// @Summary Inicia la ruta del dia del cobrador autenticado
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.ReporteResponse
// @Failure 409 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/ruta/iniciar [post]
func (h *RutaHandler) Iniciar(c *gin.Context) {
	resp, err := h.svc.IniciarRuta(c.Request.Context(), middleware.UsuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Finalizar godoc
// @Summary Finaliza la ruta activa del dia
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReporteResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ruta/finalizar [post]
func (h *RutaHandler) Finalizar(c *gin.Context) {
	resp, err := h.svc.FinalizarRuta(c.Request.Context(), middleware.UsuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estado godoc
// @Summary Estado de la ruta del dia del cobrador autenticado
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EstadoRutaResponse
// @Router /v1/ruta/estado [get]
func (h *RutaHandler) Estado(c *gin.Context) {
	h.estado(c, middleware.UsuarioID(c))
}

// EstadoCobrador godoc
// @Summary Estado de la ruta del dia de un cobrador
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Success 200 {object} dto.EstadoRutaResponse
// @Router /v1/cobradores/{id}/ruta/estado [get]
func (h *RutaHandler) EstadoCobrador(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	h.estado(c, id)
}

func (h *RutaHandler) estado(c *gin.Context, id uuid.UUID) {
	resp, err := h.svc.Estado(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Acceso godoc
// @Summary Indica si el cobrador puede ingresar a la pantalla de ruta
// @Description Nunca falla: ante errores del almacen responde permitido=false.
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AccesoRutaResponse
// @Router /v1/ruta/acceso [get]
func (h *RutaHandler) Acceso(c *gin.Context) {
	permitido := h.acceso.PuedeIngresarRuta(c.Request.Context(), middleware.UsuarioID(c))
	c.JSON(http.StatusOK, dto.AccesoRutaResponse{Permitido: permitido})
}

// ListarReportes godoc
// @Summary Lista los reportes diarios de un cobrador
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cobrador"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamano de pagina"
// @Success 200 {object} dto.ReporteListResponse
// @Router /v1/cobradores/{id}/reportes [get]
func (h *RutaHandler) ListarReportes(c *gin.Context) {
	id, ok := cobradorObjetivo(c)
	if !ok {
		return
	}
	var filter dto.ListarReportesFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarReportes(c.Request.Context(), id, filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerReporte godoc
// @Summary Obtiene un reporte diario
// @Tags ruta
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del reporte"
// @Success 200 {object} dto.ReporteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/reportes/{id} [get]
func (h *RutaHandler) ObtenerReporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "ID de reporte invalido"))
		return
	}
	resp, err := h.svc.ObtenerReporte(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

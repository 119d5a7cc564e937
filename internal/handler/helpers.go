package handler

import (
	"errors"
	"net/http"
	"reflect"

	"cobranzas/internal/apierror"
	"cobranzas/internal/middleware"
	"cobranzas/internal/model"
	"cobranzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is a struct; expose it as float64 so gt/min tags work on it
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs validator tags.
// On failure the response is already written and the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("json_invalido", "JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// responderError maps service sentinels to HTTP statuses. Upstream details are logged only.
func responderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRutaYaActiva):
		c.JSON(http.StatusConflict, apierror.NewCode("ruta_ya_activa", err.Error()))
	case errors.Is(err, service.ErrSinRutaActiva):
		c.JSON(http.StatusConflict, apierror.NewCode("sin_ruta_activa", err.Error()))
	case errors.Is(err, service.ErrPagoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCode("pago_invalido", err.Error()))
	case errors.Is(err, service.ErrParametroInvalido):
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", err.Error()))
	case errors.Is(err, service.ErrCobradorNoEncontrado),
		errors.Is(err, service.ErrReporteNoEncontrado),
		errors.Is(err, service.ErrCreditoNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.NewCode("no_encontrado", err.Error()))
	case errors.Is(err, service.ErrUpstreamNoDisponible):
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("almacen no disponible")
		c.JSON(http.StatusServiceUnavailable, apierror.NewCode("no_disponible", "Servicio temporalmente no disponible"))
	default:
		_ = c.Error(err)
	}
}

// cobradorObjetivo resolves the :id path param. A cobrador may only address
// their own id; an administrador may address any.
func cobradorObjetivo(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametro_invalido", "ID de cobrador invalido"))
		return uuid.Nil, false
	}
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.NewCode("no_autenticado", "Autenticacion requerida"))
		return uuid.Nil, false
	}
	if claims.Rol != model.RolAdministrador && claims.UserID != id.String() {
		c.JSON(http.StatusForbidden, apierror.NewCode("permisos_insuficientes", "Solo puede consultar sus propios datos"))
		return uuid.Nil, false
	}
	return id, true
}

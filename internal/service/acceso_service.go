package service

import (
	"context"

	"cobranzas/internal/infra"
	"cobranzas/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AccesoService answers whether a cobrador may enter route-dependent screens.
// It fails closed: any error reading the route state denies access.
type AccesoService interface {
	PuedeIngresarRuta(ctx context.Context, cobradorID uuid.UUID) bool
}

type accesoService struct {
	rutas   RutaService
	cb      *infra.CircuitBreaker
	metrics *metrics.Metrics
}

// NewAccesoService wraps the route state lookup in cb; a nil cb calls through directly.
func NewAccesoService(rutas RutaService, cb *infra.CircuitBreaker, m *metrics.Metrics) AccesoService {
	return &accesoService{rutas: rutas, cb: cb, metrics: m}
}

func (s *accesoService) PuedeIngresarRuta(ctx context.Context, cobradorID uuid.UUID) bool {
	var activa bool
	consultar := func(ctx context.Context) error {
		estado, err := s.rutas.Estado(ctx, cobradorID)
		if err != nil {
			return err
		}
		activa = estado.Activa
		return nil
	}

	var err error
	if s.cb != nil {
		err = s.cb.Execute(ctx, consultar)
	} else {
		err = consultar(ctx)
	}
	if err != nil {
		s.metrics.AccesoRuta(metrics.AccesoFallo)
		log.Warn().Err(err).Str("cobrador_id", cobradorID.String()).Msg("estado de ruta no disponible, acceso denegado")
		return false
	}
	if !activa {
		s.metrics.AccesoRuta(metrics.AccesoDenegado)
		return false
	}
	s.metrics.AccesoRuta(metrics.AccesoPermitido)
	return true
}

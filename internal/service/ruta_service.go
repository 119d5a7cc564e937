package service

import (
	"context"
	"errors"
	"math"
	"time"

	"cobranzas/internal/dto"
	"cobranzas/internal/metrics"
	"cobranzas/internal/model"
	"cobranzas/internal/periodo"
	"cobranzas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RutaService is the single source of truth for a cobrador's route state.
// A route is ACTIVE while today's ReporteDiario exists with finalizado = false.
type RutaService interface {
	IniciarRuta(ctx context.Context, cobradorID uuid.UUID) (*dto.ReporteResponse, error)
	FinalizarRuta(ctx context.Context, cobradorID uuid.UUID) (*dto.ReporteResponse, error)
	Estado(ctx context.Context, cobradorID uuid.UUID) (*dto.EstadoRutaResponse, error)
	RegistrarPago(ctx context.Context, cobradorID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error)
	ObtenerReporte(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error)
	ListarReportes(ctx context.Context, cobradorID uuid.UUID, filter dto.ListarReportesFilter) (*dto.ReporteListResponse, error)
}

type rutaService struct {
	reportes repository.ReporteRepository
	pagos    repository.PagoRepository
	creditos repository.CreditoRepository
	reloj    Reloj
	metrics  *metrics.Metrics
}

func NewRutaService(
	reportes repository.ReporteRepository,
	pagos repository.PagoRepository,
	creditos repository.CreditoRepository,
	reloj Reloj,
	m *metrics.Metrics,
) RutaService {
	return &rutaService{reportes: reportes, pagos: pagos, creditos: creditos, reloj: reloj, metrics: m}
}

// ── IniciarRuta ───────────────────────────────────────────────────────────────
// A report left open on a previous day is finalized first, inside the same
// transaction. Concurrent starts are settled by the partial unique index: the
// loser gets ErrDuplicado from the store and reports ErrRutaYaActiva.

func (s *rutaService) IniciarRuta(ctx context.Context, cobradorID uuid.UUID) (*dto.ReporteResponse, error) {
	ahora := s.reloj.Ahora()
	hoy := s.reloj.Hoy()

	var creado *model.ReporteDiario
	err := runTx(ctx, s.reportes.DB(), func(tx *gorm.DB) error {
		abierto, err := s.reportes.FindAbierto(ctx, tx, cobradorID)
		switch {
		case err == nil && abierto.Fecha == hoy:
			return ErrRutaYaActiva
		case err == nil:
			if err := s.reportes.Finalizar(ctx, tx, abierto.ID, ahora); err != nil && !errors.Is(err, repository.ErrNoEncontrado) {
				return err
			}
			log.Info().
				Str("cobrador_id", cobradorID.String()).
				Str("reporte_id", abierto.ID.String()).
				Str("fecha", abierto.Fecha).
				Msg("ruta de un dia anterior finalizada al iniciar")
		case !errors.Is(err, repository.ErrNoEncontrado):
			return err
		}

		rep := &model.ReporteDiario{CobradorID: cobradorID, Fecha: hoy, CreatedAt: ahora}
		if err := s.reportes.Create(ctx, tx, rep); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return ErrRutaYaActiva
			}
			return err
		}
		creado = rep
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRutaYaActiva) {
			s.metrics.Ruta(metrics.AccionRechazada)
		}
		return nil, upstream(err)
	}

	s.metrics.Ruta(metrics.AccionIniciar)
	log.Info().
		Str("cobrador_id", cobradorID.String()).
		Str("reporte_id", creado.ID.String()).
		Str("fecha", hoy).
		Msg("ruta iniciada")
	return toReporteResponse(creado), nil
}

// ── FinalizarRuta ─────────────────────────────────────────────────────────────
// Totals are recomputed one last time, then frozen by the finalizado flag.

func (s *rutaService) FinalizarRuta(ctx context.Context, cobradorID uuid.UUID) (*dto.ReporteResponse, error) {
	ahora := s.reloj.Ahora()
	hoy := s.reloj.Hoy()

	var reporteID uuid.UUID
	err := runTx(ctx, s.reportes.DB(), func(tx *gorm.DB) error {
		abierto, err := s.reportes.FindAbierto(ctx, tx, cobradorID)
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrSinRutaActiva
		}
		if err != nil {
			return err
		}
		if abierto.Fecha != hoy {
			return ErrSinRutaActiva
		}
		if err := s.reportes.RecalcularTotales(ctx, tx, abierto.ID); err != nil {
			return err
		}
		if err := s.reportes.Finalizar(ctx, tx, abierto.ID, ahora); err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return ErrSinRutaActiva
			}
			return err
		}
		reporteID = abierto.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSinRutaActiva) {
			s.metrics.Ruta(metrics.AccionRechazada)
		}
		return nil, upstream(err)
	}

	s.metrics.Ruta(metrics.AccionFinalizar)
	log.Info().
		Str("cobrador_id", cobradorID.String()).
		Str("reporte_id", reporteID.String()).
		Msg("ruta finalizada")

	rep, err := s.reportes.FindByID(ctx, reporteID)
	if err != nil {
		return nil, upstream(err)
	}
	return toReporteResponse(rep), nil
}

// ── Estado ────────────────────────────────────────────────────────────────────
// Pure read against the store; "today" is the local calendar day.

func (s *rutaService) Estado(ctx context.Context, cobradorID uuid.UUID) (*dto.EstadoRutaResponse, error) {
	hoy := s.reloj.Hoy()
	rep, err := s.reportes.FindAbiertoPorFecha(ctx, cobradorID, hoy)
	if errors.Is(err, repository.ErrNoEncontrado) {
		return &dto.EstadoRutaResponse{Activa: false}, nil
	}
	if err != nil {
		return nil, upstream(err)
	}
	id := rep.ID.String()
	return &dto.EstadoRutaResponse{Activa: true, ReporteID: &id, Fecha: &rep.Fecha}, nil
}

// ── RegistrarPago ─────────────────────────────────────────────────────────────
// Pagos are only accepted on today's open route; the report totals are
// recomputed from the stored pagos in the same transaction.

func (s *rutaService) RegistrarPago(ctx context.Context, cobradorID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error) {
	if err := validarDesglose(req); err != nil {
		return nil, err
	}
	creditoID, err := uuid.Parse(req.CreditoID)
	if err != nil {
		return nil, ErrPagoInvalido
	}
	credito, err := s.creditos.FindByID(ctx, creditoID)
	if err != nil {
		return nil, noEncontrado(err, ErrCreditoNoEncontrado)
	}

	hoy := s.reloj.Hoy()
	pago := &model.Pago{
		CreditoID:          credito.ID,
		CobradorID:         cobradorID,
		ClienteID:          credito.ClienteID,
		Monto:              req.Monto,
		MontoEfectivo:      req.Efectivo,
		MontoMercadoPago:   req.MercadoPago,
		MontoTransferencia: req.Transferencia,
		Fecha:              s.reloj.Ahora(),
		Nota:               req.Nota,
	}
	err = runTx(ctx, s.reportes.DB(), func(tx *gorm.DB) error {
		abierto, err := s.reportes.FindAbierto(ctx, tx, cobradorID)
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrSinRutaActiva
		}
		if err != nil {
			return err
		}
		if abierto.Fecha != hoy {
			return ErrSinRutaActiva
		}
		pago.ReporteID = &abierto.ID
		if err := s.pagos.Create(ctx, tx, pago); err != nil {
			return err
		}
		return s.reportes.RecalcularTotales(ctx, tx, abierto.ID)
	})
	if err != nil {
		return nil, upstream(err)
	}

	s.metrics.PagoRegistrado()
	log.Info().
		Str("cobrador_id", cobradorID.String()).
		Str("pago_id", pago.ID.String()).
		Str("monto", pago.Monto.StringFixed(2)).
		Msg("pago registrado")
	return toPagoResponse(pago), nil
}

func validarDesglose(req dto.RegistrarPagoRequest) error {
	if !req.Monto.IsPositive() {
		return ErrPagoInvalido
	}
	for _, m := range []decimal.Decimal{req.Efectivo, req.MercadoPago, req.Transferencia} {
		if m.IsNegative() {
			return ErrPagoInvalido
		}
	}
	// columns hold cents; finer amounts would be rounded on write
	for _, m := range []decimal.Decimal{req.Monto, req.Efectivo, req.MercadoPago, req.Transferencia} {
		if !m.Equal(m.Round(periodo.DecimalesMoneda)) {
			return ErrPagoInvalido
		}
	}
	if !req.Efectivo.Add(req.MercadoPago).Add(req.Transferencia).Equal(req.Monto) {
		return ErrPagoInvalido
	}
	return nil
}

// ── Consultas de reportes ─────────────────────────────────────────────────────

func (s *rutaService) ObtenerReporte(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error) {
	rep, err := s.reportes.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrReporteNoEncontrado)
	}
	return toReporteResponse(rep), nil
}

func (s *rutaService) ListarReportes(ctx context.Context, cobradorID uuid.UUID, filter dto.ListarReportesFilter) (*dto.ReporteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	reportes, total, err := s.reportes.ListByCobrador(ctx, cobradorID, filter.Page, filter.Limit)
	if err != nil {
		return nil, upstream(err)
	}
	data := make([]dto.ReporteResponse, 0, len(reportes))
	for i := range reportes {
		data = append(data, *toReporteResponse(&reportes[i]))
	}
	return &dto.ReporteListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func toReporteResponse(r *model.ReporteDiario) *dto.ReporteResponse {
	resp := &dto.ReporteResponse{
		ID:                r.ID.String(),
		CobradorID:        r.CobradorID.String(),
		Fecha:             r.Fecha,
		Finalizado:        r.Finalizado,
		Efectivo:          r.Efectivo,
		MercadoPago:       r.MercadoPago,
		Transferencia:     r.Transferencia,
		Total:             r.Total(),
		ClientesVisitados: r.ClientesVisitados,
		PagosCount:        r.PagosCount,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.FinalizadoAt != nil {
		f := r.FinalizadoAt.Format(time.RFC3339)
		resp.FinalizadoAt = &f
	}
	return resp
}

func toPagoResponse(p *model.Pago) *dto.PagoResponse {
	resp := &dto.PagoResponse{
		ID:            p.ID.String(),
		CreditoID:     p.CreditoID.String(),
		ClienteID:     p.ClienteID.String(),
		Monto:         p.Monto,
		Efectivo:      p.MontoEfectivo,
		MercadoPago:   p.MontoMercadoPago,
		Transferencia: p.MontoTransferencia,
		Fecha:         p.Fecha.Format(time.RFC3339),
		Nota:          p.Nota,
	}
	if p.ReporteID != nil {
		id := p.ReporteID.String()
		resp.ReporteID = &id
	}
	return resp
}

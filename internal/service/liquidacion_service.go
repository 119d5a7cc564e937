package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cobranzas/internal/config"
	"cobranzas/internal/dto"
	"cobranzas/internal/metrics"
	"cobranzas/internal/model"
	"cobranzas/internal/periodo"
	"cobranzas/internal/repository"
	"cobranzas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxSemanasHistorial = config.MaxHistorialSemanas

type LiquidacionService interface {
	// Preview computes the week containing ref without persisting anything.
	Preview(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error)
	// Generar persists the week's snapshot once. Later calls return the stored
	// snapshot with YaGenerada = true and never recompute.
	Generar(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error)
	// Historial lists the semanas weeks ending at ref's week, newest first,
	// with zero-total placeholders for weeks never generated.
	Historial(ctx context.Context, cobradorID uuid.UUID, ref time.Time, semanas int) (*dto.HistorialLiquidacionResponse, error)
	// ResumenPagos groups every pago of the cobrador into period buckets. tasa
	// overrides the cobrador's commission percentage when not nil.
	ResumenPagos(ctx context.Context, cobradorID uuid.UUID, modo periodo.Modo, tasa *decimal.Decimal) (*dto.ResumenPagosResponse, error)
	// Comprobante returns the stored snapshot of ref's week with its items, or
	// the live preview when the week was never generated.
	Comprobante(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error)
}

// Notificador is the async job sink; *worker.Dispatcher satisfies it.
type Notificador interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type liquidacionService struct {
	usuarios      repository.UsuarioRepository
	creditos      repository.CreditoRepository
	pagos         repository.PagoRepository
	liquidaciones repository.LiquidacionRepository
	notificador   Notificador
	cfg           *config.Config
	reloj         Reloj
	metrics       *metrics.Metrics
}

func NewLiquidacionService(
	usuarios repository.UsuarioRepository,
	creditos repository.CreditoRepository,
	pagos repository.PagoRepository,
	liquidaciones repository.LiquidacionRepository,
	notificador Notificador,
	cfg *config.Config,
	reloj Reloj,
	m *metrics.Metrics,
) LiquidacionService {
	return &liquidacionService{
		usuarios:      usuarios,
		creditos:      creditos,
		pagos:         pagos,
		liquidaciones: liquidaciones,
		notificador:   notificador,
		cfg:           cfg,
		reloj:         reloj,
		metrics:       m,
	}
}

// ── Calculo ───────────────────────────────────────────────────────────────────
// Shared by Preview and Generar so both produce identical figures.

func (s *liquidacionService) calcular(ctx context.Context, cobrador *model.Usuario, semana periodo.Semana) (*model.LiquidacionSemanal, error) {
	sueldo, comisionValor := s.condiciones(cobrador)

	creditos, err := s.creditos.ListCreadosPorCobrador(ctx, cobrador.ID, semana.Inicio, semana.Hasta())
	if err != nil {
		return nil, upstream(err)
	}
	vistos := make(map[uuid.UUID]bool, len(creditos))
	items := make([]model.LiquidacionItem, 0, len(creditos))
	totalComision := decimal.Zero
	for _, c := range creditos {
		if vistos[c.ID] {
			continue
		}
		vistos[c.ID] = true
		item := model.LiquidacionItem{
			CreditoID:  c.ID,
			CobradorID: cobrador.ID,
			Fecha:      c.CreatedAt,
			Monto:      c.Monto,
			Comision:   periodo.Comision(c.Monto, comisionValor),
			Producto:   c.Producto,
		}
		if c.Cliente != nil {
			item.ClienteNombre = c.Cliente.Nombre
		}
		totalComision = totalComision.Add(item.Comision)
		items = append(items, item)
	}

	pagos, err := s.pagos.ListByCobrador(ctx, cobrador.ID, semana.Inicio, semana.Hasta())
	if err != nil {
		return nil, upstream(err)
	}
	buckets := periodo.Agregar(entradasDe(pagos), periodo.ModoSemanal, decimal.Zero, s.reloj.Loc)
	totalCobrado := periodo.BuscarBucket(buckets, semana.Clave()).TotalCobrado

	return &model.LiquidacionSemanal{
		Clave:         claveLiquidacion(cobrador.ID, semana),
		CobradorID:    cobrador.ID,
		SemanaInicio:  semana.Clave(),
		SemanaFin:     semana.ClaveFin(),
		SueldoSemanal: sueldo,
		ComisionValor: comisionValor,
		TotalComision: totalComision,
		TotalCobrado:  totalCobrado,
		TotalAPagar:   sueldo.Add(totalComision),
		Items:         items,
	}, nil
}

// condiciones resolves the cobrador's salary and commission setting, falling back to config.
func (s *liquidacionService) condiciones(u *model.Usuario) (sueldo, comision decimal.Decimal) {
	sueldo, comision = decimal.Zero, decimal.Zero
	if s.cfg != nil {
		sueldo, comision = s.cfg.SueldoSemanal(), s.cfg.ComisionCredito()
	}
	if u.SueldoSemanal != nil {
		sueldo = *u.SueldoSemanal
	}
	if u.ComisionCredito != nil {
		comision = *u.ComisionCredito
	}
	return sueldo, comision
}

func (s *liquidacionService) cobrador(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrCobradorNoEncontrado)
	}
	if u.Rol != model.RolCobrador {
		return nil, ErrCobradorNoEncontrado
	}
	return u, nil
}

func claveLiquidacion(cobradorID uuid.UUID, semana periodo.Semana) string {
	return fmt.Sprintf("%s:%s", cobradorID, semana.Clave())
}

func entradasDe(pagos []model.Pago) []periodo.Entrada {
	entradas := make([]periodo.Entrada, 0, len(pagos))
	for _, p := range pagos {
		entradas = append(entradas, periodo.Entrada{Fecha: p.Fecha, Monto: p.Monto})
	}
	return entradas
}

// ── Preview ───────────────────────────────────────────────────────────────────

func (s *liquidacionService) Preview(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error) {
	u, err := s.cobrador(ctx, cobradorID)
	if err != nil {
		return nil, err
	}
	l, err := s.calcular(ctx, u, periodo.SemanaDe(ref, s.reloj.Loc))
	if err != nil {
		return nil, err
	}
	return toLiquidacionResponse(l, false, false, true), nil
}

// ── Comprobante ───────────────────────────────────────────────────────────────

func (s *liquidacionService) Comprobante(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error) {
	u, err := s.cobrador(ctx, cobradorID)
	if err != nil {
		return nil, err
	}
	semana := periodo.SemanaDe(ref, s.reloj.Loc)

	var resp *dto.LiquidacionResponse
	existente, err := s.liquidaciones.FindBySemana(ctx, cobradorID, semana.Clave())
	switch {
	case err == nil:
		resp = toLiquidacionResponse(existente, true, false, true)
	case errors.Is(err, repository.ErrNoEncontrado):
		l, err := s.calcular(ctx, u, semana)
		if err != nil {
			return nil, err
		}
		resp = toLiquidacionResponse(l, false, false, true)
	default:
		return nil, upstream(err)
	}
	resp.CobradorNombre = u.Nombre
	return resp, nil
}

// ── Generar ───────────────────────────────────────────────────────────────────
// The existence check is an optimization; exactly-once is enforced by the unique
// index on (cobrador_id, semana_inicio). A lost race surfaces as
// ErrLiquidacionDuplicada and resolves to the winner's snapshot.

func (s *liquidacionService) Generar(ctx context.Context, cobradorID uuid.UUID, ref time.Time) (*dto.LiquidacionResponse, error) {
	u, err := s.cobrador(ctx, cobradorID)
	if err != nil {
		return nil, err
	}
	semana := periodo.SemanaDe(ref, s.reloj.Loc)

	existente, err := s.liquidaciones.FindBySemana(ctx, cobradorID, semana.Clave())
	if err == nil {
		s.metrics.Liquidacion(metrics.ResultadoExistente)
		return toLiquidacionResponse(existente, true, true, true), nil
	}
	if !errors.Is(err, repository.ErrNoEncontrado) {
		s.metrics.Liquidacion(metrics.ResultadoError)
		return nil, upstream(err)
	}

	nueva, err := s.calcular(ctx, u, semana)
	if err != nil {
		s.metrics.Liquidacion(metrics.ResultadoError)
		return nil, err
	}
	nueva.GeneradaAt = s.reloj.Ahora()

	if err := s.crear(ctx, nueva); err != nil {
		if !errors.Is(err, ErrLiquidacionDuplicada) {
			s.metrics.Liquidacion(metrics.ResultadoError)
			return nil, err
		}
		existente, ferr := s.liquidaciones.FindBySemana(ctx, cobradorID, semana.Clave())
		if ferr != nil {
			s.metrics.Liquidacion(metrics.ResultadoError)
			return nil, upstream(ferr)
		}
		s.metrics.Liquidacion(metrics.ResultadoExistente)
		return toLiquidacionResponse(existente, true, true, true), nil
	}

	s.metrics.Liquidacion(metrics.ResultadoCreada)
	log.Info().
		Str("cobrador_id", cobradorID.String()).
		Str("semana_inicio", nueva.SemanaInicio).
		Str("total_a_pagar", nueva.TotalAPagar.StringFixed(2)).
		Int("items", len(nueva.Items)).
		Msg("liquidacion generada")

	s.notificar(ctx, u, nueva)
	return toLiquidacionResponse(nueva, true, false, true), nil
}

func (s *liquidacionService) crear(ctx context.Context, l *model.LiquidacionSemanal) error {
	err := s.liquidaciones.Create(ctx, l)
	if errors.Is(err, repository.ErrDuplicado) {
		return ErrLiquidacionDuplicada
	}
	return upstream(err)
}

// notificar is best effort: the snapshot is already committed.
func (s *liquidacionService) notificar(ctx context.Context, u *model.Usuario, l *model.LiquidacionSemanal) {
	if s.notificador == nil || u.Email == nil || *u.Email == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: *u.Email,
		Subject: fmt.Sprintf("Liquidacion semana %s al %s", l.SemanaInicio, l.SemanaFin),
		Body: fmt.Sprintf(
			"Hola %s,\n\nSueldo: $%s\nComisiones (%d creditos): $%s\nTotal a pagar: $%s\nCobrado en la semana: $%s\n",
			u.Nombre,
			l.SueldoSemanal.StringFixed(2),
			len(l.Items),
			l.TotalComision.StringFixed(2),
			l.TotalAPagar.StringFixed(2),
			l.TotalCobrado.StringFixed(2),
		),
	}
	if err := s.notificador.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("cobrador_id", u.ID.String()).Msg("no se pudo encolar la notificacion de liquidacion")
	}
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *liquidacionService) Historial(ctx context.Context, cobradorID uuid.UUID, ref time.Time, semanas int) (*dto.HistorialLiquidacionResponse, error) {
	if semanas <= 0 {
		semanas = 8
		if s.cfg != nil && s.cfg.HistorialSemanasDefault > 0 {
			semanas = s.cfg.HistorialSemanasDefault
		}
	}
	if semanas > maxSemanasHistorial {
		semanas = maxSemanasHistorial
	}
	if _, err := s.cobrador(ctx, cobradorID); err != nil {
		return nil, err
	}

	actual := periodo.SemanaDe(ref, s.reloj.Loc)
	primera := actual.Desplazar(-(semanas - 1))
	guardadas, err := s.liquidaciones.ListRango(ctx, cobradorID, primera.Clave(), actual.Clave())
	if err != nil {
		return nil, upstream(err)
	}
	porSemana := make(map[string]*model.LiquidacionSemanal, len(guardadas))
	for i := range guardadas {
		porSemana[guardadas[i].SemanaInicio] = &guardadas[i]
	}

	resp := &dto.HistorialLiquidacionResponse{
		CobradorID: cobradorID.String(),
		Semanas:    make([]dto.LiquidacionResponse, 0, semanas),
	}
	for i := 0; i < semanas; i++ {
		semana := actual.Desplazar(-i)
		if l, ok := porSemana[semana.Clave()]; ok {
			resp.Semanas = append(resp.Semanas, *toLiquidacionResponse(l, true, false, false))
			continue
		}
		resp.Semanas = append(resp.Semanas, dto.LiquidacionResponse{
			CobradorID:    cobradorID.String(),
			SemanaInicio:  semana.Clave(),
			SemanaFin:     semana.ClaveFin(),
			SueldoSemanal: decimal.Zero,
			ComisionValor: decimal.Zero,
			ComisionTipo:  tipoComision(decimal.Zero),
			TotalComision: decimal.Zero,
			TotalCobrado:  decimal.Zero,
			TotalAPagar:   decimal.Zero,
		})
	}
	return resp, nil
}

// ── ResumenPagos ──────────────────────────────────────────────────────────────
// A flat per-credit commission has no meaning per collected amount; such
// cobradores get a zero rate unless tasa is given.

func (s *liquidacionService) ResumenPagos(ctx context.Context, cobradorID uuid.UUID, modo periodo.Modo, tasa *decimal.Decimal) (*dto.ResumenPagosResponse, error) {
	u, err := s.cobrador(ctx, cobradorID)
	if err != nil {
		return nil, err
	}
	var pct decimal.Decimal
	if tasa != nil {
		pct = *tasa
	} else if _, valor := s.condiciones(u); !periodo.EsMontoFijo(valor) {
		pct = valor
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: tasa fuera de rango", ErrParametroInvalido)
	}

	pagos, err := s.pagos.ListByCobrador(ctx, cobradorID, time.Time{}, time.Time{})
	if err != nil {
		return nil, upstream(err)
	}
	buckets := periodo.Agregar(entradasDe(pagos), modo, pct, s.reloj.Loc)

	resp := &dto.ResumenPagosResponse{
		CobradorID: cobradorID.String(),
		Modo:       string(modo),
		Tasa:       pct,
		Buckets:    make([]dto.BucketResponse, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Buckets = append(resp.Buckets, dto.BucketResponse{
			Clave:         b.Clave,
			CantidadPagos: b.CantidadPagos,
			TotalCobrado:  b.TotalCobrado,
			Comision:      b.Comision,
		})
	}
	return resp, nil
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func tipoComision(valor decimal.Decimal) string {
	if periodo.EsMontoFijo(valor) {
		return "fijo"
	}
	return "porcentaje"
}

func toLiquidacionResponse(l *model.LiquidacionSemanal, generada, yaGenerada, conItems bool) *dto.LiquidacionResponse {
	resp := &dto.LiquidacionResponse{
		CobradorID:    l.CobradorID.String(),
		SemanaInicio:  l.SemanaInicio,
		SemanaFin:     l.SemanaFin,
		SueldoSemanal: l.SueldoSemanal,
		ComisionValor: l.ComisionValor,
		ComisionTipo:  tipoComision(l.ComisionValor),
		TotalComision: l.TotalComision,
		TotalCobrado:  l.TotalCobrado,
		TotalAPagar:   l.TotalAPagar,
		Generada:      generada,
		YaGenerada:    yaGenerada,
	}
	if generada && l.ID != uuid.Nil {
		id := l.ID.String()
		at := l.GeneradaAt.Format(time.RFC3339)
		resp.ID = &id
		resp.GeneradaAt = &at
	}
	if conItems {
		resp.Items = make([]dto.LiquidacionItemResponse, 0, len(l.Items))
		for _, it := range l.Items {
			resp.Items = append(resp.Items, dto.LiquidacionItemResponse{
				CreditoID:     it.CreditoID.String(),
				Fecha:         it.Fecha.Format(time.RFC3339),
				Monto:         it.Monto,
				Comision:      it.Comision,
				Producto:      it.Producto,
				ClienteNombre: it.ClienteNombre,
			})
		}
	}
	return resp
}

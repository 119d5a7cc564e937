package service_test

import (
	"context"
	"sort"
	"sync"
	"time"
	_ "time/tzdata"

	"cobranzas/internal/model"
	"cobranzas/internal/repository"
	"cobranzas/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Reloj ─────────────────────────────────────────────────────────────────────

var buenosAires = func() *time.Location {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		return time.FixedZone("ART", -3*60*60)
	}
	return loc
}()

type relojFijo struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relojFijo) now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relojFijo) set(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = t
}

func (r *relojFijo) reloj() service.Reloj {
	return service.Reloj{Now: r.now, Loc: buenosAires}
}

// local builds a Buenos Aires wall-clock time.
func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, buenosAires)
}

// ── ReporteRepository ─────────────────────────────────────────────────────────

type fakeReporteRepo struct {
	mu       sync.Mutex
	reportes map[uuid.UUID]*model.ReporteDiario
	pagos    *fakePagoRepo
	err      error
}

var _ repository.ReporteRepository = (*fakeReporteRepo)(nil)

func newFakeReporteRepo(pagos *fakePagoRepo) *fakeReporteRepo {
	return &fakeReporteRepo{reportes: make(map[uuid.UUID]*model.ReporteDiario), pagos: pagos}
}

func (r *fakeReporteRepo) DB() *gorm.DB { return nil }

func (r *fakeReporteRepo) FindAbierto(_ context.Context, _ *gorm.DB, cobradorID uuid.UUID) (*model.ReporteDiario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, rep := range r.reportes {
		if rep.CobradorID == cobradorID && !rep.Finalizado {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *fakeReporteRepo) FindAbiertoPorFecha(_ context.Context, cobradorID uuid.UUID, fecha string) (*model.ReporteDiario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, rep := range r.reportes {
		if rep.CobradorID == cobradorID && rep.Fecha == fecha && !rep.Finalizado {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

// Create enforces one open report per cobrador, like the partial unique index.
func (r *fakeReporteRepo) Create(_ context.Context, _ *gorm.DB, rep *model.ReporteDiario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existente := range r.reportes {
		if existente.CobradorID == rep.CobradorID && !existente.Finalizado {
			return repository.ErrDuplicado
		}
	}
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}
	cp := *rep
	r.reportes[rep.ID] = &cp
	return nil
}

func (r *fakeReporteRepo) Finalizar(_ context.Context, _ *gorm.DB, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	rep, ok := r.reportes[id]
	if !ok || rep.Finalizado {
		return repository.ErrNoEncontrado
	}
	rep.Finalizado = true
	rep.FinalizadoAt = &at
	return nil
}

func (r *fakeReporteRepo) RecalcularTotales(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	pagos := r.pagos.delReporte(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reportes[id]
	if !ok || rep.Finalizado {
		return nil
	}
	rep.Efectivo, rep.MercadoPago, rep.Transferencia = decimal.Zero, decimal.Zero, decimal.Zero
	clientes := map[uuid.UUID]bool{}
	for _, p := range pagos {
		rep.Efectivo = rep.Efectivo.Add(p.MontoEfectivo)
		rep.MercadoPago = rep.MercadoPago.Add(p.MontoMercadoPago)
		rep.Transferencia = rep.Transferencia.Add(p.MontoTransferencia)
		clientes[p.ClienteID] = true
	}
	rep.PagosCount = len(pagos)
	rep.ClientesVisitados = len(clientes)
	return nil
}

func (r *fakeReporteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ReporteDiario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reportes[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *rep
	return &cp, nil
}

func (r *fakeReporteRepo) ListByCobrador(_ context.Context, cobradorID uuid.UUID, page, limit int) ([]model.ReporteDiario, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var todos []model.ReporteDiario
	for _, rep := range r.reportes {
		if rep.CobradorID == cobradorID {
			todos = append(todos, *rep)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].Fecha > todos[j].Fecha })
	desde := (page - 1) * limit
	if desde > len(todos) {
		desde = len(todos)
	}
	hasta := desde + limit
	if hasta > len(todos) {
		hasta = len(todos)
	}
	return todos[desde:hasta], int64(len(todos)), nil
}

// abiertos counts the open reports of a cobrador.
func (r *fakeReporteRepo) abiertos(cobradorID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rep := range r.reportes {
		if rep.CobradorID == cobradorID && !rep.Finalizado {
			n++
		}
	}
	return n
}

// ── PagoRepository ────────────────────────────────────────────────────────────

type fakePagoRepo struct {
	mu    sync.Mutex
	pagos []model.Pago
	err   error
}

var _ repository.PagoRepository = (*fakePagoRepo)(nil)

func (r *fakePagoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pago) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *fakePagoRepo) ListByCobrador(_ context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Pago, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Pago
	for _, p := range r.pagos {
		if p.CobradorID != cobradorID {
			continue
		}
		if !desde.IsZero() && p.Fecha.Before(desde) {
			continue
		}
		if !hasta.IsZero() && !p.Fecha.Before(hasta) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePagoRepo) delReporte(id uuid.UUID) []model.Pago {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Pago
	for _, p := range r.pagos {
		if p.ReporteID != nil && *p.ReporteID == id {
			out = append(out, p)
		}
	}
	return out
}

// ── CreditoRepository ─────────────────────────────────────────────────────────

type fakeCreditoRepo struct {
	creditos []model.Credito
	// repetir returns every credit twice, as a join over installments would
	repetir bool
	err     error
}

var _ repository.CreditoRepository = (*fakeCreditoRepo)(nil)

func (r *fakeCreditoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Credito, error) {
	for _, c := range r.creditos {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *fakeCreditoRepo) ListCreadosPorCobrador(_ context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Credito, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Credito
	for _, c := range r.creditos {
		if c.CobradorID != cobradorID || c.CreatedAt.Before(desde) || !c.CreatedAt.Before(hasta) {
			continue
		}
		out = append(out, c)
		if r.repetir {
			out = append(out, c)
		}
	}
	return out, nil
}

// ── LiquidacionRepository ─────────────────────────────────────────────────────

type fakeLiquidacionRepo struct {
	mu      sync.Mutex
	porSem  map[string]model.LiquidacionSemanal
	creadas int
	// antesDeCrear runs inside Create before the uniqueness check
	antesDeCrear func()
}

var _ repository.LiquidacionRepository = (*fakeLiquidacionRepo)(nil)

func newFakeLiquidacionRepo() *fakeLiquidacionRepo {
	return &fakeLiquidacionRepo{porSem: make(map[string]model.LiquidacionSemanal)}
}

func claveSem(cobradorID uuid.UUID, semana string) string { return cobradorID.String() + ":" + semana }

func (r *fakeLiquidacionRepo) FindBySemana(_ context.Context, cobradorID uuid.UUID, semanaInicio string) (*model.LiquidacionSemanal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.porSem[claveSem(cobradorID, semanaInicio)]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return &l, nil
}

func (r *fakeLiquidacionRepo) Create(_ context.Context, l *model.LiquidacionSemanal) error {
	if r.antesDeCrear != nil {
		r.antesDeCrear()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := claveSem(l.CobradorID, l.SemanaInicio)
	if _, ok := r.porSem[k]; ok {
		return repository.ErrDuplicado
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	cp.Items = append([]model.LiquidacionItem(nil), l.Items...)
	r.porSem[k] = cp
	r.creadas++
	return nil
}

func (r *fakeLiquidacionRepo) ListRango(_ context.Context, cobradorID uuid.UUID, desde, hasta string) ([]model.LiquidacionSemanal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LiquidacionSemanal
	for _, l := range r.porSem {
		if l.CobradorID == cobradorID && l.SemanaInicio >= desde && l.SemanaInicio <= hasta {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemanaInicio > out[j].SemanaInicio })
	return out, nil
}

// ── UsuarioRepository ─────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]model.Usuario
	err      error
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.usuarios[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return &u, nil
}

// ── Notificador ───────────────────────────────────────────────────────────────

type fakeNotificador struct {
	mu       sync.Mutex
	payloads []interface{}
}

var _ service.Notificador = (*fakeNotificador)(nil)

func (n *fakeNotificador) EnqueueEmail(_ context.Context, payload interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return nil
}

func (n *fakeNotificador) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

package service_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"cobranzas/internal/dto"
	"cobranzas/internal/model"
	"cobranzas/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rutaFixture struct {
	svc      service.RutaService
	reportes *fakeReporteRepo
	pagos    *fakePagoRepo
	creditos *fakeCreditoRepo
	reloj    *relojFijo
}

func newRutaFixture() *rutaFixture {
	pagos := &fakePagoRepo{}
	reportes := newFakeReporteRepo(pagos)
	creditos := &fakeCreditoRepo{}
	reloj := &relojFijo{t: local(2025, 10, 14, 9, 0)}
	return &rutaFixture{
		svc:      service.NewRutaService(reportes, pagos, creditos, reloj.reloj(), nil),
		reportes: reportes,
		pagos:    pagos,
		creditos: creditos,
		reloj:    reloj,
	}
}

func (f *rutaFixture) credito(cobradorID, clienteID uuid.UUID) uuid.UUID {
	c := model.Credito{ID: uuid.New(), ClienteID: clienteID, CobradorID: cobradorID, Monto: dec("100000")}
	f.creditos.creditos = append(f.creditos.creditos, c)
	return c.ID
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func TestIniciarRuta_CreaReporteDeHoy(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	rep, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-14", rep.Fecha)
	assert.False(t, rep.Finalizado)
	assert.True(t, rep.Total.IsZero())
	assert.Equal(t, local(2025, 10, 14, 9, 0).Format(time.RFC3339), rep.CreatedAt)

	estado, err := f.svc.Estado(ctx, cobrador)
	require.NoError(t, err)
	assert.True(t, estado.Activa)
	require.NotNil(t, estado.ReporteID)
	assert.Equal(t, rep.ID, *estado.ReporteID)
}

func TestIniciarRuta_YaActiva(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	_, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)

	_, err = f.svc.IniciarRuta(ctx, cobrador)
	assert.ErrorIs(t, err, service.ErrRutaYaActiva)
	assert.Equal(t, 1, f.reportes.abiertos(cobrador))
}

func TestFinalizarRuta_LuegoEstadoInactivo(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	_, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)

	rep, err := f.svc.FinalizarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.True(t, rep.Finalizado)
	assert.NotNil(t, rep.FinalizadoAt)

	estado, err := f.svc.Estado(ctx, cobrador)
	require.NoError(t, err)
	assert.False(t, estado.Activa)

	_, err = f.svc.FinalizarRuta(ctx, cobrador)
	assert.ErrorIs(t, err, service.ErrSinRutaActiva)
}

func TestFinalizarRuta_SinRuta(t *testing.T) {
	f := newRutaFixture()
	_, err := f.svc.FinalizarRuta(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrSinRutaActiva)
}

func TestIniciarRuta_ReabrirElMismoDia(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	primero, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)
	_, err = f.svc.FinalizarRuta(ctx, cobrador)
	require.NoError(t, err)

	segundo, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.NotEqual(t, primero.ID, segundo.ID)
	assert.Equal(t, 1, f.reportes.abiertos(cobrador))
}

func TestIniciarRuta_CierraRutaDeDiaAnterior(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	ayer, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)

	f.reloj.set(local(2025, 10, 15, 8, 30))

	estado, err := f.svc.Estado(ctx, cobrador)
	require.NoError(t, err)
	assert.False(t, estado.Activa, "yesterday's open report is not today's route")

	_, err = f.svc.FinalizarRuta(ctx, cobrador)
	assert.ErrorIs(t, err, service.ErrSinRutaActiva)

	hoy, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-15", hoy.Fecha)

	anterior, err := f.svc.ObtenerReporte(ctx, uuid.MustParse(ayer.ID))
	require.NoError(t, err)
	assert.True(t, anterior.Finalizado)
	assert.Equal(t, 1, f.reportes.abiertos(cobrador))
}

func TestEstado_UsaDiaCalendarioLocal(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	// 22:30 local is already the next day in UTC
	f.reloj.set(local(2025, 10, 14, 22, 30))
	rep, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-14", rep.Fecha)
	assert.Equal(t, local(2025, 10, 14, 22, 30).Format(time.RFC3339), rep.CreatedAt)

	f.reloj.set(local(2025, 10, 14, 23, 59))
	estado, err := f.svc.Estado(ctx, cobrador)
	require.NoError(t, err)
	assert.True(t, estado.Activa)

	f.reloj.set(local(2025, 10, 15, 0, 1))
	estado, err = f.svc.Estado(ctx, cobrador)
	require.NoError(t, err)
	assert.False(t, estado.Activa)
}

// ── Concurrency ───────────────────────────────────────────────────────────────

func TestIniciarRuta_ConcurrenteUnSoloExito(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	const sesiones = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		exitos   int
		rechazos int
	)
	for i := 0; i < sesiones; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.IniciarRuta(ctx, cobrador)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				exitos++
			case errors.Is(err, service.ErrRutaYaActiva):
				rechazos++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, exitos)
	assert.Equal(t, sesiones-1, rechazos)
	assert.Equal(t, 1, f.reportes.abiertos(cobrador))
}

func TestRuta_InterleavingsAleatoriosMantienenUnaAbierta(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobradores := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	rng := rand.New(rand.NewSource(42))

	var wg sync.WaitGroup
	for w := 0; w < 6; w++ {
		seed := rng.Int63()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				c := cobradores[r.Intn(len(cobradores))]
				var err error
				if r.Intn(2) == 0 {
					_, err = f.svc.IniciarRuta(ctx, c)
					if err != nil && !errors.Is(err, service.ErrRutaYaActiva) {
						t.Errorf("iniciar: %v", err)
					}
				} else {
					_, err = f.svc.FinalizarRuta(ctx, c)
					if err != nil && !errors.Is(err, service.ErrSinRutaActiva) {
						t.Errorf("finalizar: %v", err)
					}
				}
				if n := f.reportes.abiertos(c); n > 1 {
					t.Errorf("cobrador %s has %d open reports", c, n)
				}
			}
		}()
	}
	wg.Wait()

	for _, c := range cobradores {
		assert.LessOrEqual(t, f.reportes.abiertos(c), 1)
	}
}

// ── RegistrarPago ─────────────────────────────────────────────────────────────

func TestRegistrarPago_ActualizaTotalesDelReporte(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()
	clienteA, clienteB := uuid.New(), uuid.New()
	creditoA := f.credito(cobrador, clienteA)
	creditoA2 := f.credito(cobrador, clienteA)
	creditoB := f.credito(cobrador, clienteB)

	_, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)

	pagos := []dto.RegistrarPagoRequest{
		{CreditoID: creditoA.String(), Monto: dec("5000"), Efectivo: dec("5000")},
		{CreditoID: creditoA2.String(), Monto: dec("3000"), MercadoPago: dec("1000"), Transferencia: dec("2000")},
		{CreditoID: creditoB.String(), Monto: dec("2500.50"), Efectivo: dec("500.50"), MercadoPago: dec("2000")},
	}
	for _, p := range pagos {
		resp, err := f.svc.RegistrarPago(ctx, cobrador, p)
		require.NoError(t, err)
		assert.NotNil(t, resp.ReporteID)
	}

	rep, err := f.svc.FinalizarRuta(ctx, cobrador)
	require.NoError(t, err)
	assert.Equal(t, "5500.5", rep.Efectivo.String())
	assert.Equal(t, "3000", rep.MercadoPago.String())
	assert.Equal(t, "2000", rep.Transferencia.String())
	assert.Equal(t, "10500.5", rep.Total.String())
	assert.Equal(t, 3, rep.PagosCount)
	assert.Equal(t, 2, rep.ClientesVisitados)
}

func TestRegistrarPago_SinRutaActiva(t *testing.T) {
	f := newRutaFixture()
	cobrador := uuid.New()
	credito := f.credito(cobrador, uuid.New())

	_, err := f.svc.RegistrarPago(context.Background(), cobrador, dto.RegistrarPagoRequest{
		CreditoID: credito.String(), Monto: dec("100"), Efectivo: dec("100"),
	})
	assert.ErrorIs(t, err, service.ErrSinRutaActiva)
	assert.Empty(t, f.pagos.pagos)
}

func TestRegistrarPago_DesgloseInvalido(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()
	credito := f.credito(cobrador, uuid.New()).String()
	_, err := f.svc.IniciarRuta(ctx, cobrador)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  dto.RegistrarPagoRequest
	}{
		{"suma distinta", dto.RegistrarPagoRequest{CreditoID: credito, Monto: dec("100"), Efectivo: dec("60"), MercadoPago: dec("30")}},
		{"monto cero", dto.RegistrarPagoRequest{CreditoID: credito, Monto: decimal.Zero}},
		{"metodo negativo", dto.RegistrarPagoRequest{CreditoID: credito, Monto: dec("100"), Efectivo: dec("150"), Transferencia: dec("-50")}},
		{"credito mal formado", dto.RegistrarPagoRequest{CreditoID: "xyz", Monto: dec("100"), Efectivo: dec("100")}},
		{"monto con fraccion de centavo", dto.RegistrarPagoRequest{CreditoID: credito, Monto: dec("10.005"), Efectivo: dec("10.005")}},
		{"metodo con fraccion de centavo", dto.RegistrarPagoRequest{CreditoID: credito, Monto: dec("10.01"), Efectivo: dec("5.0025"), MercadoPago: dec("5.0075")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RegistrarPago(ctx, cobrador, tc.req)
			assert.ErrorIs(t, err, service.ErrPagoInvalido)
		})
	}
	assert.Empty(t, f.pagos.pagos)
}

func TestRegistrarPago_CreditoInexistente(t *testing.T) {
	f := newRutaFixture()
	_, err := f.svc.RegistrarPago(context.Background(), uuid.New(), dto.RegistrarPagoRequest{
		CreditoID: uuid.NewString(), Monto: dec("100"), Efectivo: dec("100"),
	})
	assert.ErrorIs(t, err, service.ErrCreditoNoEncontrado)
}

// ── Upstream failures ─────────────────────────────────────────────────────────

func TestRuta_FallaDelAlmacen(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	f.reportes.err = errors.New("connection reset by peer")

	_, err := f.svc.IniciarRuta(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUpstreamNoDisponible)

	_, err = f.svc.FinalizarRuta(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUpstreamNoDisponible)

	_, err = f.svc.Estado(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUpstreamNoDisponible)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestListarReportes_Paginado(t *testing.T) {
	f := newRutaFixture()
	ctx := context.Background()
	cobrador := uuid.New()

	for dia := 10; dia <= 14; dia++ {
		f.reloj.set(local(2025, 10, dia, 9, 0))
		_, err := f.svc.IniciarRuta(ctx, cobrador)
		require.NoError(t, err)
		_, err = f.svc.FinalizarRuta(ctx, cobrador)
		require.NoError(t, err)
	}

	page, err := f.svc.ListarReportes(ctx, cobrador, dto.ListarReportesFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "2025-10-14", page.Data[0].Fecha)
	assert.Equal(t, "2025-10-13", page.Data[1].Fecha)
}

func TestObtenerReporte_NoEncontrado(t *testing.T) {
	f := newRutaFixture()
	_, err := f.svc.ObtenerReporte(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrReporteNoEncontrado)
}

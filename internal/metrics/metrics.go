// Package metrics exposes the Prometheus collectors of the settlement engine.
// Every method is safe on a nil *Metrics so services built without a registry
// (unit tests) need no guards.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	AccionIniciar   = "iniciar"
	AccionFinalizar = "finalizar"
	AccionRechazada = "rechazada"

	ResultadoCreada    = "creada"
	ResultadoExistente = "existente"
	ResultadoError     = "error"

	AccesoPermitido = "permitido"
	AccesoDenegado  = "denegado"
	AccesoFallo     = "fallo"
)

type Metrics struct {
	rutas          *prometheus.CounterVec
	liquidaciones  *prometheus.CounterVec
	accesoRuta     *prometheus.CounterVec
	pagos          prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	jobsProcesados *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests isolated from the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		rutas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranzas_rutas_total",
			Help: "Route lifecycle transitions by action.",
		}, []string{"accion"}),
		liquidaciones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranzas_liquidaciones_total",
			Help: "Weekly payroll generation requests by outcome.",
		}, []string{"resultado"}),
		accesoRuta: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranzas_acceso_ruta_total",
			Help: "Access guard decisions.",
		}, []string{"resultado"}),
		pagos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cobranzas_pagos_registrados_total",
			Help: "Payments recorded against an active route.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranzas_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cobranzas_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobsProcesados: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranzas_jobs_total",
			Help: "Background jobs by type and outcome.",
		}, []string{"tipo", "resultado"}),
	}
	reg.MustRegister(m.rutas, m.liquidaciones, m.accesoRuta, m.pagos, m.httpRequests, m.httpDuration, m.jobsProcesados)
	return m
}

func (m *Metrics) Ruta(accion string) {
	if m == nil {
		return
	}
	m.rutas.WithLabelValues(accion).Inc()
}

func (m *Metrics) Liquidacion(resultado string) {
	if m == nil {
		return
	}
	m.liquidaciones.WithLabelValues(resultado).Inc()
}

func (m *Metrics) AccesoRuta(resultado string) {
	if m == nil {
		return
	}
	m.accesoRuta.WithLabelValues(resultado).Inc()
}

func (m *Metrics) PagoRegistrado() {
	if m == nil {
		return
	}
	m.pagos.Inc()
}

func (m *Metrics) Job(tipo, resultado string) {
	if m == nil {
		return
	}
	m.jobsProcesados.WithLabelValues(tipo, resultado).Inc()
}

// HTTP records one finished request. route is the matched pattern, not the raw path.
func (m *Metrics) HTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

package service

import (
	"errors"
	"fmt"

	"cobranzas/internal/repository"
)

var (
	// ErrRutaYaActiva: the cobrador already has an open route today.
	ErrRutaYaActiva = errors.New("ya existe una ruta activa para hoy")
	// ErrSinRutaActiva: finalize or payment attempted without an open route today.
	ErrSinRutaActiva = errors.New("no hay una ruta activa para hoy")
	// ErrLiquidacionDuplicada never reaches callers; generation resolves it to the stored snapshot.
	ErrLiquidacionDuplicada = errors.New("la liquidacion de la semana ya fue generada")
	// ErrUpstreamNoDisponible wraps every store failure that is not a domain outcome.
	ErrUpstreamNoDisponible = errors.New("almacen no disponible")
	ErrPagoInvalido         = errors.New("pago invalido")
	ErrCobradorNoEncontrado = errors.New("cobrador no encontrado")
	ErrReporteNoEncontrado  = errors.New("reporte no encontrado")
	ErrCreditoNoEncontrado  = errors.New("credito no encontrado")
	ErrParametroInvalido    = errors.New("parametro invalido")
)

// upstream wraps err as ErrUpstreamNoDisponible unless it already is a domain sentinel.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{
		ErrRutaYaActiva, ErrSinRutaActiva, ErrLiquidacionDuplicada, ErrUpstreamNoDisponible,
		ErrPagoInvalido, ErrCobradorNoEncontrado, ErrReporteNoEncontrado, ErrCreditoNoEncontrado,
		ErrParametroInvalido,
	} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamNoDisponible, err)
}

// noEncontrado maps repository.ErrNoEncontrado to sentinel and everything else through upstream.
func noEncontrado(err, sentinel error) error {
	if errors.Is(err, repository.ErrNoEncontrado) {
		return sentinel
	}
	return upstream(err)
}

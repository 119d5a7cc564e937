package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarPagoRequest records one receipt on the caller's active route.
// Efectivo + MercadoPago + Transferencia must equal Monto.
type RegistrarPagoRequest struct {
	CreditoID     string          `json:"credito_id"     validate:"required,uuid"`
	Monto         decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Efectivo      decimal.Decimal `json:"efectivo"       validate:"min=0"`
	MercadoPago   decimal.Decimal `json:"mercado_pago"   validate:"min=0"`
	Transferencia decimal.Decimal `json:"transferencia"  validate:"min=0"`
	Nota          *string         `json:"nota"           validate:"omitempty,max=500"`
}

type ResumenPagosFilter struct {
	Modo string `form:"modo,default=monthly" validate:"required"`
	// Comision overrides the cobrador's commission rate (percent, 0-100).
	Comision string `form:"comision" validate:"omitempty,numeric"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID            string          `json:"id"`
	CreditoID     string          `json:"credito_id"`
	ClienteID     string          `json:"cliente_id"`
	ReporteID     *string         `json:"reporte_id"`
	Monto         decimal.Decimal `json:"monto"`
	Efectivo      decimal.Decimal `json:"efectivo"`
	MercadoPago   decimal.Decimal `json:"mercado_pago"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Fecha         string          `json:"fecha"`
	Nota          *string         `json:"nota"`
}

type BucketResponse struct {
	Clave         string          `json:"clave"`
	CantidadPagos int             `json:"cantidad_pagos"`
	TotalCobrado  decimal.Decimal `json:"total_cobrado"`
	Comision      decimal.Decimal `json:"comision"`
}

type ResumenPagosResponse struct {
	CobradorID string           `json:"cobrador_id"`
	Modo       string           `json:"modo"` // weekly | biweekly | monthly
	Tasa       decimal.Decimal  `json:"tasa"`
	Buckets    []BucketResponse `json:"buckets"`
}

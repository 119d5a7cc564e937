package dto

import "github.com/shopspring/decimal"

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LiquidacionItemResponse struct {
	CreditoID     string          `json:"credito_id"`
	Fecha         string          `json:"fecha"`
	Monto         decimal.Decimal `json:"monto"`
	Comision      decimal.Decimal `json:"comision"`
	Producto      string          `json:"producto"`
	ClienteNombre string          `json:"cliente_nombre"`
}

// LiquidacionResponse serves preview, generation and history alike.
// Generada reports whether a persisted snapshot backs the figures; YaGenerada is
// set only by generation when the snapshot existed before the call.
type LiquidacionResponse struct {
	ID             *string                   `json:"id"`
	CobradorID     string                    `json:"cobrador_id"`
	CobradorNombre string                    `json:"cobrador_nombre,omitempty"`
	SemanaInicio   string                    `json:"semana_inicio"`
	SemanaFin      string                    `json:"semana_fin"`
	SueldoSemanal  decimal.Decimal           `json:"sueldo_semanal"`
	ComisionValor  decimal.Decimal           `json:"comision_valor"`
	ComisionTipo   string                    `json:"comision_tipo"` // porcentaje | fijo
	TotalComision  decimal.Decimal           `json:"total_comision"`
	TotalCobrado   decimal.Decimal           `json:"total_cobrado"`
	TotalAPagar    decimal.Decimal           `json:"total_a_pagar"`
	Generada       bool                      `json:"generada"`
	YaGenerada     bool                      `json:"ya_generada"`
	GeneradaAt     *string                   `json:"generada_at"`
	Items          []LiquidacionItemResponse `json:"items,omitempty"`
}

type HistorialLiquidacionResponse struct {
	CobradorID string                `json:"cobrador_id"`
	Semanas    []LiquidacionResponse `json:"semanas"`
}

// LiquidacionQuery selects the week by any date inside it; empty = current week.
type LiquidacionQuery struct {
	Fecha   string `form:"fecha"`
	Semanas int    `form:"semanas" validate:"omitempty,min=1,max=52"`
}

package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ListarReportesFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// EstadoRutaResponse answers "does this cobrador have an active route today?".
type EstadoRutaResponse struct {
	Activa    bool    `json:"activa"`
	ReporteID *string `json:"reporte_id,omitempty"`
	Fecha     *string `json:"fecha,omitempty"`
}

type AccesoRutaResponse struct {
	Permitido bool `json:"permitido"`
}

type ReporteResponse struct {
	ID                string          `json:"id"`
	CobradorID        string          `json:"cobrador_id"`
	Fecha             string          `json:"fecha"`
	Finalizado        bool            `json:"finalizado"`
	FinalizadoAt      *string         `json:"finalizado_at"`
	Efectivo          decimal.Decimal `json:"efectivo"`
	MercadoPago       decimal.Decimal `json:"mercado_pago"`
	Transferencia     decimal.Decimal `json:"transferencia"`
	Total             decimal.Decimal `json:"total"`
	ClientesVisitados int             `json:"clientes_visitados"`
	PagosCount        int             `json:"pagos_count"`
	CreatedAt         string          `json:"created_at"`
}

type ReporteListResponse struct {
	Data       []ReporteResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

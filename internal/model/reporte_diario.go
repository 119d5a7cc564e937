package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteDiario is the persisted record of a cobrador's route for one calendar day.
// At most one non-finalized report exists per cobrador (partial unique index); that
// report IS the active route. Once Finalizado it is never modified again.
type ReporteDiario struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CobradorID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reporte_abierto_por_cobrador,where:finalizado = false"`
	// Fecha is the cobrador's local calendar day, YYYY-MM-DD
	Fecha        string `gorm:"type:varchar(10);not null;index"`
	Finalizado   bool   `gorm:"not null;default:false"`
	FinalizadoAt *time.Time

	// Running totals, recomputed from pagos while the route is open
	Efectivo          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MercadoPago       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Transferencia     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClientesVisitados int             `gorm:"not null;default:0"`
	PagosCount        int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ReporteDiario) TableName() string { return "reportes_diarios" }

func (r *ReporteDiario) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Total is the sum of the three payment methods.
func (r *ReporteDiario) Total() decimal.Decimal {
	return r.Efectivo.Add(r.MercadoPago).Add(r.Transferencia)
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pago is one money receipt against a Credito. Pagos are NEVER modified or deleted.
// MontoEfectivo + MontoMercadoPago + MontoTransferencia == Monto.
type Pago struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreditoID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CobradorID uuid.UUID `gorm:"type:uuid;index:idx_pagos_cobrador_fecha,priority:1;not null"`
	ClienteID  uuid.UUID `gorm:"type:uuid;index;not null"`
	// ReporteID links the pago to the route (ReporteDiario) it was collected on
	ReporteID          *uuid.UUID      `gorm:"type:uuid;index"`
	Monto              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoMercadoPago   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Fecha              time.Time       `gorm:"index:idx_pagos_cobrador_fecha,priority:2;not null"`
	Nota               *string
	CreatedAt          time.Time
}

func (p *Pago) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// Stored in UTC so range filters compare the same representation on every driver
	p.Fecha = p.Fecha.UTC()
	return nil
}

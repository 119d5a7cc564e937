package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LiquidacionSemanal is the immutable weekly payroll snapshot of a cobrador.
// Exactly one exists per (CobradorID, SemanaInicio); the unique index is what makes
// generation idempotent under concurrent requests.
type LiquidacionSemanal struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// Clave is "{cobrador_id}:{semana_inicio}"
	Clave        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	CobradorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_liquidacion_cobrador_semana,priority:1"`
	SemanaInicio string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_liquidacion_cobrador_semana,priority:2"`
	SemanaFin    string    `gorm:"type:varchar(10);not null"`

	SueldoSemanal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ComisionValor is the commission setting applied: <= 100 percent, > 100 flat per credit
	ComisionValor decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalComision decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCobrado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAPagar   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GeneradaAt    time.Time

	Items []LiquidacionItem `gorm:"foreignKey:LiquidacionID;constraint:OnDelete:CASCADE"`
}

func (LiquidacionSemanal) TableName() string { return "liquidaciones_semanales" }

func (l *LiquidacionSemanal) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LiquidacionItem is the commission earned for one credit created during the week.
type LiquidacionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LiquidacionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CreditoID     uuid.UUID       `gorm:"type:uuid;not null"`
	CobradorID    uuid.UUID       `gorm:"type:uuid;not null"`
	Fecha         time.Time       `gorm:"not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Comision      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Producto      string
	ClienteNombre string
}

func (LiquidacionItem) TableName() string { return "liquidacion_items" }

func (i *LiquidacionItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Credito is a loan granted to a Cliente. CobradorID is the cobrador who originated it;
// CreatedAt is the commission basis date: commission is earned once, at creation.
type Credito struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	CobradorID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Producto   string          `gorm:"not null;default:''"`
	Cuotas     int             `gorm:"not null;default:1"`
	CreatedAt  time.Time       `gorm:"index"`

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (c *Credito) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	// range filters compare UTC on every driver
	c.CreatedAt = c.CreatedAt.UTC()
	return nil
}

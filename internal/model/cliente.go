package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is owned by the CRUD side of the dashboard; the settlement engine only reads it.
type Cliente struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre     string    `gorm:"not null"`
	Direccion  *string
	CobradorID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
}

func (c *Cliente) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

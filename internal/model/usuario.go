package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Usuario stores system users with role-based access.
// Rol: "administrador" | "cobrador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// SueldoSemanal and ComisionCredito override the configured defaults; nil = use default.
	// ComisionCredito <= 100 is a percentage of the credit amount, above 100 a flat amount per credit.
	SueldoSemanal   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ComisionCredito *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Activo          bool             `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

const (
	RolAdministrador = "administrador"
	RolCobrador      = "cobrador"
)

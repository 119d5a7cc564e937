package repository

import (
	"context"
	"time"

	"cobranzas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PagoRepository only creates and reads; pagos are immutable.
type PagoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error
	// ListByCobrador returns the cobrador's pagos with fecha in [desde, hasta).
	ListByCobrador(ctx context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Pago, error)
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pago) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Create(p).Error)
}

func (r *pagoRepo) ListByCobrador(ctx context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Pago, error) {
	var pagos []model.Pago
	q := r.db.WithContext(ctx).Where("cobrador_id = ?", cobradorID)
	if !desde.IsZero() {
		q = q.Where("fecha >= ?", desde.UTC())
	}
	if !hasta.IsZero() {
		q = q.Where("fecha < ?", hasta.UTC())
	}
	err := q.Order("fecha ASC").Find(&pagos).Error
	return pagos, err
}

package repository

import (
	"context"
	"time"

	"cobranzas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error)
	// ListCreadosPorCobrador returns credits originated by the cobrador with created_at in [desde, hasta).
	ListCreadosPorCobrador(ctx context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Credito, error)
}

type creditoRepo struct{ db *gorm.DB }

func NewCreditoRepository(db *gorm.DB) CreditoRepository { return &creditoRepo{db: db} }

func (r *creditoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *creditoRepo) ListCreadosPorCobrador(ctx context.Context, cobradorID uuid.UUID, desde, hasta time.Time) ([]model.Credito, error) {
	var creditos []model.Credito
	err := r.db.WithContext(ctx).Preload("Cliente").
		Where("cobrador_id = ? AND created_at >= ? AND created_at < ?", cobradorID, desde.UTC(), hasta.UTC()).
		Order("created_at ASC").
		Find(&creditos).Error
	return creditos, err
}

package repository

import (
	"context"

	"cobranzas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LiquidacionRepository interface {
	FindBySemana(ctx context.Context, cobradorID uuid.UUID, semanaInicio string) (*model.LiquidacionSemanal, error)
	// Create inserts the snapshot and its items atomically. A second snapshot for the
	// same (cobrador, semana) fails with ErrDuplicado.
	Create(ctx context.Context, l *model.LiquidacionSemanal) error
	// ListRango returns snapshots with semana_inicio in [desde, hasta], newest first.
	ListRango(ctx context.Context, cobradorID uuid.UUID, desde, hasta string) ([]model.LiquidacionSemanal, error)
}

type liquidacionRepo struct{ db *gorm.DB }

func NewLiquidacionRepository(db *gorm.DB) LiquidacionRepository { return &liquidacionRepo{db: db} }

func (r *liquidacionRepo) FindBySemana(ctx context.Context, cobradorID uuid.UUID, semanaInicio string) (*model.LiquidacionSemanal, error) {
	var l model.LiquidacionSemanal
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC") }).
		Where("cobrador_id = ? AND semana_inicio = ?", cobradorID, semanaInicio).
		First(&l).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &l, nil
}

func (r *liquidacionRepo) Create(ctx context.Context, l *model.LiquidacionSemanal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(l).Error
	})
	return traducir(err)
}

func (r *liquidacionRepo) ListRango(ctx context.Context, cobradorID uuid.UUID, desde, hasta string) ([]model.LiquidacionSemanal, error) {
	var ls []model.LiquidacionSemanal
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC") }).
		Where("cobrador_id = ? AND semana_inicio >= ? AND semana_inicio <= ?", cobradorID, desde, hasta).
		Order("semana_inicio DESC").
		Find(&ls).Error
	return ls, err
}

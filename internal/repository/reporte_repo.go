package repository

import (
	"context"
	"time"

	"cobranzas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReporteRepository interface {
	// FindAbierto returns the cobrador's non-finalized report, whatever its day.
	// Inside a transaction on postgres the row is locked FOR UPDATE.
	FindAbierto(ctx context.Context, tx *gorm.DB, cobradorID uuid.UUID) (*model.ReporteDiario, error)
	FindAbiertoPorFecha(ctx context.Context, cobradorID uuid.UUID, fecha string) (*model.ReporteDiario, error)
	Create(ctx context.Context, tx *gorm.DB, r *model.ReporteDiario) error
	// Finalizar flips finalizado only if the report is still open; ErrNoEncontrado otherwise.
	Finalizar(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	RecalcularTotales(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReporteDiario, error)
	ListByCobrador(ctx context.Context, cobradorID uuid.UUID, page, limit int) ([]model.ReporteDiario, int64, error)
	DB() *gorm.DB
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) DB() *gorm.DB { return r.db }

func (r *reporteRepo) FindAbierto(ctx context.Context, tx *gorm.DB, cobradorID uuid.UUID) (*model.ReporteDiario, error) {
	q := conn(r.db, tx).WithContext(ctx)
	if tx != nil && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rep model.ReporteDiario
	err := q.Where("cobrador_id = ? AND finalizado = ?", cobradorID, false).First(&rep).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &rep, nil
}

func (r *reporteRepo) FindAbiertoPorFecha(ctx context.Context, cobradorID uuid.UUID, fecha string) (*model.ReporteDiario, error) {
	var rep model.ReporteDiario
	err := r.db.WithContext(ctx).
		Where("cobrador_id = ? AND fecha = ? AND finalizado = ?", cobradorID, fecha, false).
		First(&rep).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &rep, nil
}

func (r *reporteRepo) Create(ctx context.Context, tx *gorm.DB, rep *model.ReporteDiario) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Create(rep).Error)
}

func (r *reporteRepo) Finalizar(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.ReporteDiario{}).
		Where("id = ? AND finalizado = ?", id, false).
		Updates(map[string]interface{}{"finalizado": true, "finalizado_at": at})
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

type totalesReporte struct {
	Efectivo      decimal.Decimal
	MercadoPago   decimal.Decimal
	Transferencia decimal.Decimal
	Pagos         int
	Clientes      int
}

func (r *reporteRepo) RecalcularTotales(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := conn(r.db, tx).WithContext(ctx)
	var t totalesReporte
	err := db.Model(&model.Pago{}).
		Select(`COALESCE(SUM(monto_efectivo), 0) AS efectivo,
		        COALESCE(SUM(monto_mercado_pago), 0) AS mercado_pago,
		        COALESCE(SUM(monto_transferencia), 0) AS transferencia,
		        COUNT(*) AS pagos,
		        COUNT(DISTINCT cliente_id) AS clientes`).
		Where("reporte_id = ?", id).
		Scan(&t).Error
	if err != nil {
		return err
	}
	return db.Model(&model.ReporteDiario{}).
		Where("id = ? AND finalizado = ?", id, false).
		Updates(map[string]interface{}{
			"efectivo":           t.Efectivo,
			"mercado_pago":       t.MercadoPago,
			"transferencia":      t.Transferencia,
			"pagos_count":        t.Pagos,
			"clientes_visitados": t.Clientes,
		}).Error
}

func (r *reporteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReporteDiario, error) {
	var rep model.ReporteDiario
	if err := r.db.WithContext(ctx).First(&rep, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &rep, nil
}

func (r *reporteRepo) ListByCobrador(ctx context.Context, cobradorID uuid.UUID, page, limit int) ([]model.ReporteDiario, int64, error) {
	var reportes []model.ReporteDiario
	var total int64
	q := r.db.WithContext(ctx).Model(&model.ReporteDiario{}).Where("cobrador_id = ?", cobradorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reportes).Error
	return reportes, total, err
}

package infra

import (
	"fmt"

	"cobranzas/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the pgx-backed GORM connection and brings the schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the engine owns. Postgres-only DDL
// (CHECK constraints) is applied afterwards; other dialects skip it so tests can
// migrate an in-memory SQLite database with the same call.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Cliente{},
		&model.Credito{},
		&model.ReporteDiario{},
		&model.Pago{},
		&model.LiquidacionSemanal{},
		&model.LiquidacionItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"pagos breakdown check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pagos_desglose') THEN
    ALTER TABLE pagos ADD CONSTRAINT chk_pagos_desglose
      CHECK (monto > 0 AND monto = monto_efectivo + monto_mercado_pago + monto_transferencia);
  END IF;
END $$`},
		{"pagos non-negative methods", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pagos_metodos_no_negativos') THEN
    ALTER TABLE pagos ADD CONSTRAINT chk_pagos_metodos_no_negativos
      CHECK (monto_efectivo >= 0 AND monto_mercado_pago >= 0 AND monto_transferencia >= 0);
  END IF;
END $$`},
		{"reportes finalizado_at consistency", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_reportes_finalizado_at') THEN
    ALTER TABLE reportes_diarios ADD CONSTRAINT chk_reportes_finalizado_at
      CHECK (finalizado = false OR finalizado_at IS NOT NULL);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

package infra

import (
	"fmt"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies idempotent SQL patches that AutoMigrate cannot
// express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Cliente{},
		&model.Vehiculo{},
		&model.DuenoHistorial{},
		&model.Cita{},
		&model.SolicitudCita{},
		&model.OrdenTrabajo{},
		&model.OrdenItem{},
		&model.Evidencia{},
		&model.Presupuesto{},
		&model.Factura{},
		&model.Secuencia{},
		&model.RecordatorioJob{},
		&model.ShopSettings{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM cannot fully handle on its
// own. Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the reminder sweep query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_recordatorios_pendientes') THEN
		    CREATE INDEX idx_recordatorios_pendientes
		        ON recordatorio_jobs (run_at)
		        WHERE estado = 'PENDING';
		  END IF;
		END $$`,
		// Overdue-appointment sweep: CONFIRMED / IN_PROGRESS by end_at.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_citas_vencidas') THEN
		    CREATE INDEX idx_citas_vencidas
		        ON citas (end_at)
		        WHERE estado IN ('CONFIRMED', 'IN_PROGRESS');
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrdenRepository interface {
	Create(ctx context.Context, o *model.OrdenTrabajo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenTrabajo, error)
	FindByCitaID(ctx context.Context, citaID uuid.UUID) (*model.OrdenTrabajo, error)
	// Update persists scalar fields only; items go through ReplaceItems and
	// evidencias through AppendEvidencia, keeping the ledger append-only.
	Update(ctx context.Context, o *model.OrdenTrabajo) error
	ReplaceItems(ctx context.Context, ordenID uuid.UUID, items []model.OrdenItem) error
	AppendEvidencia(ctx context.Context, e *model.Evidencia) error
	List(ctx context.Context, estado string, vehiculoID *uuid.UUID, limit, offset int) ([]model.OrdenTrabajo, int64, error)
	// Delete removes the orden with its items and evidencias. Linked
	// documents are deleted by the service beforehand so their blob refs can
	// be collected first.
	Delete(ctx context.Context, id uuid.UUID) error
	// MantenimientoVencidas returns orders due for a maintenance notice:
	// maintenance_due_at passed and last notice absent or before corte.
	MantenimientoVencidas(ctx context.Context, ahora, corte time.Time) ([]model.OrdenTrabajo, error)
}

type ordenRepo struct{ db *gorm.DB }

func NewOrdenRepository(db *gorm.DB) OrdenRepository {
	return &ordenRepo{db: db}
}

func (r *ordenRepo) Create(ctx context.Context, o *model.OrdenTrabajo) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ordenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenTrabajo, error) {
	var o model.OrdenTrabajo
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Evidencias", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Vehiculo").
		Preload("Cliente").
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *ordenRepo) FindByCitaID(ctx context.Context, citaID uuid.UUID) (*model.OrdenTrabajo, error) {
	var o model.OrdenTrabajo
	err := r.db.WithContext(ctx).Preload("Items").Where("cita_id = ?", citaID).First(&o).Error
	return &o, err
}

func (r *ordenRepo) Update(ctx context.Context, o *model.OrdenTrabajo) error {
	return r.db.WithContext(ctx).
		Omit("Items", "Evidencias", "Vehiculo", "Cliente").
		Save(o).Error
}

func (r *ordenRepo) ReplaceItems(ctx context.Context, ordenID uuid.UUID, items []model.OrdenItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.OrdenItem{}, "orden_id = ?", ordenID).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = uuid.Nil
			items[i].OrdenID = ordenID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *ordenRepo) AppendEvidencia(ctx context.Context, e *model.Evidencia) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ordenRepo) List(ctx context.Context, estado string, vehiculoID *uuid.UUID, limit, offset int) ([]model.OrdenTrabajo, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.OrdenTrabajo{})
	if estado != "" && estado != "all" {
		q = q.Where("estado = ?", estado)
	}
	if vehiculoID != nil {
		q = q.Where("vehiculo_id = ?", *vehiculoID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ordenes []model.OrdenTrabajo
	err := q.Preload("Items").Preload("Vehiculo").Preload("Cliente").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&ordenes).Error
	return ordenes, total, err
}

func (r *ordenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.OrdenItem{}, "orden_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Evidencia{}, "orden_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.OrdenTrabajo{}, "id = ?", id).Error
	})
}

func (r *ordenRepo) MantenimientoVencidas(ctx context.Context, ahora, corte time.Time) ([]model.OrdenTrabajo, error) {
	var ordenes []model.OrdenTrabajo
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Vehiculo").
		Where("maintenance_due_at IS NOT NULL AND maintenance_due_at <= ?", ahora).
		Where("maintenance_last_notified_at IS NULL OR maintenance_last_notified_at < ?", corte).
		Find(&ordenes).Error
	return ordenes, err
}

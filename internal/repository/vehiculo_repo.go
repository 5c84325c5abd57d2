package repository

import (
	"context"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehiculoRepository interface {
	Create(ctx context.Context, v *model.Vehiculo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vehiculo, error)
	FindByPatenteNormalizada(ctx context.Context, patente string) (*model.Vehiculo, error)
	Update(ctx context.Context, v *model.Vehiculo) error
	List(ctx context.Context, clienteID *uuid.UUID, limit, offset int) ([]model.Vehiculo, int64, error)
	// CambiarDueno closes the open ledger entry, appends a new open one and
	// updates ClienteID, all in one transaction.
	CambiarDueno(ctx context.Context, vehiculoID, nuevoClienteID uuid.UUID, nota *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehiculoRepo struct{ db *gorm.DB }

func NewVehiculoRepository(db *gorm.DB) VehiculoRepository {
	return &vehiculoRepo{db: db}
}

func (r *vehiculoRepo) Create(ctx context.Context, v *model.Vehiculo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		// Open the first ownership ledger entry alongside the vehicle.
		entrada := model.DuenoHistorial{
			VehiculoID: v.ID,
			ClienteID:  v.ClienteID,
			DesdeAt:    time.Now(),
		}
		return tx.Create(&entrada).Error
	})
}

func (r *vehiculoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vehiculo, error) {
	var v model.Vehiculo
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Historial", func(db *gorm.DB) *gorm.DB { return db.Order("desde_at") }).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *vehiculoRepo) FindByPatenteNormalizada(ctx context.Context, patente string) (*model.Vehiculo, error) {
	var v model.Vehiculo
	err := r.db.WithContext(ctx).Where("patente_normalizada = ?", patente).First(&v).Error
	return &v, err
}

func (r *vehiculoRepo) Update(ctx context.Context, v *model.Vehiculo) error {
	return r.db.WithContext(ctx).Omit("Historial", "Cliente").Save(v).Error
}

func (r *vehiculoRepo) List(ctx context.Context, clienteID *uuid.UUID, limit, offset int) ([]model.Vehiculo, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Vehiculo{})
	if clienteID != nil {
		q = q.Where("cliente_id = ?", *clienteID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vehiculos []model.Vehiculo
	err := q.Preload("Cliente").Order("patente_normalizada").Limit(limit).Offset(offset).Find(&vehiculos).Error
	return vehiculos, total, err
}

func (r *vehiculoRepo) CambiarDueno(ctx context.Context, vehiculoID, nuevoClienteID uuid.UUID, nota *string) error {
	ahora := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Close the single open entry. The invariant "exactly one entry with
		// hasta_at NULL" holds because open/close always happen together here.
		if err := tx.Model(&model.DuenoHistorial{}).
			Where("vehiculo_id = ? AND hasta_at IS NULL", vehiculoID).
			Update("hasta_at", ahora).Error; err != nil {
			return err
		}
		entrada := model.DuenoHistorial{
			VehiculoID: vehiculoID,
			ClienteID:  nuevoClienteID,
			DesdeAt:    ahora,
			Nota:       nota,
		}
		if err := tx.Create(&entrada).Error; err != nil {
			return err
		}
		return tx.Model(&model.Vehiculo{}).
			Where("id = ?", vehiculoID).
			Update("cliente_id", nuevoClienteID).Error
	})
}

func (r *vehiculoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.DuenoHistorial{}, "vehiculo_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Vehiculo{}, "id = ?", id).Error
	})
}

package repository

import (
	"context"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentoRepository interface {
	CreatePresupuesto(ctx context.Context, p *model.Presupuesto) error
	FindPresupuestoByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error)
	UpdatePresupuesto(ctx context.Context, p *model.Presupuesto) error
	ListPresupuestos(ctx context.Context, limit, offset int) ([]model.Presupuesto, int64, error)
	// UltimoPresupuestoDeOrden returns the most recent quote linked to the
	// orden directly or through its cita.
	UltimoPresupuestoDeOrden(ctx context.Context, ordenID uuid.UUID, citaID *uuid.UUID) (*model.Presupuesto, error)
	UltimoPresupuestoDeCita(ctx context.Context, citaID uuid.UUID) (*model.Presupuesto, error)
	PresupuestosDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.Presupuesto, error)
	DeletePresupuestosDeOrden(ctx context.Context, ordenID uuid.UUID) error
	// MaxSufijoPresupuesto extracts the largest numeric suffix among numbers
	// matching ^{prefijo}[0-9]+$ actually persisted.
	MaxSufijoPresupuesto(ctx context.Context, prefijo string) (int64, error)

	CreateFactura(ctx context.Context, f *model.Factura) error
	FindFacturaByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	UpdateFactura(ctx context.Context, f *model.Factura) error
	ListFacturas(ctx context.Context, limit, offset int) ([]model.Factura, int64, error)
	FacturasDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.Factura, error)
	DeleteFacturasDeOrden(ctx context.Context, ordenID uuid.UUID) error
	MaxSufijoFactura(ctx context.Context, prefijo string) (int64, error)
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository {
	return &documentoRepo{db: db}
}

func (r *documentoRepo) CreatePresupuesto(ctx context.Context, p *model.Presupuesto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *documentoRepo) FindPresupuestoByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	var p model.Presupuesto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *documentoRepo) UpdatePresupuesto(ctx context.Context, p *model.Presupuesto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *documentoRepo) ListPresupuestos(ctx context.Context, limit, offset int) ([]model.Presupuesto, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Presupuesto{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ps []model.Presupuesto
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&ps).Error
	return ps, total, err
}

func (r *documentoRepo) UltimoPresupuestoDeOrden(ctx context.Context, ordenID uuid.UUID, citaID *uuid.UUID) (*model.Presupuesto, error) {
	q := r.db.WithContext(ctx).Model(&model.Presupuesto{})
	if citaID != nil {
		q = q.Where("orden_id = ? OR cita_id = ?", ordenID, *citaID)
	} else {
		q = q.Where("orden_id = ?", ordenID)
	}
	var p model.Presupuesto
	err := q.Order("created_at DESC").First(&p).Error
	return &p, err
}

func (r *documentoRepo) UltimoPresupuestoDeCita(ctx context.Context, citaID uuid.UUID) (*model.Presupuesto, error) {
	var p model.Presupuesto
	err := r.db.WithContext(ctx).Where("cita_id = ?", citaID).Order("created_at DESC").First(&p).Error
	return &p, err
}

func (r *documentoRepo) PresupuestosDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.Presupuesto, error) {
	var ps []model.Presupuesto
	err := r.db.WithContext(ctx).Where("orden_id = ?", ordenID).Find(&ps).Error
	return ps, err
}

func (r *documentoRepo) DeletePresupuestosDeOrden(ctx context.Context, ordenID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Presupuesto{}, "orden_id = ?", ordenID).Error
}

func (r *documentoRepo) MaxSufijoPresupuesto(ctx context.Context, prefijo string) (int64, error) {
	return maxSufijo(r.db.WithContext(ctx), "presupuestos", prefijo)
}

func (r *documentoRepo) CreateFactura(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *documentoRepo) FindFacturaByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *documentoRepo) UpdateFactura(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *documentoRepo) ListFacturas(ctx context.Context, limit, offset int) ([]model.Factura, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Factura{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var fs []model.Factura
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&fs).Error
	return fs, total, err
}

func (r *documentoRepo) FacturasDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.Factura, error) {
	var fs []model.Factura
	err := r.db.WithContext(ctx).Where("orden_id = ?", ordenID).Find(&fs).Error
	return fs, err
}

func (r *documentoRepo) DeleteFacturasDeOrden(ctx context.Context, ordenID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Factura{}, "orden_id = ?", ordenID).Error
}

func (r *documentoRepo) MaxSufijoFactura(ctx context.Context, prefijo string) (int64, error) {
	return maxSufijo(r.db.WithContext(ctx), "facturas", prefijo)
}

// maxSufijo scans persisted numbers matching ^{prefijo}\d+$ and returns the
// largest numeric suffix, 0 when none exist. Numbers that drifted from the
// counter (manual inserts, restored backups) are picked up here so the
// allocator can self-heal.
func maxSufijo(db *gorm.DB, tabla, prefijo string) (int64, error) {
	patron := "^" + prefijo + "[0-9]+$"
	var max *int64
	err := db.
		Table(tabla).
		Select("MAX(CAST(SUBSTRING(numero FROM ?) AS BIGINT))", "^"+prefijo+"([0-9]+)$").
		Where("numero ~ ?", patron).
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

package repository

import (
	"context"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordatorioRepository interface {
	Create(ctx context.Context, j *model.RecordatorioJob) error
	Update(ctx context.Context, j *model.RecordatorioJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecordatorioJob, error)
	// Vencidos returns PENDING jobs with run_at <= corte, oldest first.
	Vencidos(ctx context.Context, corte time.Time, limit int) ([]model.RecordatorioJob, error)
	DeleteDeCita(ctx context.Context, citaID uuid.UUID) error
}

type recordatorioRepo struct{ db *gorm.DB }

func NewRecordatorioRepository(db *gorm.DB) RecordatorioRepository {
	return &recordatorioRepo{db: db}
}

func (r *recordatorioRepo) Create(ctx context.Context, j *model.RecordatorioJob) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *recordatorioRepo) Update(ctx context.Context, j *model.RecordatorioJob) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *recordatorioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecordatorioJob, error) {
	var j model.RecordatorioJob
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	return &j, err
}

func (r *recordatorioRepo) Vencidos(ctx context.Context, corte time.Time, limit int) ([]model.RecordatorioJob, error) {
	var jobs []model.RecordatorioJob
	err := r.db.WithContext(ctx).
		Where("estado = ? AND run_at <= ?", model.RecordatorioPending, corte).
		Order("run_at").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *recordatorioRepo) DeleteDeCita(ctx context.Context, citaID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecordatorioJob{}, "cita_id = ?", citaID).Error
}

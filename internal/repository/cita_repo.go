package repository

import (
	"context"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CitaRepository interface {
	Create(ctx context.Context, c *model.Cita) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cita, error)
	Update(ctx context.Context, c *model.Cita) error
	List(ctx context.Context, desde, hasta *time.Time, estado string, limit, offset int) ([]model.Cita, int64, error)
	// ActivasEnDia returns non-cancelled/non-no-show citas for one vehicle on
	// the calendar day containing dia, excluding excluirID (zero UUID = none).
	ActivasEnDia(ctx context.Context, vehiculoID uuid.UUID, dia time.Time, excluirID uuid.UUID) ([]model.Cita, error)
	// ActivasDelDia returns every active cita on that calendar day, any
	// vehicle — used for slot occupancy when auto-rescheduling.
	ActivasDelDia(ctx context.Context, dia time.Time) ([]model.Cita, error)
	// Vencidas returns CONFIRMED / IN_PROGRESS citas whose end precedes corte.
	Vencidas(ctx context.Context, corte time.Time) ([]model.Cita, error)
	// ConfirmadasEntre returns CONFIRMED citas starting in [desde, hasta).
	ConfirmadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Cita, error)
	// DelDia returns every cita starting on that calendar day (owner digest).
	DelDia(ctx context.Context, dia time.Time) ([]model.Cita, error)

	CreateSolicitud(ctx context.Context, s *model.SolicitudCita) error
	FindSolicitudByID(ctx context.Context, id uuid.UUID) (*model.SolicitudCita, error)
	UpdateSolicitud(ctx context.Context, s *model.SolicitudCita) error
	ListSolicitudes(ctx context.Context, estado string) ([]model.SolicitudCita, error)
}

type citaRepo struct{ db *gorm.DB }

func NewCitaRepository(db *gorm.DB) CitaRepository {
	return &citaRepo{db: db}
}

func inicioDelDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *citaRepo) Create(ctx context.Context, c *model.Cita) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *citaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cita, error) {
	var c model.Cita
	err := r.db.WithContext(ctx).Preload("Vehiculo").Preload("Cliente").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *citaRepo) Update(ctx context.Context, c *model.Cita) error {
	return r.db.WithContext(ctx).Omit("Vehiculo", "Cliente").Save(c).Error
}

func (r *citaRepo) List(ctx context.Context, desde, hasta *time.Time, estado string, limit, offset int) ([]model.Cita, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Cita{})
	if desde != nil {
		q = q.Where("start_at >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("start_at < ?", *hasta)
	}
	if estado != "" && estado != "all" {
		q = q.Where("estado = ?", estado)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var citas []model.Cita
	err := q.Preload("Vehiculo").Preload("Cliente").Order("start_at").Limit(limit).Offset(offset).Find(&citas).Error
	return citas, total, err
}

func (r *citaRepo) ActivasEnDia(ctx context.Context, vehiculoID uuid.UUID, dia time.Time, excluirID uuid.UUID) ([]model.Cita, error) {
	inicio := inicioDelDia(dia)
	fin := inicio.AddDate(0, 0, 1)
	q := r.db.WithContext(ctx).
		Where("vehiculo_id = ?", vehiculoID).
		Where("start_at >= ? AND start_at < ?", inicio, fin).
		Where("estado NOT IN ?", []string{model.CitaCancelled, model.CitaNoShow})
	if excluirID != uuid.Nil {
		q = q.Where("id <> ?", excluirID)
	}
	var citas []model.Cita
	err := q.Find(&citas).Error
	return citas, err
}

func (r *citaRepo) ActivasDelDia(ctx context.Context, dia time.Time) ([]model.Cita, error) {
	inicio := inicioDelDia(dia)
	fin := inicio.AddDate(0, 0, 1)
	var citas []model.Cita
	err := r.db.WithContext(ctx).
		Where("start_at >= ? AND start_at < ?", inicio, fin).
		Where("estado NOT IN ?", []string{model.CitaCancelled, model.CitaNoShow}).
		Order("start_at").
		Find(&citas).Error
	return citas, err
}

func (r *citaRepo) Vencidas(ctx context.Context, corte time.Time) ([]model.Cita, error) {
	var citas []model.Cita
	err := r.db.WithContext(ctx).
		Where("estado IN ?", []string{model.CitaConfirmed, model.CitaInProgress}).
		Where("end_at < ?", corte).
		Find(&citas).Error
	return citas, err
}

func (r *citaRepo) ConfirmadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Cita, error) {
	var citas []model.Cita
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Vehiculo").
		Where("estado = ?", model.CitaConfirmed).
		Where("start_at >= ? AND start_at < ?", desde, hasta).
		Find(&citas).Error
	return citas, err
}

func (r *citaRepo) DelDia(ctx context.Context, dia time.Time) ([]model.Cita, error) {
	inicio := inicioDelDia(dia)
	fin := inicio.AddDate(0, 0, 1)
	var citas []model.Cita
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Vehiculo").
		Where("start_at >= ? AND start_at < ?", inicio, fin).
		Order("start_at").
		Find(&citas).Error
	return citas, err
}

func (r *citaRepo) CreateSolicitud(ctx context.Context, s *model.SolicitudCita) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *citaRepo) FindSolicitudByID(ctx context.Context, id uuid.UUID) (*model.SolicitudCita, error) {
	var s model.SolicitudCita
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *citaRepo) UpdateSolicitud(ctx context.Context, s *model.SolicitudCita) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *citaRepo) ListSolicitudes(ctx context.Context, estado string) ([]model.SolicitudCita, error) {
	q := r.db.WithContext(ctx).Model(&model.SolicitudCita{})
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	var solicitudes []model.SolicitudCita
	err := q.Order("created_at DESC").Find(&solicitudes).Error
	return solicitudes, err
}

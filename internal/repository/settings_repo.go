package repository

import (
	"context"
	"errors"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	// Get returns the single settings row, creating it with defaults on
	// first access.
	Get(ctx context.Context) (*model.ShopSettings, error)
	Update(ctx context.Context, s *model.ShopSettings) error
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.ShopSettings, error) {
	var s model.ShopSettings
	err := r.db.WithContext(ctx).First(&s, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = model.ShopSettings{
			ID:                 1,
			Nombre:             "Taller",
			Reminder24hEnabled: true,
			SlotInicioHora:     9,
			SlotFinHora:        18,
			SlotPasoMin:        30,
		}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Update(ctx context.Context, s *model.ShopSettings) error {
	s.ID = 1
	return r.db.WithContext(ctx).Save(s).Error
}

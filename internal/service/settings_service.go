package service

import (
	"context"
	"errors"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"
)

type SettingsService interface {
	Obtener(ctx context.Context) (*dto.SettingsResponse, error)
	Actualizar(ctx context.Context, req dto.ActualizarSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Obtener(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settingsToResponse(settings), nil
}

func (s *settingsService) Actualizar(ctx context.Context, req dto.ActualizarSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		settings.Nombre = *req.Nombre
	}
	if req.Direccion != nil {
		settings.Direccion = *req.Direccion
	}
	if req.Telefono != nil {
		settings.Telefono = *req.Telefono
	}
	if req.EmailFrom != nil {
		settings.EmailFrom = *req.EmailFrom
	}
	if req.OwnerEmail != nil {
		settings.OwnerEmail = *req.OwnerEmail
	}
	if req.LogoUrl != nil {
		settings.LogoUrl = *req.LogoUrl
	}
	if req.Bloqueos != nil {
		bloqueos := make([]model.RangoBloqueado, 0, len(*req.Bloqueos))
		for _, b := range *req.Bloqueos {
			if b.Hasta.Before(b.Desde) {
				return nil, errors.New("un rango bloqueado no puede terminar antes de empezar")
			}
			bloqueos = append(bloqueos, model.RangoBloqueado{
				Desde:     b.Desde,
				Hasta:     b.Hasta,
				SoloFecha: b.SoloFecha,
				Motivo:    b.Motivo,
			})
		}
		settings.Bloqueos = bloqueos
	}
	if req.Reminder24hEnabled != nil {
		settings.Reminder24hEnabled = *req.Reminder24hEnabled
	}
	if req.SlotInicioHora != nil {
		settings.SlotInicioHora = *req.SlotInicioHora
	}
	if req.SlotFinHora != nil {
		settings.SlotFinHora = *req.SlotFinHora
	}
	if req.SlotPasoMin != nil {
		settings.SlotPasoMin = *req.SlotPasoMin
	}
	if settings.SlotFinHora <= settings.SlotInicioHora {
		return nil, errors.New("la grilla de turnos debe terminar después de empezar")
	}

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settingsToResponse(settings), nil
}

func settingsToResponse(s *model.ShopSettings) *dto.SettingsResponse {
	bloqueos := make([]dto.RangoBloqueadoResponse, 0, len(s.Bloqueos))
	for _, b := range s.Bloqueos {
		bloqueos = append(bloqueos, dto.RangoBloqueadoResponse{
			Desde:     b.Desde.Format(time.RFC3339),
			Hasta:     b.Hasta.Format(time.RFC3339),
			SoloFecha: b.SoloFecha,
			Motivo:    b.Motivo,
		})
	}
	return &dto.SettingsResponse{
		Nombre:             s.Nombre,
		Direccion:          s.Direccion,
		Telefono:           s.Telefono,
		EmailFrom:          s.EmailFrom,
		OwnerEmail:         s.OwnerEmail,
		LogoUrl:            s.LogoUrl,
		Bloqueos:           bloqueos,
		Reminder24hEnabled: s.Reminder24hEnabled,
		SlotInicioHora:     s.SlotInicioHora,
		SlotFinHora:        s.SlotFinHora,
		SlotPasoMin:        s.SlotPasoMin,
	}
}

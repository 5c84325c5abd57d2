package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"

	"github.com/google/uuid"
)

var ErrPatenteDuplicada = errors.New("ya existe un vehículo con esa patente")

type VehiculoService interface {
	Crear(ctx context.Context, req dto.CrearVehiculoRequest) (*dto.VehiculoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VehiculoResponse, error)
	Listar(ctx context.Context, clienteID string, page, limit int) (*dto.VehiculoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVehiculoRequest) (*dto.VehiculoResponse, error)
	// CambiarDueno reassigns the vehicle to another cliente, closing the
	// current ownership ledger entry and opening a new one.
	CambiarDueno(ctx context.Context, id uuid.UUID, req dto.CambiarDuenoRequest) (*dto.VehiculoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type vehiculoService struct {
	repo        repository.VehiculoRepository
	clienteRepo repository.ClienteRepository
}

func NewVehiculoService(repo repository.VehiculoRepository, clienteRepo repository.ClienteRepository) VehiculoService {
	return &vehiculoService{repo: repo, clienteRepo: clienteRepo}
}

func (s *vehiculoService) Crear(ctx context.Context, req dto.CrearVehiculoRequest) (*dto.VehiculoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}

	normalizada := model.NormalizarPatente(req.Patente)
	if normalizada == "" {
		return nil, errors.New("la patente no contiene caracteres válidos")
	}
	if _, err := s.repo.FindByPatenteNormalizada(ctx, normalizada); err == nil {
		return nil, ErrPatenteDuplicada
	}

	vehiculo := model.Vehiculo{
		Patente:            req.Patente,
		PatenteNormalizada: normalizada,
		Marca:              req.Marca,
		Modelo:             req.Modelo,
		Anio:               req.Anio,
		Color:              req.Color,
		Km:                 req.Km,
		ClienteID:          clienteID,
	}
	if err := s.repo.Create(ctx, &vehiculo); err != nil {
		return nil, err
	}
	return vehiculoToResponse(&vehiculo), nil
}

func (s *vehiculoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VehiculoResponse, error) {
	vehiculo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("vehículo no encontrado")
	}
	return vehiculoToResponse(vehiculo), nil
}

func (s *vehiculoService) Listar(ctx context.Context, clienteID string, page, limit int) (*dto.VehiculoListResponse, error) {
	page, limit = normalizarPagina(page, limit)
	var filtro *uuid.UUID
	if clienteID != "" {
		cid, err := uuid.Parse(clienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		filtro = &cid
	}
	vehiculos, total, err := s.repo.List(ctx, filtro, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VehiculoResponse, 0, len(vehiculos))
	for i := range vehiculos {
		data = append(data, *vehiculoToResponse(&vehiculos[i]))
	}
	return &dto.VehiculoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *vehiculoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVehiculoRequest) (*dto.VehiculoResponse, error) {
	vehiculo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("vehículo no encontrado")
	}
	if req.Patente != nil && *req.Patente != vehiculo.Patente {
		normalizada := model.NormalizarPatente(*req.Patente)
		if normalizada == "" {
			return nil, errors.New("la patente no contiene caracteres válidos")
		}
		if normalizada != vehiculo.PatenteNormalizada {
			if otro, err := s.repo.FindByPatenteNormalizada(ctx, normalizada); err == nil && otro.ID != vehiculo.ID {
				return nil, ErrPatenteDuplicada
			}
		}
		vehiculo.Patente = *req.Patente
		vehiculo.PatenteNormalizada = normalizada
	}
	if req.Marca != nil {
		vehiculo.Marca = *req.Marca
	}
	if req.Modelo != nil {
		vehiculo.Modelo = *req.Modelo
	}
	if req.Anio != nil {
		vehiculo.Anio = req.Anio
	}
	if req.Color != nil {
		vehiculo.Color = req.Color
	}
	if req.Km != nil {
		vehiculo.Km = req.Km
	}
	if err := s.repo.Update(ctx, vehiculo); err != nil {
		return nil, err
	}
	return vehiculoToResponse(vehiculo), nil
}

func (s *vehiculoService) CambiarDueno(ctx context.Context, id uuid.UUID, req dto.CambiarDuenoRequest) (*dto.VehiculoResponse, error) {
	nuevoClienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	vehiculo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("vehículo no encontrado")
	}
	if vehiculo.ClienteID == nuevoClienteID {
		return nil, errors.New("el vehículo ya pertenece a ese cliente")
	}
	if _, err := s.clienteRepo.FindByID(ctx, nuevoClienteID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if err := s.repo.CambiarDueno(ctx, id, nuevoClienteID, req.Nota); err != nil {
		return nil, err
	}
	vehiculo, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return vehiculoToResponse(vehiculo), nil
}

func (s *vehiculoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("vehículo no encontrado")
	}
	return s.repo.Delete(ctx, id)
}

func vehiculoToResponse(v *model.Vehiculo) *dto.VehiculoResponse {
	historial := make([]dto.DuenoHistorialResponse, 0, len(v.Historial))
	for _, h := range v.Historial {
		entrada := dto.DuenoHistorialResponse{
			ClienteID: h.ClienteID.String(),
			DesdeAt:   h.DesdeAt.Format(time.RFC3339),
			Nota:      h.Nota,
		}
		if h.HastaAt != nil {
			ha := h.HastaAt.Format(time.RFC3339)
			entrada.HastaAt = &ha
		}
		historial = append(historial, entrada)
	}
	return &dto.VehiculoResponse{
		ID:                 v.ID.String(),
		Patente:            v.Patente,
		PatenteNormalizada: v.PatenteNormalizada,
		Marca:              v.Marca,
		Modelo:             v.Modelo,
		Anio:               v.Anio,
		Color:              v.Color,
		Km:                 v.Km,
		ClienteID:          v.ClienteID.String(),
		Historial:          historial,
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/model"
	"github.com/badkluster/taller-backend-sub000/internal/repository"

	"github.com/google/uuid"
)

var ErrClienteReferenciado = errors.New("el cliente tiene vehículos, citas u órdenes asociadas y no puede eliminarse")

type ClienteService interface {
	// Crear inserts a cliente, or merges into the existing one when the
	// phone (or email) already belongs to somebody: incoming non-empty
	// fields fill the gaps, nothing is overwritten.
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ListFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	existente, err := s.repo.FindByTelefono(ctx, req.Telefono)
	if err != nil && req.Email != nil && *req.Email != "" {
		existente, err = s.repo.FindByEmail(ctx, *req.Email)
	}
	if err == nil && existente != nil {
		cambio := false
		if existente.Apellido == "" && req.Apellido != "" {
			existente.Apellido = req.Apellido
			cambio = true
		}
		if existente.Email == nil && req.Email != nil && *req.Email != "" {
			existente.Email = req.Email
			cambio = true
		}
		if existente.Notas == nil && req.Notas != nil {
			existente.Notas = req.Notas
			cambio = true
		}
		if cambio {
			if err := s.repo.Update(ctx, existente); err != nil {
				return nil, err
			}
		}
		resp := clienteToResponse(existente)
		resp.Fusionado = true
		return resp, nil
	}

	cliente := model.Cliente{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Telefono: req.Telefono,
		Email:    req.Email,
		Notas:    req.Notas,
	}
	if err := s.repo.Create(ctx, &cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(&cliente), nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ListFilter) (*dto.ClienteListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit)
	clientes, total, err := s.repo.List(ctx, filter.Busqueda, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.Nombre != nil {
		cliente.Nombre = *req.Nombre
	}
	if req.Apellido != nil {
		cliente.Apellido = *req.Apellido
	}
	if req.Telefono != nil {
		cliente.Telefono = *req.Telefono
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}
	if req.Notas != nil {
		cliente.Notas = req.Notas
	}
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("cliente no encontrado")
	}
	referenciado, err := s.repo.TieneReferencias(ctx, id)
	if err != nil {
		return err
	}
	if referenciado {
		return ErrClienteReferenciado
	}
	return s.repo.Delete(ctx, id)
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		Apellido:  c.Apellido,
		Telefono:  c.Telefono,
		Email:     c.Email,
		Notas:     c.Notas,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

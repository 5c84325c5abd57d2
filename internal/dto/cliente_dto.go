package dto

import "github.com/shopspring/decimal"

type CrearClienteRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Apellido string  `json:"apellido"`
	Telefono string  `json:"telefono" validate:"required,min=6"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Notas    *string `json:"notas"`
}

type ActualizarClienteRequest struct {
	Nombre   *string `json:"nombre"`
	Apellido *string `json:"apellido"`
	Telefono *string `json:"telefono" validate:"omitempty,min=6"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Notas    *string `json:"notas"`
}

type ClienteResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Apellido string  `json:"apellido"`
	Telefono string  `json:"telefono"`
	Email    *string `json:"email,omitempty"`
	Notas    *string `json:"notas,omitempty"`
	// Fusionado indicates the create request matched an existing phone/email
	// and was merged instead of inserted.
	Fusionado bool   `json:"fusionado,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ListFilter is the shared pagination query filter.
type ListFilter struct {
	Busqueda string `form:"q"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ItemRequest is a shared line-item payload for ordenes and documentos.
type ItemRequest struct {
	Descripcion    string          `json:"descripcion" validate:"required"`
	Cantidad       int             `json:"cantidad" validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Total          decimal.Decimal `json:"total"`
}

package dto

import "github.com/shopspring/decimal"

// CrearPresupuestoRequest creates a numbered quote. Vehiculo/cliente resolve
// either directly or through orden_id; items default to the order's items.
type CrearPresupuestoRequest struct {
	VehiculoID *string         `json:"vehiculo_id" validate:"omitempty,uuid"`
	ClienteID  *string         `json:"cliente_id" validate:"omitempty,uuid"`
	OrdenID    *string         `json:"orden_id" validate:"omitempty,uuid"`
	CitaID     *string         `json:"cita_id" validate:"omitempty,uuid"`
	Items      []ItemRequest   `json:"items" validate:"dive"`
	ManoObra   decimal.Decimal `json:"mano_obra" validate:"min=0"`
	Descuento  decimal.Decimal `json:"descuento" validate:"min=0"`
	Notas      string          `json:"notas"`
}

type CrearFacturaRequest struct {
	OrdenID   string          `json:"orden_id" validate:"required,uuid"`
	Items     []ItemRequest   `json:"items" validate:"dive"`
	ManoObra  *decimal.Decimal `json:"mano_obra"`
	Descuento *decimal.Decimal `json:"descuento"`
	Notas     string          `json:"notas"`
}

type DocumentoItemResponse struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

type DocumentoResponse struct {
	ID         string  `json:"id"`
	Numero     string  `json:"numero"`
	VehiculoID string  `json:"vehiculo_id"`
	ClienteID  string  `json:"cliente_id"`
	OrdenID    *string `json:"orden_id,omitempty"`
	CitaID     *string `json:"cita_id,omitempty"`

	Items     []DocumentoItemResponse `json:"items"`
	ManoObra  decimal.Decimal         `json:"mano_obra"`
	Descuento decimal.Decimal         `json:"descuento"`
	Total     decimal.Decimal         `json:"total"`

	PdfUrl *string `json:"pdf_url,omitempty"`
	// PdfPendiente marks a degraded success: the document was issued but its
	// PDF could not be rendered/uploaded — retriable via the resend action.
	PdfPendiente bool `json:"pdf_pendiente,omitempty"`

	Estado       string   `json:"estado"`
	SentAt       *string  `json:"sent_at,omitempty"`
	ChannelsUsed []string `json:"channels_used,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

type DocumentoListResponse struct {
	Data  []DocumentoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearOrdenRequest struct {
	VehiculoID  string           `json:"vehiculo_id" validate:"required,uuid"`
	ClienteID   string           `json:"cliente_id" validate:"required,uuid"`
	Categoria   string           `json:"categoria" validate:"omitempty,oneof=PRESUPUESTO REPARACION GENERAL"`
	Descripcion *string          `json:"descripcion"`
	Items       []ItemRequest    `json:"items" validate:"dive"`
	ManoObra    decimal.Decimal  `json:"mano_obra" validate:"min=0"`
	Descuento   decimal.Decimal  `json:"descuento" validate:"min=0"`
	MaintenanceDueAt *time.Time  `json:"maintenance_due_at"`
}

// ActualizarOrdenRequest uses pointers throughout: nil means "leave as is".
// Estado changes drive the state machine; any other field on a COMPLETADA
// order is rejected unless the same request reopens it.
type ActualizarOrdenRequest struct {
	Estado      *string          `json:"estado" validate:"omitempty,oneof=PRESUPUESTO EN_PROCESO COMPLETADA CANCELADA"`
	Categoria   *string          `json:"categoria" validate:"omitempty,oneof=PRESUPUESTO REPARACION GENERAL"`
	Descripcion *string          `json:"descripcion"`
	Items       *[]ItemRequest   `json:"items" validate:"omitempty,dive"`
	ManoObra    *decimal.Decimal `json:"mano_obra"`
	Descuento   *decimal.Decimal `json:"descuento"`
	MaintenanceDueAt *time.Time  `json:"maintenance_due_at"`
}

type AgregarEvidenciaRequest struct {
	Tipo  string  `json:"tipo" validate:"required,oneof=texto imagen video"`
	Texto *string `json:"texto"`
	URL   *string `json:"url"`
}

type ItemOrdenResponse struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

type EvidenciaResponse struct {
	ID        string  `json:"id"`
	Tipo      string  `json:"tipo"`
	Texto     *string `json:"texto,omitempty"`
	URL       *string `json:"url,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type OrdenResponse struct {
	ID          string  `json:"id"`
	VehiculoID  string  `json:"vehiculo_id"`
	ClienteID   string  `json:"cliente_id"`
	CitaID      *string `json:"cita_id,omitempty"`
	Categoria   string  `json:"categoria"`
	Estado      string  `json:"estado"`
	Descripcion *string `json:"descripcion,omitempty"`

	Items     []ItemOrdenResponse `json:"items"`
	ManoObra  decimal.Decimal     `json:"mano_obra"`
	Descuento decimal.Decimal     `json:"descuento"`
	Total     decimal.Decimal     `json:"total"`

	WorkStartedAt *string `json:"work_started_at,omitempty"`

	PresupuestoNumero         *string `json:"presupuesto_numero,omitempty"`
	PresupuestoPdfUrl         *string `json:"presupuesto_pdf_url,omitempty"`
	PresupuestoOriginalNumero *string `json:"presupuesto_original_numero,omitempty"`
	PresupuestoOriginalPdfUrl *string `json:"presupuesto_original_pdf_url,omitempty"`
	FacturaNumero             *string `json:"factura_numero,omitempty"`
	FacturaPdfUrl             *string `json:"factura_pdf_url,omitempty"`

	Evidencias []EvidenciaResponse `json:"evidencias,omitempty"`
	CreatedAt  string              `json:"created_at"`
}

type OrdenListResponse struct {
	Data  []OrdenResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type OrdenFilter struct {
	Estado     string `form:"estado"`
	VehiculoID string `form:"vehiculo_id"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

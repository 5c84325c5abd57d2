package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrdenTrabajo estados. PRESUPUESTO is the initial state; CANCELADA is
// reachable from any non-terminal state.
const (
	OrdenPresupuesto = "PRESUPUESTO"
	OrdenEnProceso   = "EN_PROCESO"
	OrdenCompletada  = "COMPLETADA"
	OrdenCancelada   = "CANCELADA"
)

// Categorias — an independent classification, not a state.
const (
	CategoriaPresupuesto = "PRESUPUESTO"
	CategoriaReparacion  = "REPARACION"
	CategoriaGeneral     = "GENERAL"
)

// OrdenTrabajo tracks one repair job for one vehicle.
//
// Total is always Σ(cantidad*precioUnitario) + manoObra − descuento and is
// recomputed on every items/manoObra/descuento change. WorkStartedAt is set
// exactly once, on the first transition into EN_PROCESO or COMPLETADA.
// Once COMPLETADA, only estado and evidencias may change.
type OrdenTrabajo struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VehiculoID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClienteID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	CitaID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Categoria  string     `gorm:"type:varchar(20);not null;default:'GENERAL'"`
	Estado     string     `gorm:"type:varchar(20);not null;default:'PRESUPUESTO'"`
	Descripcion *string

	Items     []OrdenItem     `gorm:"foreignKey:OrdenID"`
	ManoObra  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	WorkStartedAt *time.Time

	// Current document references, refreshed while the order is still a quote.
	PresupuestoPdfUrl *string
	PresupuestoNumero *string
	FacturaPdfUrl     *string
	FacturaPdfID      *string
	FacturaNumero     *string

	// Snapshot of the quote that was current when work began. Permanent audit
	// record — never refreshed afterwards.
	PresupuestoOriginalPdfUrl *string
	PresupuestoOriginalNumero *string

	Evidencias []Evidencia `gorm:"foreignKey:OrdenID"`

	// Maintenance reminder bookkeeping for the cron sweep.
	MaintenanceDueAt          *time.Time
	MaintenanceLastNotifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Vehiculo *Vehiculo `gorm:"foreignKey:VehiculoID"`
	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
}

// Activa reports whether the order is still open (work may continue).
func (o *OrdenTrabajo) Activa() bool {
	return o.Estado != OrdenCompletada && o.Estado != OrdenCancelada
}

// TrabajoIniciado reports whether work has begun on this order.
func (o *OrdenTrabajo) TrabajoIniciado() bool {
	return o.WorkStartedAt != nil || o.Estado == OrdenEnProceso || o.Estado == OrdenCompletada
}

// CalcularTotal derives the order total from its current line items.
func (o *OrdenTrabajo) CalcularTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))))
	}
	return total.Add(o.ManoObra).Sub(o.Descuento)
}

// OrdenItem is one labor/parts line on an order.
type OrdenItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Descripcion    string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null;default:1"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// Evidencia is an append-only log entry attached to an order (photos, notes).
// Entries are never modified or deleted individually — only the order cascade
// removes them.
type Evidencia struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo      string    `gorm:"type:varchar(20);not null"` // texto | imagen | video
	Texto     *string
	URL       *string
	CreatedAt time.Time
}

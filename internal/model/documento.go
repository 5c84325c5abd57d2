package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Numbering series keys and prefixes. Numbers are 4-digit zero-padded and
// simply widen past 9999 ("P-10000").
const (
	SeriePresupuesto   = "presupuesto"
	PrefijoPresupuesto = "P-"
	SerieFactura       = "factura"
	PrefijoFactura     = "A-"
)

// Documento estados.
const (
	DocumentoEmitido = "EMITIDO"
	DocumentoEnviado = "ENVIADO"
)

// DocumentoItem is a line-item snapshot frozen into an issued document.
type DocumentoItem struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// Presupuesto is a pre-work quotation. Immutable once issued except for
// PdfUrl backfill, Estado, SentAt and ChannelsUsed.
type Presupuesto struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     string     `gorm:"uniqueIndex;not null"` // P-0001
	VehiculoID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClienteID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	OrdenID    *uuid.UUID `gorm:"type:uuid;index"`
	CitaID     *uuid.UUID `gorm:"type:uuid;index"`

	Items     []DocumentoItem `gorm:"serializer:json"`
	ManoObra  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PdfUrl *string
	PdfID  *string

	Estado       string `gorm:"type:varchar(20);not null;default:'EMITIDO'"`
	SentAt       *time.Time
	ChannelsUsed []string `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Factura is a post-work billing document. Immutable once issued except for
// PdfUrl and SentAt.
type Factura struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     string     `gorm:"uniqueIndex;not null"` // A-0001
	VehiculoID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClienteID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	OrdenID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	CitaID     *uuid.UUID `gorm:"type:uuid"`

	Items     []DocumentoItem `gorm:"serializer:json"`
	ManoObra  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PdfUrl *string
	PdfID  *string

	Estado    string `gorm:"type:varchar(20);not null;default:'EMITIDO'"`
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Secuencia is one numbering series row. Valor only ever increases; the
// allocator reconciles it against numbers actually in use before issuing.
type Secuencia struct {
	Clave string `gorm:"primaryKey"`
	Valor int64  `gorm:"not null;default:0"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Cita statuses. CANCELLED, NO_SHOW and COMPLETED are terminal.
const (
	CitaScheduled  = "SCHEDULED"
	CitaConfirmed  = "CONFIRMED"
	CitaInProgress = "IN_PROGRESS"
	CitaCompleted  = "COMPLETED"
	CitaCancelled  = "CANCELLED"
	CitaNoShow     = "NO_SHOW"
)

// Cita is a booked appointment for one vehicle. At most one active
// (non-CANCELLED / non-NO_SHOW) cita may exist per vehicle per calendar day.
type Cita struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VehiculoID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ClienteID    uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt      time.Time `gorm:"index;not null"`
	EndAt        time.Time `gorm:"not null"`
	Estado       string    `gorm:"type:varchar(20);not null;default:'SCHEDULED'"`
	TipoServicio string    `gorm:"type:varchar(30)"`
	Notas        *string
	AsignadaA    *uuid.UUID `gorm:"type:uuid"`
	MotivoCancel *string
	// RecordatorioEnviadoPara holds the appointment date a 24h reminder was
	// last sent for. A rescheduled cita gets a fresh reminder because the
	// marker no longer matches its new date.
	RecordatorioEnviadoPara *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time

	Vehiculo *Vehiculo `gorm:"foreignKey:VehiculoID"`
	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
}

// Activa reports whether the cita still occupies its slot — cancelled and
// no-show citas free the vehicle's day.
func (c *Cita) Activa() bool {
	return c.Estado != CitaCancelled && c.Estado != CitaNoShow
}

// SolicitudCita statuses.
const (
	SolicitudPending   = "PENDING"
	SolicitudConfirmed = "CONFIRMED"
	SolicitudRejected  = "REJECTED"
)

// VehiculoSnapshot is the vehicle data a visitor typed into the public
// request form, before any Vehiculo row exists.
type VehiculoSnapshot struct {
	Patente string `json:"patente"`
	Marca   string `json:"marca"`
	Modelo  string `json:"modelo"`
	Anio    *int   `json:"anio,omitempty"`
}

// SolicitudCita is a public-facing pre-appointment proposal. Confirming it
// creates the real Cita (and cliente/vehiculo if needed); rejecting records
// the reason. Both outcomes are terminal.
type SolicitudCita struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCliente   string           `gorm:"not null"`
	Telefono        string           `gorm:"not null"`
	Email           *string
	Vehiculo        VehiculoSnapshot `gorm:"serializer:json"`
	TipoSolicitud   string           `gorm:"type:varchar(20);not null"` // diagnosis | repair
	FechasSugeridas []time.Time      `gorm:"serializer:json"`
	Estado          string           `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CitaID          *uuid.UUID       `gorm:"type:uuid"`
	MotivoRechazo   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

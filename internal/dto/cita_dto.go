package dto

import "time"

type CrearCitaRequest struct {
	VehiculoID   string    `json:"vehiculo_id" validate:"required,uuid"`
	ClienteID    string    `json:"cliente_id" validate:"required,uuid"`
	StartAt      time.Time `json:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" validate:"required"`
	TipoServicio string    `json:"tipo_servicio"`
	Notas        *string   `json:"notas"`
	AsignadaA    *string   `json:"asignada_a" validate:"omitempty,uuid"`
}

type ActualizarCitaRequest struct {
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	Estado       *string    `json:"estado" validate:"omitempty,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	TipoServicio *string    `json:"tipo_servicio"`
	Notas        *string    `json:"notas"`
	AsignadaA    *string    `json:"asignada_a" validate:"omitempty,uuid"`
}

type CancelarCitaRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

type CitaResponse struct {
	ID           string  `json:"id"`
	VehiculoID   string  `json:"vehiculo_id"`
	ClienteID    string  `json:"cliente_id"`
	StartAt      string  `json:"start_at"`
	EndAt        string  `json:"end_at"`
	Estado       string  `json:"estado"`
	TipoServicio string  `json:"tipo_servicio"`
	Notas        *string `json:"notas,omitempty"`
	AsignadaA    *string `json:"asignada_a,omitempty"`
	MotivoCancel *string `json:"motivo_cancelacion,omitempty"`
	// EmailPendiente marks a degraded success: the cita exists but the
	// notification email could not be queued/sent.
	EmailPendiente bool   `json:"email_pendiente,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type CitaListResponse struct {
	Data  []CitaResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type CitaFilter struct {
	Desde  string `form:"desde"` // YYYY-MM-DD
	Hasta  string `form:"hasta"`
	Estado string `form:"estado"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ── Solicitudes ───────────────────────────────────────────────────────────────

type VehiculoSnapshotRequest struct {
	Patente string `json:"patente" validate:"required"`
	Marca   string `json:"marca"`
	Modelo  string `json:"modelo"`
	Anio    *int   `json:"anio"`
}

type CrearSolicitudRequest struct {
	NombreCliente   string                  `json:"nombre_cliente" validate:"required"`
	Telefono        string                  `json:"telefono" validate:"required,min=6"`
	Email           *string                 `json:"email" validate:"omitempty,email"`
	Vehiculo        VehiculoSnapshotRequest `json:"vehiculo" validate:"required"`
	TipoSolicitud   string                  `json:"tipo_solicitud" validate:"required,oneof=diagnosis repair"`
	FechasSugeridas []time.Time             `json:"fechas_sugeridas" validate:"required,min=3"`
}

type ConfirmarSolicitudRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

type RechazarSolicitudRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

type SolicitudResponse struct {
	ID              string   `json:"id"`
	NombreCliente   string   `json:"nombre_cliente"`
	Telefono        string   `json:"telefono"`
	Email           *string  `json:"email,omitempty"`
	TipoSolicitud   string   `json:"tipo_solicitud"`
	FechasSugeridas []string `json:"fechas_sugeridas"`
	Estado          string   `json:"estado"`
	CitaID          *string  `json:"cita_id,omitempty"`
	MotivoRechazo   *string  `json:"motivo_rechazo,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

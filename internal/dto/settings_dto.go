package dto

import "time"

type RangoBloqueadoRequest struct {
	Desde     time.Time `json:"desde" validate:"required"`
	Hasta     time.Time `json:"hasta" validate:"required"`
	SoloFecha bool      `json:"solo_fecha"`
	Motivo    string    `json:"motivo"`
}

// ActualizarSettingsRequest uses pointers so omitted fields keep their value.
// Bloqueos replaces the whole list when present.
type ActualizarSettingsRequest struct {
	Nombre     *string `json:"nombre"`
	Direccion  *string `json:"direccion"`
	Telefono   *string `json:"telefono"`
	EmailFrom  *string `json:"email_from" validate:"omitempty,email"`
	OwnerEmail *string `json:"owner_email" validate:"omitempty,email"`
	LogoUrl    *string `json:"logo_url"`

	Bloqueos *[]RangoBloqueadoRequest `json:"bloqueos" validate:"omitempty,dive"`

	Reminder24hEnabled *bool `json:"reminder_24h_enabled"`
	SlotInicioHora     *int  `json:"slot_inicio_hora" validate:"omitempty,min=0,max=23"`
	SlotFinHora        *int  `json:"slot_fin_hora" validate:"omitempty,min=1,max=24"`
	SlotPasoMin        *int  `json:"slot_paso_min" validate:"omitempty,min=5,max=240"`
}

type RangoBloqueadoResponse struct {
	Desde     string `json:"desde"`
	Hasta     string `json:"hasta"`
	SoloFecha bool   `json:"solo_fecha"`
	Motivo    string `json:"motivo,omitempty"`
}

type SettingsResponse struct {
	Nombre     string `json:"nombre"`
	Direccion  string `json:"direccion"`
	Telefono   string `json:"telefono"`
	EmailFrom  string `json:"email_from"`
	OwnerEmail string `json:"owner_email"`
	LogoUrl    string `json:"logo_url"`

	Bloqueos []RangoBloqueadoResponse `json:"bloqueos"`

	Reminder24hEnabled bool `json:"reminder_24h_enabled"`
	SlotInicioHora     int  `json:"slot_inicio_hora"`
	SlotFinHora        int  `json:"slot_fin_hora"`
	SlotPasoMin        int  `json:"slot_paso_min"`
}

package dto

type CrearVehiculoRequest struct {
	Patente   string  `json:"patente" validate:"required"`
	Marca     string  `json:"marca"`
	Modelo    string  `json:"modelo"`
	Anio      *int    `json:"anio" validate:"omitempty,min=1900"`
	Color     *string `json:"color"`
	Km        *int    `json:"km" validate:"omitempty,min=0"`
	ClienteID string  `json:"cliente_id" validate:"required,uuid"`
}

type ActualizarVehiculoRequest struct {
	Patente *string `json:"patente"`
	Marca   *string `json:"marca"`
	Modelo  *string `json:"modelo"`
	Anio    *int    `json:"anio" validate:"omitempty,min=1900"`
	Color   *string `json:"color"`
	Km      *int    `json:"km" validate:"omitempty,min=0"`
}

type CambiarDuenoRequest struct {
	ClienteID string  `json:"cliente_id" validate:"required,uuid"`
	Nota      *string `json:"nota"`
}

type DuenoHistorialResponse struct {
	ClienteID string  `json:"cliente_id"`
	DesdeAt   string  `json:"desde_at"`
	HastaAt   *string `json:"hasta_at,omitempty"`
	Nota      *string `json:"nota,omitempty"`
}

type VehiculoResponse struct {
	ID                 string                   `json:"id"`
	Patente            string                   `json:"patente"`
	PatenteNormalizada string                   `json:"patente_normalizada"`
	Marca              string                   `json:"marca"`
	Modelo             string                   `json:"modelo"`
	Anio               *int                     `json:"anio,omitempty"`
	Color              *string                  `json:"color,omitempty"`
	Km                 *int                     `json:"km,omitempty"`
	ClienteID          string                   `json:"cliente_id"`
	Historial          []DuenoHistorialResponse `json:"historial,omitempty"`
	CreatedAt          string                   `json:"created_at"`
}

type VehiculoListResponse struct {
	Data  []VehiculoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

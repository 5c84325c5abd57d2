package dto

type LoginRequest struct {
	Usuario  string `json:"usuario" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Usuario   string `json:"usuario"`
	ExpiresAt string `json:"expires_at"`
}

package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingsService }

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Obtener godoc
// @Summary Configuración del taller
// @Tags    settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router  /v1/settings [get]
func (h *SettingsHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al cargar configuración"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar configuración del taller
// @Tags    settings
// @Accept  json
// @Produce json
// @Param   body body dto.ActualizarSettingsRequest true "Campos a modificar"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/settings [put]
func (h *SettingsHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

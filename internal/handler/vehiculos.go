package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VehiculosHandler struct{ svc service.VehiculoService }

func NewVehiculosHandler(svc service.VehiculoService) *VehiculosHandler {
	return &VehiculosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear vehículo
// @Description  Crea un vehículo; la patente se normaliza y debe ser única.
// @Tags         vehiculos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearVehiculoRequest true "Datos del vehículo"
// @Success      201 {object} dto.VehiculoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/vehiculos [post]
func (h *VehiculosHandler) Crear(c *gin.Context) {
	var req dto.CrearVehiculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrPatenteDuplicada {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtener vehículo con su historial de dueños
// @Tags    vehiculos
// @Produce json
// @Param   id path string true "UUID del vehículo"
// @Success 200 {object} dto.VehiculoResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/vehiculos/{id} [get]
func (h *VehiculosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Listar vehículos
// @Tags    vehiculos
// @Produce json
// @Param   cliente_id query string false "Filtrar por dueño"
// @Param   page  query int false "Pagina"
// @Param   limit query int false "Tamaño de pagina"
// @Success 200 {object} dto.VehiculoListResponse
// @Router  /v1/vehiculos [get]
func (h *VehiculosHandler) Listar(c *gin.Context) {
	page, limit := paginacion(c)
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("cliente_id"), page, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar vehículo
// @Tags    vehiculos
// @Accept  json
// @Produce json
// @Param   id   path string true "UUID del vehículo"
// @Param   body body dto.ActualizarVehiculoRequest true "Campos a modificar"
// @Success 200 {object} dto.VehiculoResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/vehiculos/{id} [put]
func (h *VehiculosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarVehiculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarDueno godoc
// @Summary      Cambiar dueño del vehículo
// @Description  Cierra la entrada abierta del historial y registra al nuevo dueño.
// @Tags         vehiculos
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID del vehículo"
// @Param        body body dto.CambiarDuenoRequest true "Nuevo dueño"
// @Success      200 {object} dto.VehiculoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/vehiculos/{id}/dueno [post]
func (h *VehiculosHandler) CambiarDueno(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CambiarDuenoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarDueno(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Eliminar vehículo
// @Tags    vehiculos
// @Param   id path string true "UUID del vehículo"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router  /v1/vehiculos/{id} [delete]
func (h *VehiculosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear cliente
// @Description  Crea un cliente; si el teléfono o email ya existen, fusiona con el registro existente.
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearClienteRequest true "Datos del cliente"
// @Success      201 {object} dto.ClienteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/clientes [post]
func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	status := http.StatusCreated
	if resp.Fusionado {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// Obtener godoc
// @Summary Obtener cliente por ID
// @Tags    clientes
// @Produce json
// @Param   id path string true "UUID del cliente"
// @Success 200 {object} dto.ClienteResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/clientes/{id} [get]
func (h *ClientesHandler) Obtener(c *gin.Context) {
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
// @Summary Listar clientes
// @Tags    clientes
// @Produce json
// @Param   q     query string false "Busqueda por nombre/telefono"
// @Param   page  query int    false "Pagina"
// @Param   limit query int    false "Tamaño de pagina"
// @Success 200 {object} dto.ClienteListResponse
// @Router  /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ListFilter
	_ = c.ShouldBindQuery(&filter)
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar clientes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar cliente
// @Tags    clientes
// @Accept  json
// @Produce json
// @Param   id   path string true "UUID del cliente"
// @Param   body body dto.ActualizarClienteRequest true "Campos a modificar"
// @Success 200 {object} dto.ClienteResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/clientes/{id} [put]
func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarClienteRequest
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

// Eliminar godoc
// @Summary Eliminar cliente
// @Description Rechaza la eliminación si el cliente tiene vehículos, citas u órdenes.
// @Tags    clientes
// @Param   id path string true "UUID del cliente"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router  /v1/clientes/{id} [delete]
func (h *ClientesHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		status := http.StatusBadRequest
		if err == service.ErrClienteReferenciado {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdenesHandler struct{ svc service.OrdenService }

func NewOrdenesHandler(svc service.OrdenService) *OrdenesHandler {
	return &OrdenesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear orden de trabajo
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearOrdenRequest true "Datos de la orden"
// @Success      201 {object} dto.OrdenResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ordenes [post]
func (h *OrdenesHandler) Crear(c *gin.Context) {
	var req dto.CrearOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtener orden con items y evidencias
// @Tags    ordenes
// @Produce json
// @Param   id path string true "UUID de la orden"
// @Success 200 {object} dto.OrdenResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/ordenes/{id} [get]
func (h *OrdenesHandler) Obtener(c *gin.Context) {
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
// @Summary Listar ordenes de trabajo
// @Tags    ordenes
// @Produce json
// @Param   estado      query string false "Estado"
// @Param   vehiculo_id query string false "Filtrar por vehículo"
// @Success 200 {object} dto.OrdenListResponse
// @Router  /v1/ordenes [get]
func (h *OrdenesHandler) Listar(c *gin.Context) {
	var filter dto.OrdenFilter
	_ = c.ShouldBindQuery(&filter)
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar orden de trabajo
// @Description  Recalcula el total ante cambios de items/mano de obra/descuento e invalida la factura si el trabajo ya comenzó. Una orden COMPLETADA solo admite cambios de estado o evidencias.
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID de la orden"
// @Param        body body dto.ActualizarOrdenRequest true "Campos a modificar"
// @Success      200 {object} dto.OrdenResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ordenes/{id} [put]
func (h *OrdenesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarOrdenRequest
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

// Reabrir godoc
// @Summary      Reabrir orden completada
// @Description  Cambio de estado solamente; el snapshot del presupuesto original no se toca.
// @Tags         ordenes
// @Produce      json
// @Param        id     path  string true "UUID de la orden"
// @Param        estado query string false "Estado destino (EN_PROCESO por defecto)"
// @Success      200 {object} dto.OrdenResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ordenes/{id}/reabrir [post]
func (h *OrdenesHandler) Reabrir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	estado := c.DefaultQuery("estado", "EN_PROCESO")
	resp, err := h.svc.Reabrir(c.Request.Context(), id, estado)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarEvidencia godoc
// @Summary Agregar evidencia a la orden
// @Tags    ordenes
// @Accept  json
// @Produce json
// @Param   id   path string true "UUID de la orden"
// @Param   body body dto.AgregarEvidenciaRequest true "Evidencia (texto, imagen o video)"
// @Success 200 {object} dto.OrdenResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/ordenes/{id}/evidencias [post]
func (h *OrdenesHandler) AgregarEvidencia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AgregarEvidenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarEvidencia(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar orden en cascada
// @Description  Borra presupuestos y facturas vinculados y los PDFs/evidencias almacenados.
// @Tags         ordenes
// @Param        id path string true "UUID de la orden"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ordenes/{id} [delete]
func (h *OrdenesHandler) Eliminar(c *gin.Context) {
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

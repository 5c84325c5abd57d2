package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentosHandler struct{ svc service.DocumentoService }

func NewDocumentosHandler(svc service.DocumentoService) *DocumentosHandler {
	return &DocumentosHandler{svc: svc}
}

// CrearPresupuesto godoc
// @Summary      Emitir presupuesto
// @Description  Numera (P-0001), congela los items y genera el PDF. Si el PDF falla, el presupuesto igual se emite con pdf_pendiente.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearPresupuestoRequest true "Datos del presupuesto"
// @Success      201 {object} dto.DocumentoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/presupuestos [post]
func (h *DocumentosHandler) CrearPresupuesto(c *gin.Context) {
	var req dto.CrearPresupuestoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearPresupuesto(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerPresupuesto godoc
// @Summary Obtener presupuesto
// @Tags    presupuestos
// @Produce json
// @Param   id path string true "UUID del presupuesto"
// @Success 200 {object} dto.DocumentoResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/presupuestos/{id} [get]
func (h *DocumentosHandler) ObtenerPresupuesto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPresupuesto(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPresupuestos godoc
// @Summary Listar presupuestos
// @Tags    presupuestos
// @Produce json
// @Success 200 {object} dto.DocumentoListResponse
// @Router  /v1/presupuestos [get]
func (h *DocumentosHandler) ListarPresupuestos(c *gin.Context) {
	page, limit := paginacion(c)
	resp, err := h.svc.ListarPresupuestos(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar presupuestos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnviarPresupuesto godoc
// @Summary      Enviar presupuesto por email
// @Description  Regenera el PDF, lo adjunta y registra el envío. Reintenta la subida del PDF si quedó pendiente.
// @Tags         presupuestos
// @Produce      json
// @Param        id path string true "UUID del presupuesto"
// @Success      200 {object} dto.DocumentoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/enviar-email [post]
func (h *DocumentosHandler) EnviarPresupuesto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.EnviarPresupuestoEmail(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearFactura godoc
// @Summary      Emitir factura
// @Description  Numera (A-0001) contra una orden y la fuerza a COMPLETADA.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearFacturaRequest true "Datos de la factura"
// @Success      201 {object} dto.DocumentoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/facturas [post]
func (h *DocumentosHandler) CrearFactura(c *gin.Context) {
	var req dto.CrearFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearFactura(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerFactura godoc
// @Summary Obtener factura
// @Tags    facturas
// @Produce json
// @Param   id path string true "UUID de la factura"
// @Success 200 {object} dto.DocumentoResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/facturas/{id} [get]
func (h *DocumentosHandler) ObtenerFactura(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerFactura(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarFacturas godoc
// @Summary Listar facturas
// @Tags    facturas
// @Produce json
// @Success 200 {object} dto.DocumentoListResponse
// @Router  /v1/facturas [get]
func (h *DocumentosHandler) ListarFacturas(c *gin.Context) {
	page, limit := paginacion(c)
	resp, err := h.svc.ListarFacturas(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar facturas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnviarFactura godoc
// @Summary Enviar factura por email
// @Tags    facturas
// @Produce json
// @Param   id path string true "UUID de la factura"
// @Success 200 {object} dto.DocumentoResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/facturas/{id}/enviar-email [post]
func (h *DocumentosHandler) EnviarFactura(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.EnviarFacturaEmail(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CitasHandler struct{ svc service.CitaService }

func NewCitasHandler(svc service.CitaService) *CitasHandler {
	return &CitasHandler{svc: svc}
}

// Crear godoc
// @Summary      Agendar cita
// @Description  Crea una cita validando bloqueos del taller y el límite de una cita activa por vehículo por día.
// @Tags         citas
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearCitaRequest true "Datos de la cita"
// @Success      201 {object} dto.CitaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/citas [post]
func (h *CitasHandler) Crear(c *gin.Context) {
	var req dto.CrearCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(estadoDeCitaError(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtener cita por ID
// @Tags    citas
// @Produce json
// @Param   id path string true "UUID de la cita"
// @Success 200 {object} dto.CitaResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/citas/{id} [get]
func (h *CitasHandler) Obtener(c *gin.Context) {
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
// @Summary Listar citas
// @Tags    citas
// @Produce json
// @Param   desde  query string false "Fecha desde (YYYY-MM-DD)"
// @Param   hasta  query string false "Fecha hasta (YYYY-MM-DD)"
// @Param   estado query string false "Estado"
// @Success 200 {object} dto.CitaListResponse
// @Router  /v1/citas [get]
func (h *CitasHandler) Listar(c *gin.Context) {
	var filter dto.CitaFilter
	_ = c.ShouldBindQuery(&filter)
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar / reprogramar cita
// @Description  Reprogramar vuelve a correr todas las reglas de agenda.
// @Tags         citas
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID de la cita"
// @Param        body body dto.ActualizarCitaRequest true "Campos a modificar"
// @Success      200 {object} dto.CitaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/citas/{id} [put]
func (h *CitasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(estadoDeCitaError(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancelar cita
// @Tags    citas
// @Accept  json
// @Produce json
// @Param   id   path string true "UUID de la cita"
// @Param   body body dto.CancelarCitaRequest true "Motivo"
// @Success 200 {object} dto.CitaResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/citas/{id}/cancelar [post]
func (h *CitasHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelarCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConvertirAOrden godoc
// @Summary      Convertir cita en orden de trabajo
// @Description  Crea la orden sembrada desde la cita. Una cita admite una sola orden.
// @Tags         citas
// @Produce      json
// @Param        id path string true "UUID de la cita"
// @Success      201 {object} dto.OrdenResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/citas/{id}/convertir-orden [post]
func (h *CitasHandler) ConvertirAOrden(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ConvertirAOrden(c.Request.Context(), id)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrOrdenYaExiste {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Solicitudes ───────────────────────────────────────────────────────────────

// CrearSolicitud godoc
// @Summary      Crear solicitud de cita (público)
// @Description  Requiere al menos tres fechas sugeridas en días distintos.
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearSolicitudRequest true "Solicitud"
// @Success      201 {object} dto.SolicitudResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/solicitudes [post]
func (h *CitasHandler) CrearSolicitud(c *gin.Context) {
	var req dto.CrearSolicitudRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearSolicitud(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarSolicitudes godoc
// @Summary Listar solicitudes de cita
// @Tags    solicitudes
// @Produce json
// @Param   estado query string false "PENDING | CONFIRMED | REJECTED"
// @Success 200 {array} dto.SolicitudResponse
// @Router  /v1/solicitudes [get]
func (h *CitasHandler) ListarSolicitudes(c *gin.Context) {
	resp, err := h.svc.ListarSolicitudes(c.Request.Context(), c.Query("estado"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar solicitudes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmarSolicitud godoc
// @Summary      Confirmar solicitud
// @Description  Crea cliente y vehículo si no existen, y agenda la cita en el horario elegido.
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id   path string true "UUID de la solicitud"
// @Param        body body dto.ConfirmarSolicitudRequest true "Horario definitivo"
// @Success      200 {object} dto.SolicitudResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/solicitudes/{id}/confirmar [post]
func (h *CitasHandler) ConfirmarSolicitud(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ConfirmarSolicitudRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmarSolicitud(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(estadoDeCitaError(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RechazarSolicitud godoc
// @Summary Rechazar solicitud
// @Tags    solicitudes
// @Accept  json
// @Produce json
// @Param   id   path string true "UUID de la solicitud"
// @Param   body body dto.RechazarSolicitudRequest true "Motivo"
// @Success 200 {object} dto.SolicitudResponse
// @Failure 400 {object} apierror.APIError
// @Router  /v1/solicitudes/{id}/rechazar [post]
func (h *CitasHandler) RechazarSolicitud(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RechazarSolicitudRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RechazarSolicitud(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// estadoDeCitaError maps booking-rule violations to 409, the rest to 400.
func estadoDeCitaError(err error) int {
	switch err {
	case service.ErrCitaDuplicadaEnDia, service.ErrRangoBloqueado:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

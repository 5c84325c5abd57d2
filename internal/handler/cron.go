package handler

import (
	"net/http"
	"strconv"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/worker"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the sweeps as manual trigger endpoints, useful for an
// external scheduler or an operator poking a stuck queue.
type CronHandler struct{ sweeper *worker.Sweeper }

func NewCronHandler(sweeper *worker.Sweeper) *CronHandler {
	return &CronHandler{sweeper: sweeper}
}

// Recordatorios godoc
// @Summary Procesar recordatorios pendientes
// @Tags    cron
// @Produce json
// @Success 200 {object} worker.ReminderSweepResult
// @Router  /v1/cron/recordatorios [post]
func (h *CronHandler) Recordatorios(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.ProcessReminders(c.Request.Context()))
}

// Reprogramar godoc
// @Summary Resolver citas vencidas (no-show / reprogramación)
// @Tags    cron
// @Produce json
// @Success 200 {object} worker.RescheduleSweepResult
// @Router  /v1/cron/citas-vencidas [post]
func (h *CronHandler) Reprogramar(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.RescheduleOverdueAppointments(c.Request.Context()))
}

// Recordatorios24h godoc
// @Summary Enviar recordatorios del día siguiente
// @Tags    cron
// @Produce json
// @Param   lookahead query int false "Días de anticipación (1 por defecto)"
// @Success 200 {object} worker.DayBeforeSweepResult
// @Router  /v1/cron/recordatorios-24h [post]
func (h *CronHandler) Recordatorios24h(c *gin.Context) {
	lookahead, err := strconv.Atoi(c.DefaultQuery("lookahead", "1"))
	if err != nil || lookahead < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("lookahead invalido"))
		return
	}
	c.JSON(http.StatusOK, h.sweeper.SendDayBeforeReminders(c.Request.Context(), lookahead))
}

// Mantenimiento godoc
// @Summary Enviar avisos de mantenimiento vencido
// @Tags    cron
// @Produce json
// @Success 200 {object} worker.MaintenanceSweepResult
// @Router  /v1/cron/mantenimiento [post]
func (h *CronHandler) Mantenimiento(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.ProcessMaintenanceReminders(c.Request.Context()))
}

// ResumenDiario godoc
// @Summary Enviar el resumen diario al dueño
// @Tags    cron
// @Produce json
// @Success 200 {object} worker.SummarySweepResult
// @Router  /v1/cron/resumen-diario [post]
func (h *CronHandler) ResumenDiario(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.SendOwnerDailySummary(c.Request.Context()))
}

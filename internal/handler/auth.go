package handler

import (
	"net/http"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/apierror"
	"github.com/badkluster/taller-backend-sub000/internal/config"
	"github.com/badkluster/taller-backend-sub000/internal/dto"
	"github.com/badkluster/taller-backend-sub000/internal/middleware"
	"github.com/badkluster/taller-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
	cfg *config.Config
}

func NewAuthHandler(svc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Login godoc
// @Summary Login del operador
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.Validar(req.Usuario, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}

	token, err := middleware.NewSessionToken(h.cfg.SessionSecret, req.Usuario, h.cfg.SessionHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}

	expiresAt := time.Now().Add(time.Duration(h.cfg.SessionHours) * time.Hour)
	secure := h.cfg.Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, h.cfg.SessionHours*3600, "/", "", secure, true)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Usuario:   req.Usuario,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// Logout godoc
// @Summary Cierra la sesion del operador
// @Tags auth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	secure := h.cfg.Env == "production"
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
	c.Status(http.StatusNoContent)
}

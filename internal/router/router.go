package router

import (
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/config"
	"github.com/badkluster/taller-backend-sub000/internal/handler"
	"github.com/badkluster/taller-backend-sub000/internal/infra"
	"github.com/badkluster/taller-backend-sub000/internal/middleware"
	"github.com/badkluster/taller-backend-sub000/internal/repository"
	"github.com/badkluster/taller-backend-sub000/internal/service"
	"github.com/badkluster/taller-backend-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// cron sweeper (started by main, exposed here so the trigger endpoints and
// the ticker share one instance).
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) (*gin.Engine, *worker.Sweeper) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	pdfRenderer := infra.NewPdfRenderer()
	blobs := infra.NewLocalBlobStore(cfg.BlobStoragePath, cfg.BlobPublicURL)

	// ── Repositories ─────────────────────────────────────────────────────────
	clienteRepo := repository.NewClienteRepository(db)
	vehiculoRepo := repository.NewVehiculoRepository(db)
	citaRepo := repository.NewCitaRepository(db)
	ordenRepo := repository.NewOrdenRepository(db)
	documentoRepo := repository.NewDocumentoRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)
	recordatorioRepo := repository.NewRecordatorioRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Worker dispatcher — injected into services that enqueue async emails
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(cfg.AdminUser, cfg.AdminPasswordHash)
	clienteSvc := service.NewClienteService(clienteRepo)
	vehiculoSvc := service.NewVehiculoService(vehiculoRepo, clienteRepo)
	secuenciaSvc := service.NewSecuenciaService(secuenciaRepo)
	citaSvc := service.NewCitaService(citaRepo, ordenRepo, documentoRepo, clienteRepo, vehiculoRepo, settingsRepo, recordatorioRepo, dispatcher)
	ordenSvc := service.NewOrdenService(ordenRepo, citaRepo, documentoRepo, blobs)
	documentoSvc := service.NewDocumentoService(documentoRepo, ordenRepo, citaRepo, clienteRepo, vehiculoRepo, settingsRepo, ordenSvc, secuenciaSvc, pdfRenderer, blobs, mailer)
	settingsSvc := service.NewSettingsService(settingsRepo)

	sweeper := worker.NewSweeper(citaRepo, ordenRepo, recordatorioRepo, clienteRepo, settingsRepo, mailer, smtpCB)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg)
	clientesH := handler.NewClientesHandler(clienteSvc)
	vehiculosH := handler.NewVehiculosHandler(vehiculoSvc)
	citasH := handler.NewCitasHandler(citaSvc)
	ordenesH := handler.NewOrdenesHandler(ordenSvc)
	documentosH := handler.NewDocumentosHandler(documentoSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	cronH := handler.NewCronHandler(sweeper)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)
	r.POST("/v1/solicitudes", citasH.CrearSolicitud) // public booking form

	// Generated PDFs and evidence uploads served from local blob storage
	r.Static("/blobs", cfg.BlobStoragePath)

	// Protected routes — single operator session
	sessionMW := middleware.SessionAuth(cfg.SessionSecret)
	v1 := r.Group("/v1", sessionMW)
	{
		v1.POST("/auth/logout", authH.Logout)

		clientes := v1.Group("/clientes")
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Eliminar)
		}

		vehiculos := v1.Group("/vehiculos")
		{
			vehiculos.POST("", vehiculosH.Crear)
			vehiculos.GET("", vehiculosH.Listar)
			vehiculos.GET("/:id", vehiculosH.Obtener)
			vehiculos.PUT("/:id", vehiculosH.Actualizar)
			vehiculos.POST("/:id/dueno", vehiculosH.CambiarDueno)
			vehiculos.DELETE("/:id", vehiculosH.Eliminar)
		}

		citas := v1.Group("/citas")
		{
			citas.POST("", citasH.Crear)
			citas.GET("", citasH.Listar)
			citas.GET("/:id", citasH.Obtener)
			citas.PUT("/:id", citasH.Actualizar)
			citas.POST("/:id/cancelar", citasH.Cancelar)
			citas.POST("/:id/convertir-orden", citasH.ConvertirAOrden)
		}

		solicitudes := v1.Group("/solicitudes")
		{
			solicitudes.GET("", citasH.ListarSolicitudes)
			solicitudes.POST("/:id/confirmar", citasH.ConfirmarSolicitud)
			solicitudes.POST("/:id/rechazar", citasH.RechazarSolicitud)
		}

		ordenes := v1.Group("/ordenes")
		{
			ordenes.POST("", ordenesH.Crear)
			ordenes.GET("", ordenesH.Listar)
			ordenes.GET("/:id", ordenesH.Obtener)
			ordenes.PUT("/:id", ordenesH.Actualizar)
			ordenes.POST("/:id/reabrir", ordenesH.Reabrir)
			ordenes.POST("/:id/evidencias", ordenesH.AgregarEvidencia)
			ordenes.DELETE("/:id", ordenesH.Eliminar)
		}

		presupuestos := v1.Group("/presupuestos")
		{
			presupuestos.POST("", documentosH.CrearPresupuesto)
			presupuestos.GET("", documentosH.ListarPresupuestos)
			presupuestos.GET("/:id", documentosH.ObtenerPresupuesto)
			presupuestos.POST("/:id/enviar-email", documentosH.EnviarPresupuesto)
		}

		facturas := v1.Group("/facturas")
		{
			facturas.POST("", documentosH.CrearFactura)
			facturas.GET("", documentosH.ListarFacturas)
			facturas.GET("/:id", documentosH.ObtenerFactura)
			facturas.POST("/:id/enviar-email", documentosH.EnviarFactura)
		}

		v1.GET("/settings", settingsH.Obtener)
		v1.PUT("/settings", settingsH.Actualizar)

		cron := v1.Group("/cron")
		{
			cron.POST("/recordatorios", cronH.Recordatorios)
			cron.POST("/citas-vencidas", cronH.Reprogramar)
			cron.POST("/recordatorios-24h", cronH.Recordatorios24h)
			cron.POST("/mantenimiento", cronH.Mantenimiento)
			cron.POST("/resumen-diario", cronH.ResumenDiario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, sweeper
}

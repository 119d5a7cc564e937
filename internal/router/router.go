package router

import (
	"time"

	"cobranzas/internal/config"
	"cobranzas/internal/handler"
	"cobranzas/internal/infra"
	"cobranzas/internal/metrics"
	"cobranzas/internal/middleware"
	"cobranzas/internal/model"
	"cobranzas/internal/repository"
	"cobranzas/internal/service"
	"cobranzas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the router wires into handlers.
// Redis and Gatherer may be nil; Reloj defaults to the configured time zone.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Reloj    *service.Reloj
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler <- Service <- Repository <- DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	reloj := service.NewReloj(cfg.Location())
	if deps.Reloj != nil {
		reloj = *deps.Reloj
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Metrics))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(deps.Redis, cfg.RateLimit, time.Minute).Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	reporteRepo := repository.NewReporteRepository(deps.DB)
	pagoRepo := repository.NewPagoRepository(deps.DB)
	creditoRepo := repository.NewCreditoRepository(deps.DB)
	liquidacionRepo := repository.NewLiquidacionRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	// Payroll e-mails go through the Redis queue; the pool in cmd/server consumes it
	dispatcher := worker.NewDispatcher(deps.Redis)

	rutaSvc := service.NewRutaService(reporteRepo, pagoRepo, creditoRepo, reloj, deps.Metrics)
	accesoSvc := service.NewAccesoService(rutaSvc, infra.NewCircuitBreaker(infra.DefaultCBConfig()), deps.Metrics)
	liquidacionSvc := service.NewLiquidacionService(usuarioRepo, creditoRepo, pagoRepo, liquidacionRepo, dispatcher, cfg, reloj, deps.Metrics)

	// ── Handlers ─────────────────────────────────────────────────────────────
	rutaH := handler.NewRutaHandler(rutaSvc, accesoSvc)
	pagosH := handler.NewPagosHandler(rutaSvc, liquidacionSvc)
	liquidacionH := handler.NewLiquidacionHandler(liquidacionSvc, reloj)
	notificacionesH := handler.NewNotificacionesHandler(deps.Redis)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.Redis))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	soloCobrador := middleware.RequireRole(model.RolCobrador)
	soloAdmin := middleware.RequireRole(model.RolAdministrador)
	cualquierRol := middleware.RequireRole(model.RolCobrador, model.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		// The caller's own route; the cobrador id always comes from the token
		ruta := v1.Group("/ruta", soloCobrador)
		{
			ruta.POST("/iniciar", rutaH.Iniciar)
			ruta.POST("/finalizar", rutaH.Finalizar)
			ruta.GET("/estado", rutaH.Estado)
			ruta.GET("/acceso", rutaH.Acceso)
			ruta.POST("/pagos", middleware.RequireRutaActiva(accesoSvc), pagosH.Registrar)
		}

		cob := v1.Group("/cobradores/:id")
		{
			cob.GET("/ruta/estado", soloAdmin, rutaH.EstadoCobrador)
			cob.GET("/reportes", soloAdmin, rutaH.ListarReportes)
			// Readable by an administrador or by the cobrador for their own id
			cob.GET("/pagos/resumen", cualquierRol, pagosH.Resumen)
			cob.GET("/liquidacion/preview", cualquierRol, liquidacionH.Preview)
			cob.GET("/liquidacion/historial", cualquierRol, liquidacionH.Historial)
			cob.GET("/liquidacion/pdf", cualquierRol, liquidacionH.PDF)
			cob.POST("/liquidacion", soloAdmin, liquidacionH.Generar)
		}

		v1.GET("/reportes/:id", soloAdmin, rutaH.ObtenerReporte)
		v1.GET("/notificaciones/dlq", soloAdmin, notificacionesH.DLQ)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package handlers

import (
	"pvfacade/internal/logger"
	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live snapshot stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerFacadeRoutes(api)
		h.registerHistoryRoutes(api)
		h.registerAlertRoutes(api)
		h.registerExportRoutes(api)
	}
}

func (h *Handler) registerFacadeRoutes(api *gin.RouterGroup) {
	api.GET("/facades", h.listFacades)
	api.GET("/facades/:id", h.getFacade)

	realtime := api.Group("/realtime")
	{
		realtime.GET("/facades/:id", h.getRealtime)
		realtime.POST("/facades/:id/refresh", h.refreshFacade)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	api.GET("/temperatures", h.getTemperatures)
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("/current", h.getCurrentAlerts)
		alerts.GET("/events", h.getAlertEvents)
		alerts.GET("/anomalies", h.getAnomalies)
	}
}

func (h *Handler) registerExportRoutes(api *gin.RouterGroup) {
	exports := api.Group("/exports")
	{
		exports.GET("/csv/readings", h.exportReadingsCSV)
	}
}

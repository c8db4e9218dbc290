package handlers

import (
	"net/http"

	"hose_installation/internal/logger"
	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	origins  []string
}

// NewHandler constructs a new HTTP handler with dependencies. origins lists the
// browser origins allowed by CORS; empty allows any.
func NewHandler(services *service.Service, log *logger.Logger, origins ...string) *Handler {
	registerValidators()
	return &Handler{services: services, log: log, origins: origins}
}

// InitRoutes builds the Gin router with all routes registered, wrapped in CORS.
func (h *Handler) InitRoutes() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Browsers cannot set headers on a websocket upgrade, so the stream is public.
	router.GET("/ws/status", h.wsStatus)

	return h.cors().Handler(router)
}

func (h *Handler) cors() *cors.Cors {
	origins := h.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.identityMiddleware)
	{
		api.GET("/nfc/status", h.getStatus)
		api.GET("/tags/:position", h.getTag)
		h.registerCatalogRoutes(api)
		h.registerInstallationRoutes(api)
		h.registerAdminRoutes(api.Group("/admin", h.adminOnly))
	}
}

func (h *Handler) registerCatalogRoutes(api *gin.RouterGroup) {
	machines := api.Group("/machines")
	{
		machines.GET("", h.listMachines)
		machines.GET("/:id", h.getMachine)
		machines.GET("/:id/attachments", h.listMachineAttachments)
		machines.GET("/:id/valves", h.listValves)
		machines.GET("/:id/couplings", h.listCouplings)
		machines.GET("/:id/hydraulic-inputs", h.listHydraulicInputs)
	}
	attachments := api.Group("/attachments")
	{
		attachments.GET("/:id", h.getAttachment)
		attachments.GET("/:id/steps", h.listSteps)
	}
}

func (h *Handler) registerInstallationRoutes(api *gin.RouterGroup) {
	api.GET("/my-installations", h.listInstallations)
	api.POST("/my-installations", h.createInstallation)

	sessions := api.Group("/installations")
	{
		sessions.POST("", h.openSession)
		sessions.GET("/:session", h.getSession)
		sessions.DELETE("/:session", h.closeSession)
		sessions.POST("/:session/next", h.nextStep)
		sessions.POST("/:session/back", h.previousStep)
		sessions.POST("/:session/scan", h.submitScan)
		sessions.POST("/:session/scan/start", h.beginScan)
		sessions.POST("/:session/scan/cancel", h.cancelScan)
		sessions.POST("/:session/scan/error", h.reportScanError)
	}
}

func (h *Handler) registerAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/logs", h.getLogs)

	admin.GET("/users", h.listUsers)
	admin.PATCH("/users/:id/role", h.setUserRole)

	admin.POST("/machines", h.createMachine)
	admin.PUT("/machines/:id", h.updateMachine)
	admin.DELETE("/machines/:id", h.deleteMachine)

	admin.GET("/attachments", h.listAttachments)
	admin.POST("/attachments", h.createAttachment)
	admin.PUT("/attachments/:id", h.updateAttachment)
	admin.DELETE("/attachments/:id", h.deleteAttachment)
	admin.POST("/attachments/:id/machines/:machine", h.linkAttachment)
	admin.DELETE("/attachments/:id/machines/:machine", h.unlinkAttachment)

	admin.POST("/attachments/:id/steps", h.createStep)
	admin.PUT("/steps/:id", h.updateStep)
	admin.DELETE("/steps/:id", h.deleteStep)

	admin.POST("/machines/:id/valves", h.createValve)
	admin.PUT("/valves/:id", h.updateValve)
	admin.DELETE("/valves/:id", h.deleteValve)

	admin.POST("/machines/:id/couplings", h.createCoupling)
	admin.PUT("/couplings/:id", h.updateCoupling)
	admin.DELETE("/couplings/:id", h.deleteCoupling)

	admin.POST("/machines/:id/hydraulic-inputs", h.createHydraulicInput)
	admin.PUT("/hydraulic-inputs/:id", h.updateHydraulicInput)
	admin.DELETE("/hydraulic-inputs/:id", h.deleteHydraulicInput)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

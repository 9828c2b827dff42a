package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/auth"
	"github.com/campuskul/crm-console-api/internal/config"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/internal/usecase"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

// Server hosts the console API.
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	service     *usecase.CrmService
	authManager *auth.Manager
	uploadsDir  string
	ready       func(ctx context.Context) error
}

// NewServer wires the router. ready is polled by the readiness probe;
// nil means always ready.
func NewServer(cfg *config.Config, service *usecase.CrmService, authManager *auth.Manager, ready func(ctx context.Context) error) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:      gin.New(),
		service:     service,
		authManager: authManager,
		uploadsDir:  cfg.Uploads.Dir,
		ready:       ready,
	}
	s.router.Use(gin.Recovery(), requestScope(), requestLogger())
	s.registerRoutes(cfg)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(cfg *config.Config) {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)
	if cfg.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	s.router.Static("/uploads", cfg.Uploads.Dir)
	s.router.GET("/console/*path", gateHandler(s.authManager))

	api := s.router.Group("/api")

	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/register", s.handleRegister)

	authed := api.Group("", authenticate(s.authManager))
	authed.POST("/auth/logout", s.handleLogout)
	authed.GET("/auth/my-profile", s.handleMyProfile)
	authed.POST("/auth/my-profile/update", s.handleUpdateMyProfile)

	authed.GET("/get-active-stages", s.handleActiveStages)
	authed.GET("/get-active-employees", s.handleActiveEmployees)

	admin := authed.Group("/admin", requireRole(session.RoleOwner))
	{
		admin.GET("/stage/get-all", s.handleListStages)
		admin.POST("/stage/add", s.handleCreateStage)
		admin.POST("/stage/update/:id", s.handleUpdateStage)
		admin.POST("/stage/delete/:id", s.handleDeleteStage)
		admin.POST("/stage/change-status/:id", s.handleToggleStage)
		admin.POST("/stage/reorder", s.handleReorderStages)

		admin.GET("/employee/get-all", s.handleListEmployees)
		admin.GET("/employee/:id", s.handleGetEmployee)
		admin.POST("/employee/add", s.handleCreateEmployee)
		admin.POST("/employee/update/:id", s.handleUpdateEmployee)
		admin.POST("/employee/delete/:id", s.handleDeleteEmployee)
		admin.POST("/employee/change-status/:id", s.handleToggleEmployee)

		admin.GET("/lead/get-all-leads", s.handleListLeads)
		admin.GET("/lead/export", s.handleExportLeads)
		admin.POST("/lead/delete/:id", s.handleDeleteLead)
		admin.POST("/lead/import", s.handleImportLeads)

		admin.GET("/organization/get-organization/:id", s.handleGetOrganization)
		admin.POST("/organization/update/:id", s.handleUpdateOrganization)
	}

	lead := authed.Group("/lead")
	{
		lead.POST("/add", s.handleCreateLead)
		lead.POST("/update/:id", s.handleUpdateLead)
		lead.POST("/change-stage/:id", s.handleChangeLeadStage)
		lead.GET("/employee/get-assigned-leads",
			requireRole(session.RoleEmployee), s.handleListLeads)
		lead.GET("/:id", s.handleGetLead)
		lead.GET("/:id/activities", s.handleLeadActivities)
	}

	followUp := authed.Group("/follow-up")
	{
		followUp.GET("/get-all", s.handleListFollowUps)
		followUp.GET("/get-all-leads", s.handleLeadRefs)
		followUp.POST("/add", s.handleCreateFollowUp)
		followUp.POST("/mark-as-done", s.handleCompleteFollowUp)
		followUp.GET("/:id", s.handleGetFollowUp)
	}

	dashboard := authed.Group("/dashboard")
	{
		dashboard.GET("/admin", requireRole(session.RoleOwner), s.handleOwnerDashboard)
		dashboard.GET("/employee", s.handleEmployeeDashboard)
		dashboard.GET("/followup-counts", s.handleFollowUpCounts)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

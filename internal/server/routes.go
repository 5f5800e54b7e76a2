package server

import (
	"sentinel/internal/analysis"
	"sentinel/internal/handlers"
	"sentinel/internal/handlers/api"
	"sentinel/internal/metrics"
	"sentinel/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(svc *analysis.Service) {
	// Initialize middleware
	modelMiddleware := middleware.NewModelMiddleware(svc)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(svc, s.Cfg)
	probeHandler := handlers.NewProbeHandler(svc)
	apiHandler := api.NewAnalysisHandler(svc, s.Cfg)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", metrics.Handler())

	// JSON API
	v1 := s.App.Group("/api/v1")
	v1.Get("/config", apiHandler.Config)
	v1.Post("/analyze", apiHandler.Analyze)
	v1.Post("/batch", modelMiddleware.RequireModelJSON, apiHandler.Batch)
	v1.Get("/reports/:id", apiHandler.Report)
	v1.Delete("/reports/:id", apiHandler.DeleteReport)

	// Dashboard
	s.App.Get("/", dashboardHandler.Index)
	s.App.Post("/analyze", dashboardHandler.Analyze)
	s.App.Post("/batch", modelMiddleware.RequireModel, dashboardHandler.Batch)
	s.App.Get("/reports/:file", dashboardHandler.Download)
}

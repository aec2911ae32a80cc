package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all API endpoints
func (app *App) registerRoutes() {
	// Health check endpoint
	huma.Register(app.api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping health check",
		Description: "Check if the exporter is running",
		Tags:        []string{"health"},
	}, app.handlePing)

	// Weather gauges, fetched fresh on every request
	app.router.GET(app.cfg.Server.MetricsPath, app.handleMetrics)

	if app.telemetry != nil && app.cfg.Server.TelemetryPath != "" {
		app.router.GET(app.cfg.Server.TelemetryPath, gin.WrapH(app.telemetry.Handler()))
	}
}

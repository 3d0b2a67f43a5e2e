// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qeme/sentinel-lite/restapi/modules/auth"
	"github.com/qeme/sentinel-lite/restapi/modules/reports"
	"github.com/qeme/sentinel-lite/restapi/modules/scan"
	"github.com/qeme/sentinel-lite/restapi/modules/status"
	"go.uber.org/zap"
)

// Deps are the services the routes delegate to.
type Deps struct {
	Checker  status.Checker
	Scanner  scan.Scanner
	Reports  *reports.Store
	APIToken string
	Logger   *zap.Logger
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, deps Deps, schema graphql.Schema) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/health", status.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", auth.RequireAPIToken(deps.APIToken))

	api.Post("/graphql", GraphQLHandler(schema))

	api.Get("/regulatory-status", status.GetRegulatoryStatus(deps.Checker))

	api.Get("/sectors", scan.GetSectors)
	api.Get("/compliance-levels", scan.GetComplianceLevels)
	api.Post("/quick-scan", scan.QuickScan(deps.Scanner))
	api.Post("/full-scan", scan.FullScan(deps.Scanner, deps.Reports, logger))
	api.Get("/download-report/:filename", reports.DownloadReport(deps.Reports))

	logger.Debug("API routes initialized successfully")
}

// Package api builds the HTTP server of the regulatory watch.
package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/graphql-go/graphql"
	"github.com/qeme/sentinel-lite/internal/metrics"
	"github.com/qeme/sentinel-lite/restapi"
	"github.com/qeme/sentinel-lite/restapi/modules/auth"
	"github.com/qeme/sentinel-lite/util"
)

// ServerConfig holds the HTTP settings.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	APIToken       string
	MaxJSONSizeKB  int
}

// LoadServerConfig reads the HTTP settings from the environment.
func LoadServerConfig() (ServerConfig, error) {
	maxKB, err := util.GetEnvInt("MAX_JSON_SIZE_KB", 100)
	if err != nil {
		return ServerConfig{}, err
	}
	if maxKB <= 0 {
		return ServerConfig{}, errors.New("MAX_JSON_SIZE_KB must be positive")
	}

	return ServerConfig{
		Port:           util.GetEnvDefault("PORT", "3000"),
		AllowedOrigins: util.SplitList(util.GetEnvDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		APIToken:       util.GetEnvDefault("API_TOKEN", ""),
		MaxJSONSizeKB:  maxKB,
	}, nil
}

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(cfg ServerConfig, deps restapi.Deps, schema graphql.Schema) *fiber.App {
	maxBytes := cfg.MaxJSONSizeKB * 1024
	deps.APIToken = cfg.APIToken

	app := fiber.New(fiber.Config{
		AppName:      "qeme-sentinel-lite",
		BodyLimit:    maxBytes,
		ReadTimeout:  60 * time.Second,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(auth.SecurityHeaders)
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, " + auth.TokenHeader,
		AllowMethods: "GET, POST, HEAD, OPTIONS",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path} ${locals:graphql_op}\n",
	}))
	// after logger, which resolves chain errors itself
	app.Use(recordRequest)

	restapi.SetupRoutes(app, deps, schema)

	return app
}

// unmatchedRoute labels requests no route handled.
const unmatchedRoute = "unmatched"

// recordRequest counts every request by method, route template and final status.
func recordRequest(c *fiber.Ctx) error {
	err := c.Next()

	code := c.Response().StatusCode()
	route := c.Route().Path
	if err != nil {
		code = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			if code == fiber.StatusNotFound {
				route = unmatchedRoute
			}
		}
	}
	metrics.RequestCount.WithLabelValues(c.Method(), route, strconv.Itoa(code)).Inc()
	return err
}

// errorHandler renders every unhandled error as {"error": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	switch code {
	case fiber.StatusBadRequest:
		msg = "Bad Request"
	case fiber.StatusUnauthorized:
		msg = "Unauthorized"
	case fiber.StatusNotFound:
		msg = "Not Found"
	case fiber.StatusRequestEntityTooLarge:
		msg = "Payload too large"
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// Package server assembles the echo instance: global middleware, the root and
// health endpoints, and the patient and push routes.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/fhir-api/internal/config"
	"github.com/ehr/fhir-api/internal/domain/patient"
	"github.com/ehr/fhir-api/internal/domain/push"
	"github.com/ehr/fhir-api/internal/platform/middleware"
	"github.com/ehr/fhir-api/internal/platform/validation"
	"github.com/ehr/fhir-api/internal/store"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// New returns a ready-to-start echo instance serving data and forwarding
// pushes through gw.
func New(cfg *config.Config, logger zerolog.Logger, data *store.Collections, gw push.Pusher) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Welcome to the FHIR API",
		})
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	})

	api := e.Group("")

	patientSvc := patient.NewService(data)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	push.NewHandler(gw).RegisterRoutes(api)

	return e
}

package main

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/questlingo/backend/internal/handlers"
	"github.com/questlingo/backend/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// routerDeps are the handlers and settings the API router is built from
type routerDeps struct {
	logger         *zap.Logger
	verifier       *middleware.TokenVerifier
	allowedOrigins []string
	ratePerMinute  int
	swaggerURL     string

	health   *handlers.HealthHandler
	lessons  *handlers.LessonHandler
	sessions *handlers.SessionHandler
	profile  *handlers.ProfileHandler
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(d.logger))
	r.Use(middleware.RecoveryMiddleware(d.logger))
	r.Use(middleware.CORSMiddleware(d.allowedOrigins))
	if d.ratePerMinute > 0 {
		r.Use(httprate.LimitByIP(d.ratePerMinute, time.Minute))
	}
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	d.health.RegisterRoutes(r)

	if d.swaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(d.swaggerURL)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(d.verifier))
		d.lessons.RegisterRoutes(r)
		d.sessions.RegisterRoutes(r)
		d.profile.RegisterRoutes(r)
	})

	return r
}

func swaggerURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/swagger/doc.json", port)
}

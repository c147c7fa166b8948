package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flightdeals/internal/handlers"
	"flightdeals/internal/handlers/api"
	"flightdeals/internal/middleware"
)

// History is the run history backing the API. It is nil when disabled.
type History interface {
	handlers.Pinger
	api.RunHistory
	api.DealHistory
}

// Deps are the collaborators the routes are served from.
type Deps struct {
	History History
	Trigger api.RunTrigger
	Auth    *middleware.BearerAuth
}

// RegisterRoutes registers all application routes. Runs triggered over the
// API are bound to ctx.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) {
	var (
		pinger      handlers.Pinger
		runHistory  api.RunHistory
		dealHistory api.DealHistory
	)
	if deps.History != nil {
		pinger = deps.History
		runHistory = deps.History
		dealHistory = deps.History
	}

	probeHandler := handlers.NewProbeHandler(pinger)
	runHandler := api.NewRunHandler(ctx, runHistory, deps.Trigger)
	dealHandler := api.NewDealHandler(dealHistory)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON API
	apiGroup := s.App.Group("/api", s.apiLimiter())
	apiGroup.Get("/runs", runHandler.List)
	apiGroup.Get("/runs/:id", runHandler.Get)
	apiGroup.Get("/deals", dealHandler.List)

	if deps.Auth != nil {
		apiGroup.Post("/runs", deps.Auth.RequireBearer, runHandler.Trigger)
	} else {
		apiGroup.Post("/runs", runHandler.Trigger)
	}
}

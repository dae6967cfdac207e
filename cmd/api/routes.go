package main

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	// Router
	router.NotFound(app.notFoundResponse)
	router.MethodNotAllowed(app.methodNotAllowedRequest)

	// Middleware
	router.Use(app.metrics)
	router.Use(app.recoverPanic)
	router.Use(app.enableCORS)
	router.Use(app.rateLimit)
	router.Use(app.authenticate)

	// Healthcheck
	router.Get("/v1/healthcheck", app.HealthCheck)
	router.Method(http.MethodGet, "/v1/metrics", expvar.Handler())

	// Admin Endpoints
	router.Post("/v1/admin/login", app.LoginAdmin)

	// Match Endpoints
	router.Route("/v1/match", func(router chi.Router) {
		router.With(app.requireAdmin).Post("/", app.InsertMatch)
		router.Get("/", app.GetAllMatches)
		router.Get("/{id}", app.GetMatch)
		router.Get("/{id}/scorecard", app.GetScorecard)

		router.With(app.requireAdmin).Post("/{id}/lock", app.AcquireMatchLock)
		router.With(app.requireAdmin).Delete("/{id}/lock", app.ReleaseMatchLock)

		router.Get("/score/{id}", app.ScoreMatch)
		router.Get("/view/{id}", app.WatchMatch)
	})

	// Tournament Endpoints
	router.Route("/v1/tournament", func(router chi.Router) {
		router.Get("/{id}", app.GetTournament)
		router.Get("/{id}/standings", app.GetStandings)

		router.With(app.requireAdmin).Post("/{id}/setup", app.SetupTournament)
		router.With(app.requireAdmin).Post("/{id}/fixture/{fixtureId}/start", app.StartFixture)
	})

	return router
}

package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/teamideas/idea-portal/internal/dashboard"
	"github.com/teamideas/idea-portal/internal/guard"
	"github.com/teamideas/idea-portal/internal/idea"
	"github.com/teamideas/idea-portal/internal/session"
	"github.com/teamideas/idea-portal/internal/transport/middleware"
	"github.com/teamideas/idea-portal/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, guardMW *guard.Middleware, sessionHandler *session.Handler, ideaHandler *idea.Handler, dashboardHandler *dashboard.Handler, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Server-rendered pages. Guards redirect rather than answer JSON.
	router.Group(func(pr chi.Router) {
		pr.With(guardMW.Page(guard.Allow)).Get(guard.SignInPath, dashboardHandler.SignInPage)
		pr.With(guardMW.Page(guard.RequireAuth)).Get(guard.DashboardPath, dashboardHandler.SubmissionPage)
		pr.With(guardMW.Page(guard.Chain(guard.RequireAuth, guard.RequireElevated))).Get(guard.InternalDashboardPath, dashboardHandler.ReviewerPage)
	})

	// Logout lives outside the API prefix so a plain form post can hit it.
	router.Post("/auth/logout", sessionHandler.Logout)

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Sign-in is public: it mints the session cookie itself. Logout is
		// public too since it only ever clears state.
		r.Post("/auth/google", sessionHandler.Login)
		r.Post("/auth/logout", sessionHandler.Logout)

		// Authenticated JSON surface
		r.Group(func(ar chi.Router) {
			ar.Use(guardMW.API(guard.RequireAuth))

			ar.Get("/users/me", sessionHandler.CurrentUser)

			ar.Route("/draft", func(dr chi.Router) {
				dr.Get("/", ideaHandler.GetDraft)
				dr.Put("/title", ideaHandler.SetTitle)
				dr.Put("/description", ideaHandler.SetDescription)
				dr.Post("/step", ideaHandler.Step)
				dr.Post("/files", ideaHandler.UploadFiles)
				dr.Delete("/files/{index}", ideaHandler.RemoveFile)
				dr.Post("/submit", ideaHandler.Submit)
			})
		})

		// Reviewer-only JSON surface
		r.Group(func(rr chi.Router) {
			rr.Use(guardMW.API(guard.Chain(guard.RequireAuth, guard.RequireElevated)))

			rr.Get("/ideas/grouped", dashboardHandler.GroupedIdeas)
			rr.Post("/ideas/groups/{name}/toggle", dashboardHandler.ToggleGroup)
		})
	})
}

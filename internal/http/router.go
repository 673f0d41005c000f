package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brightfold/portal/internal/http/auth"
	"github.com/brightfold/portal/internal/http/checkout"
	"github.com/brightfold/portal/internal/http/document"
	"github.com/brightfold/portal/internal/http/export"
	"github.com/brightfold/portal/internal/http/payment"
	"github.com/brightfold/portal/internal/http/project"
	"github.com/brightfold/portal/internal/http/settlement"
	"github.com/brightfold/portal/internal/http/webhook"
	"github.com/brightfold/portal/internal/session"
)

func New(
	sessions *session.Service,
	allowedOrigins []string,
	authV1 *auth.Handler,
	webhookV1 *webhook.Handler,
	checkoutV1 *checkout.Handler,
	paymentsV1 *payment.Handler,
	documentsV1 *document.Handler,
	projectsV1 *project.Handler,
	settlementsV1 *settlement.Handler,
	statementsV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		// The gateway signs its own requests; no session required.
		r.Route("/webhooks", webhookV1.Routes)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			checkoutV1.Routes(r)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(auth.RequireRole(sessions, session.RoleAdmin))
			paymentsV1.Routes(r)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(auth.RequireRole(sessions, session.RoleAdmin))
			documentsV1.Routes(r)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(auth.RequireRole(sessions, session.RoleAdmin))
			projectsV1.Routes(r)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Use(auth.RequireRole(sessions, session.RoleAdmin))
			settlementsV1.Routes(r)
		})

		r.Route("/statements", func(r chi.Router) {
			r.Use(auth.RequireRole(sessions, session.RoleAdmin))
			statementsV1.Routes(r)
		})
	})

	return router
}

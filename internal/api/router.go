package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mw "github.com/kiranshivaraju/rfpmarket/internal/api/middleware"
	"github.com/kiranshivaraju/rfpmarket/internal/api/response"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const defaultMaxBodyBytes = 10 << 20

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth         *mw.Auth
	RateLimit    *mw.RateLimit
	MaxBodyBytes int64

	HealthHandler           http.HandlerFunc
	ProcessAdoptionHandler  http.HandlerFunc
	EvaluateAdoptionHandler http.HandlerFunc
	ListAuditsHandler       http.HandlerFunc
	GetAuditHandler         http.HandlerFunc
	AnalyzeProposalHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(chimw.RequestSize(maxBody))

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/analyze-proposal", orNotImplemented(deps.AnalyzeProposalHandler))

		// Consultant routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleConsultant))

			r.Post("/api/v1/process-adoption-csv", orNotImplemented(deps.ProcessAdoptionHandler))
			r.Post("/api/v1/evaluate-adoption", orNotImplemented(deps.EvaluateAdoptionHandler))
			r.Get("/api/v1/audits", orNotImplemented(deps.ListAuditsHandler))
			r.Get("/api/v1/audits/{auditID}", orNotImplemented(deps.GetAuditHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}

// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/models"
)

// OutreachService is the operation surface the HTTP layer exposes.
// *outreach.Service satisfies it.
type OutreachService interface {
	SaveProspect(ctx context.Context, p *models.Prospect) (*models.Prospect, error)
	GetProspect(ctx context.Context, ownerID, id string) (*models.Prospect, error)
	ListProspects(ctx context.Context, ownerID string) ([]models.Prospect, error)
	DeleteProspect(ctx context.Context, ownerID, id string) error
	RequestDraft(ctx context.Context, ownerID, prospectID, offeringID string) (*models.Prospect, error)
	MarkSent(ctx context.Context, ownerID, id string) (*models.Prospect, error)
	ResetOutreach(ctx context.Context, ownerID, id string) (*models.Prospect, error)
	HandleEngagement(ctx context.Context, prospectID string, kind models.EngagementKind) (*models.Prospect, error)
	ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error)
}

// EventSource yields an owner's live prospect change stream.
type EventSource interface {
	Subscribe(ctx context.Context, ownerID string) (<-chan models.ProspectEvent, error)
}

// Server wires the outreach service and event channel to HTTP routes for
// the creator console.
type Server struct {
	svc            OutreachService
	events         EventSource
	logger         logger.Logger
	allowedOrigins []string
}

func New(svc OutreachService, events EventSource, allowedOrigins []string, log logger.Logger) *Server {
	return &Server{
		svc:            svc,
		events:         events,
		logger:         log.WithFields(map[string]interface{}{"component": "http"}),
		allowedOrigins: allowedOrigins,
	}
}

// Router builds the chi router with CORS, recovery and metrics
// middleware and every API route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/prospects", s.handleCreateProspect)
		r.Get("/prospects", s.handleListProspects)
		r.Get("/prospects/{id}", s.handleGetProspect)
		r.Put("/prospects/{id}", s.handleUpdateProspect)
		r.Delete("/prospects/{id}", s.handleDeleteProspect)
		r.Post("/prospects/{id}/draft", s.handleRequestDraft)
		r.Post("/prospects/{id}/sent", s.handleMarkSent)
		r.Post("/prospects/{id}/reset", s.handleReset)
		r.Get("/offerings", s.handleListOfferings)
		r.Post("/callbacks/engagement", s.handleEngagementCallback)
		r.Get("/events", s.handleEvents)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

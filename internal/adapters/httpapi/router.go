// Package httpapi exposes the shipment operations as the versioned
// REST API consumed by the platform frontend.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/application/shipments"
	"github.com/accelefreight/af-server/internal/infrastructure/config"
)

// Server holds the handler dependencies.
type Server struct {
	svc    *shipments.Service
	auth   Authenticator
	logger *zap.Logger
	cfg    *config.ServerConfig
}

// NewServer creates the HTTP server facade.
func NewServer(svc *shipments.Service, auth Authenticator, logger *zap.Logger, cfg *config.ServerConfig) *Server {
	return &Server{svc: svc, auth: auth, logger: logger, cfg: cfg}
}

// Router builds the route tree under /api/v2.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleHealth)

	r.Route("/api/v2", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/shipments", func(r chi.Router) {
				r.Get("/stats", s.handleStats)
				r.Get("/search", s.handleSearch)
				r.Get("/file-tags", s.handleFileTags)
				r.Get("/", s.handleList)

				r.With(s.requireAFUAdmin).Post("/", s.handleCreateManual)
				r.With(s.requireAFU).Post("/parse-bl", s.handleParseBL)
				r.With(s.requireAFU).Post("/create-from-bl", s.handleCreateFromBL)

				r.Route("/{shipmentID}", func(r chi.Router) {
					r.Get("/", s.handleGet)
					r.With(s.requireAFU).Delete("/", s.handleDelete)

					r.Get("/status-history", s.handleStatusHistory)
					r.With(s.requireAFU).Patch("/status", s.handleUpdateStatus)
					r.With(s.requireAFU).Patch("/invoiced", s.handleSetInvoiced)
					r.Patch("/exception", s.handleSetException)
					r.With(s.requireAFU).Patch("/company", s.handleReassignCompany)
					r.With(s.requireAFU).Patch("/bl", s.handleUpdateFromBL)
					r.With(s.requireAFU).Patch("/parties", s.handleUpdateParties)

					r.Get("/tasks", s.handleTasks)
					r.Patch("/tasks/{taskID}", s.handlePatchTask)

					r.Get("/files", s.handleListFiles)
					r.Post("/files", s.handleUploadFile)
					r.Patch("/files/{fileID}", s.handleUpdateFile)
					r.With(s.requireAFU).Delete("/files/{fileID}", s.handleDeleteFile)
					r.Get("/files/{fileID}/download", s.handleDownloadFile)

					r.Get("/route-nodes", s.handleRouteNodes)
					r.Put("/route-nodes", s.handleSaveRouteNodes)
					r.Patch("/route-nodes/{sequence}", s.handleRouteNodeTiming)
				})
			})

			r.Get("/geography/ports", s.handlePorts)
			r.Get("/companies", s.handleCompanies)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "OK",
		"version": "2.0.0",
		"service": "af-server",
	})
}

// Package httpapi is the REST front end: field validation, routing, and
// JSON rendering. All domain work happens in the planner, the memory
// facade, and the catalog client.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/nutrigenie-ai/nutrigenie/pkg/catalog"
	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
	"github.com/nutrigenie-ai/nutrigenie/pkg/planner"
)

// PlanService is the slice of the planner the API needs.
type PlanService interface {
	CreateProfileAndPlan(ctx context.Context, input memory.ProfileInput) (*planner.PlanResult, error)
}

// CatalogService is the slice of the catalog client the API needs.
type CatalogService interface {
	Initialize(ctx context.Context) (*catalog.Session, error)
	ResolvePlan(ctx context.Context, session *catalog.Session, plan *db.MealPlan, topN int) []catalog.Suggestion
}

type Server struct {
	logger  *log.Logger
	memory  *memory.Memory
	plans   PlanService
	catalog CatalogService

	// session is established lazily on first use when the startup
	// handshake failed. The mutex guards the lazy init across handler
	// goroutines; the API still serves one resolution flow at a time.
	sessionMu sync.Mutex
	session   *catalog.Session
}

func NewServer(logger *log.Logger, mem *memory.Memory, plans PlanService, catalogService CatalogService, session *catalog.Session) *Server {
	return &Server{
		logger:  logger,
		memory:  mem,
		plans:   plans,
		catalog: catalogService,
		session: session,
	}
}

// Router builds the chi mux with CORS applied.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
	}).Handler)

	router.Get("/api/health", s.handleHealth)
	router.Post("/api/create-user", s.handleCreateUser)
	router.Get("/api/user/{userID}", s.handleGetUser)
	router.Get("/api/user/{userID}/active-plan", s.handleActivePlan)
	router.Get("/api/meal-plan/{planID}", s.handleGetMealPlan)
	router.Post("/api/meal-plan/{planID}/products", s.handleResolveProducts)

	return router
}

// ensureSession returns the catalog session, performing the lazy handshake
// under the mutex when the startup one failed.
func (s *Server) ensureSession(ctx context.Context) (*catalog.Session, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if s.session != nil {
		return s.session, nil
	}
	session, err := s.catalog.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, kind string) {
	body := map[string]string{"error": message}
	if kind != "" {
		body["error_type"] = kind
	}
	s.writeJSON(w, status, body)
}

package server

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"business-directory/internal/common/config"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/observability"
	"business-directory/internal/models"
	"business-directory/internal/panel"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Directory is the company store the HTTP surface works against. Satisfied by *directory.Service.
type Directory interface {
	panel.Gateway
	panel.Searcher
	panel.BookingSource
	Snapshot(ctx context.Context) ([]byte, error)
	List(ctx context.Context) ([]models.BusinessEntity, error)
	Get(ctx context.Context, id int64) (*models.BusinessEntity, error)
	Pending(ctx context.Context) ([]models.BusinessEntity, error)
	Counts(ctx context.Context) (models.ModerationCounts, error)
	Search(ctx context.Context, query string) ([]models.BusinessEntity, error)
	Moderate(ctx context.Context, id int64, status models.ModerationStatus, comment string, moderatorID *int64) (*models.BusinessEntity, error)
	ModerationHistory(ctx context.Context, id int64) ([]models.ModerationRecord, error)
	AutoCheck(ctx context.Context, id int64) (models.AutoCheckResult, error)
}

// Pinger is a dependency probed by /health/db.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config        config.ServerConfig
	Panel         config.PanelConfig
	AppName       string
	Directory     Directory
	Templates     *panel.TemplateSet
	Sessions      *SessionStore
	Checks        map[string]Pinger
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	cfg       config.ServerConfig
	appName   string
	dir       Directory
	templates *panel.TemplateSet
	sessions  *SessionStore
	checks    map[string]Pinger
	obs       *observability.Observability
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	ready     atomic.Bool
	router    *mux.Router
}

// New wires the routes. When deps.Sessions is nil a store is built from deps.Panel and the directory.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "http"})

	cfg := deps.Config
	cfg.AdminPath = "/" + strings.Trim(cfg.AdminPath, "/")
	if cfg.AdminPath == "/" {
		cfg.AdminPath = "/admin"
	}
	cfg.APIPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = "/api"
	}

	s := &Server{
		cfg:       cfg,
		appName:   deps.AppName,
		dir:       deps.Directory,
		templates: deps.Templates,
		sessions:  deps.Sessions,
		checks:    deps.Checks,
		obs:       deps.Observability,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
	}
	if s.appName == "" {
		s.appName = "Business Directory"
	}
	if s.sessions == nil {
		s.sessions = NewSessionStore(config.GetDuration(cfg.SessionTTL), s.routerFactory(deps.Panel), log)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// SetReady flips the /ready probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// routerFactory builds a panel router seeded with the current directory snapshot.
func (s *Server) routerFactory(pc config.PanelConfig) RouterFactory {
	return func(ctx context.Context) (*panel.Router, error) {
		payload, err := s.dir.Snapshot(ctx)
		if err != nil {
			s.logger.Warn("snapshot unavailable, opening empty dashboard", map[string]interface{}{"error": err.Error()})
			payload = nil
		}
		return panel.NewRouter(payload, panel.Options{
			WatchdogTimeout:        config.GetDuration(pc.WatchdogTimeout),
			EventLogCapacity:       pc.EventLogCapacity,
			NewBookingsPlaceholder: pc.NewBookingsPlaceholder,
			Templates:              s.templates,
			Gateway:                s.dir,
			Search:                 s.dir,
			Bookings:               s.dir,
			Observability:          s.obs,
			Logger:                 s.logger,
		})
	}
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(observeMiddleware(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/db", s.handleHealthDB).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(s.cfg.APIPrefix).Subrouter()
	api.Use(newCORSMiddleware(s.cfg.CORSOrigins).Handler)
	if s.cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(newRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, s.errors).Handler)
	}
	api.HandleFunc("/companies", s.handleListCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", s.handleCreateCompany).Methods(http.MethodPost)
	api.HandleFunc("/companies/{id:[0-9]+}", s.handleGetCompany).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id:[0-9]+}", s.handleUpdateCompany).Methods(http.MethodPut)
	api.HandleFunc("/companies/{id:[0-9]+}", s.handleDeleteCompany).Methods(http.MethodDelete)
	api.HandleFunc("/companies/{id:[0-9]+}/moderation", s.handleModerateCompany).Methods(http.MethodPut)
	api.HandleFunc("/moderation/pending", s.handlePendingCompanies).Methods(http.MethodGet)
	api.HandleFunc("/moderation/counts", s.handleModerationCounts).Methods(http.MethodGet)
	api.HandleFunc("/moderation/companies/{id:[0-9]+}/records", s.handleModerationHistory).Methods(http.MethodGet)
	api.HandleFunc("/moderation/auto-check/{id:[0-9]+}", s.handleAutoCheck).Methods(http.MethodPost)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	admin := s.cfg.AdminPath
	r.Handle(admin, http.RedirectHandler(admin+"/", http.StatusMovedPermanently)).Methods(http.MethodGet)
	r.HandleFunc(admin+"/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc(admin+"/companies", s.handleSubmitForm).Methods(http.MethodPost)
	r.HandleFunc(admin+"/companies/new", s.handleNewForm).Methods(http.MethodGet)
	r.HandleFunc(admin+"/companies/{id:[0-9]+}", s.handleSelect).Methods(http.MethodGet)
	r.HandleFunc(admin+"/companies/{id:[0-9]+}/edit", s.handleEditForm).Methods(http.MethodGet)
	r.HandleFunc(admin+"/companies/{id:[0-9]+}/{action:approve|reject|delete}", s.handleEntityAction).Methods(http.MethodPost)

	s.router = r
}

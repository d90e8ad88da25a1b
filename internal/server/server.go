// Package server wires the HTTP surface: the Huma REST API, the Datastar
// panel SSE handlers, static assets and the demo viewer page.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-legend/internal/api"
	"github.com/joeblew999/plat-legend/internal/api/panel"
	"github.com/joeblew999/plat-legend/internal/db"
	"github.com/joeblew999/plat-legend/internal/humastar"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/logx"
	"github.com/joeblew999/plat-legend/internal/preview"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/templates"
	"github.com/joeblew999/plat-legend/internal/web"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and templates
	Logger  *log.Logger
}

// Server is the legend HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	registry *service.Registry
	renderer *templates.Renderer
	log      *log.Logger
}

// New creates a legend server. Missing pieces degrade instead of failing:
// without a reachable DuckDB file table-derived legends stay empty, and
// without a web directory the Datastar surface is not registered.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-legend API", "1.0.0")
	humaConfig.Info.Description = "Self-updating map legend engine: layer catalog, legend derivation, preview rendering, and live panel sessions."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	// Hypermedia Link headers on every response
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		log:     cfg.Logger,
	}

	// DuckDB backs table-derived legends. Optional.
	if conn, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "legend"}); err == nil {
		s.db = conn
		if err := db.EnsureDemo(conn); err != nil {
			s.log.Warn("demo table unavailable", "err", err)
		}
	} else {
		s.log.Warn("duckdb unavailable, table-derived legends disabled", "err", err)
	}

	// Services
	sources := service.NewSourceService(cfg.DataDir)
	layers := service.NewLayerService(cfg.DataDir)
	previewRenderer := preview.NewRenderer()
	s.services = &api.Services{
		Layers:   layers,
		Sources:  sources,
		Previews: service.NewPreviewService(cfg.DataDir, previewRenderer),
		Builder:  service.NewSourceBuilder(sources, s.db),
		Renderer: previewRenderer,
		Bus:      service.NewEventBus(),
	}

	// An empty catalog gets the demo layers so the viewer shows something.
	if layers.Empty() {
		if err := sources.SeedDemo(); err != nil {
			s.log.Warn("demo sources not seeded", "err", err)
		}
		if err := layers.SeedDemo(); err != nil {
			s.log.Warn("demo layers not seeded", "err", err)
		}
	}

	// Fragment templates back the Datastar handlers.
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			s.renderer = r
		} else {
			s.log.Warn("fragment templates unavailable, panel routes disabled", "dir", fragmentsDir, "err", err)
		}
	}

	// Session registry binds browser tabs to live panels.
	if s.renderer != nil {
		registry, err := service.NewRegistry(service.RegistryConfig{
			Store:    layers,
			Builder:  s.services.Builder,
			Bus:      s.services.Bus,
			Renderer: previewRenderer,
			NewView: func(sessionID string) legend.View {
				return web.NewView(s.renderer, web.Config{})
			},
			Logger: s.log,
		})
		if err != nil {
			s.log.Error("session registry rejected", "err", err)
		} else {
			s.registry = registry
		}
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler. The server logger rides the request
// context so handlers can report faults with the request they belong to.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r.WithContext(logx.WithLogger(r.Context(), s.log)))
}

// Start launches the background work: session resync and idle eviction.
// Returns immediately; the work stops when ctx is done.
func (s *Server) Start(ctx context.Context) {
	if s.registry != nil {
		go s.registry.Start(ctx)
	}
}

// OpenAPI returns the assembled spec, for export.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Registry exposes the session registry; nil when the Datastar surface is
// disabled.
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) routes() {
	// REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))
	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Datastar SSE routes
	if s.renderer != nil && s.registry != nil {
		panel.NewSessionHandler(s.registry, s.services.Layers, s.renderer).RegisterRoutes(s.humaAPI)
		panel.NewLayerHandler(s.services.Layers, s.renderer).RegisterRoutes(s.humaAPI)
		panel.NewEventHandler(s.services.Layers, s.services.Bus, s.renderer).RegisterRoutes(s.humaAPI)
	}

	// Hypermedia links and Datastar extensions need the full route table.
	humastar.AutoLinks(s.humaAPI)
	s.humaAPI.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(panel.PanelSignals{}), true, "PanelSignals")
	humastar.InjectExtensions(s.humaAPI, []humastar.DatastarSchemaConfig{
		{
			Type:   reflect.TypeOf(panel.PanelSignals{}),
			Prefix: "panel",
			Stream: "/api/v1/panel/sessions/{id}/stream",
		},
	})

	// Static files and exported previews
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	s.mux.Handle("/previews/", http.StripPrefix("/previews/", s.handlePreviews(s.services.Previews.PreviewsDir())))

	// Page routes
	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range humastar.RootLinks() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-legend",
		"version": "0.1.0",
		"status":  "running",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	http.ServeFile(w, r, templatePath)
}

// handlePreviews serves exported preview PNGs with permissive CORS so
// external map pages can embed them.
func (s *Server) handlePreviews(previewsDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(previewsDir)).ServeHTTP(w, r)
	})
}

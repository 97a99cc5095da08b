// Package server implements the kintree HTTP API used by the tree editor.
//
// Routes:
//
//	POST /parse                      multipart "file" (.json, .csv, .xlsx) → {personas, errores}
//	POST /validate                   person list → {personas, errores}
//	POST /save_personas              person list → {status, path, id}
//	GET  /personas                   latest saved snapshot
//	POST /upload_avatar/{person_id}  multipart "file" image → {url}
//	POST /layout                     person list → positioned layout
//	POST /export/{format}            person list → artifact bytes
//	GET  /uploads/*, /presets/*      static images
//	GET  /healthz, /version
//
// Errors are answered with {"error": message, "code": CODE} and a status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
)

// Limits.
const (
	DefaultMaxUploadSize = 32 << 20
	shutdownTimeout      = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr          string
	BaseURL       string   // absolute prefix for avatar URLs in SVG output
	CORSOrigins   []string // "*" allows any origin
	UploadsDir    string
	PresetsDir    string
	Layout        layout.Options
	Presets       avatar.Presets
	MaxUploadSize int64
}

// Server serves the API.
type Server struct {
	opts    Options
	runner  *pipeline.Runner
	store   store.Store
	avatars *store.AvatarStore
	logger  *log.Logger
	router  chi.Router
}

// New builds a server and its routes. The runner, store and avatar store are
// shared by all requests.
func New(opts Options, runner *pipeline.Runner, st store.Store, avatars *store.AvatarStore, logger *log.Logger) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if opts.Presets == nil {
		opts.Presets = avatar.DefaultPresets()
	}
	opts.Layout.SetDefaults()
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		opts:    opts,
		runner:  runner,
		store:   st,
		avatars: avatars,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(corsOptions(s.opts.CORSOrigins)))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Post("/parse", s.handleParse)
	r.Post("/validate", s.handleValidate)
	r.Post("/save_personas", s.handleSave)
	r.Get("/personas", s.handleLatest)
	r.Post("/upload_avatar/{person_id}", s.handleUploadAvatar)
	r.Post("/layout", s.handleLayout)
	r.Post("/export/{format}", s.handleExport)

	if s.avatars != nil {
		mountStatic(r, store.DefaultUploadsPrefix, s.avatars.Dir())
	}
	if s.opts.PresetsDir != "" {
		mountStatic(r, "/presets", s.opts.PresetsDir)
	}
	return r
}

func mountStatic(r chi.Router, prefix, dir string) {
	fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", fs.ServeHTTP)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

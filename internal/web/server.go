// Package web is the form-based UI and JSON API served by "transhub serve".
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/valpere/transhub/internal/broadcast"
	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/templates"
)

//go:embed templates/index.html
var pageFS embed.FS

// maxFormBytes bounds request bodies; community notices are short.
const maxFormBytes = 1 << 20

type Options struct {
	// Full enables broadcast and the template library.
	Full bool
	// AutoDetect offers "Detect language" as a source.
	AutoDetect bool
	Templates  *templates.Library
}

type Server struct {
	gateway     *gateway.Gateway
	broadcaster *broadcast.Broadcaster
	templates   *templates.Library
	full        bool
	autoDetect  bool
	page        *template.Template
}

func New(gw *gateway.Gateway, opts Options) *Server {
	if opts.Templates == nil {
		opts.Templates = templates.Default()
	}
	return &Server{
		gateway:     gw,
		broadcaster: broadcast.New(gw, gw.Registry()),
		templates:   opts.Templates,
		full:        opts.Full,
		autoDetect:  opts.AutoDetect,
		page:        template.Must(template.ParseFS(pageFS, "templates/index.html")),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.health)

	r.Get("/", s.index)
	r.Post("/translate", s.translateForm)
	if s.full {
		r.Post("/broadcast", s.broadcastForm)
		r.Post("/broadcast/export", s.exportForm)
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/languages", s.listLanguages)
		v1.Post("/translate", s.translateAPI)
		if s.full {
			v1.Get("/templates", s.listTemplates)
			v1.Get("/templates/{name}", s.getTemplate)
			v1.Post("/broadcast", s.broadcastAPI)
			v1.Post("/broadcast/export", s.exportAPI)
		}
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	variant := "lite"
	if s.full {
		variant = "full"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"variant": variant,
		"backend": s.gateway.Backend().Name(),
		"models":  s.gateway.LoadedModels(),
	})
}

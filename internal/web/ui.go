package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/valpere/transhub/internal/broadcast"
	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/markdown"
)

const (
	tabTranslate = "translate"
	tabBroadcast = "broadcast"
	tabTemplates = "templates"
)

type pageData struct {
	Full       bool
	AutoDetect bool
	Tab        string
	Languages  []language.Entry
	Templates  []string

	Text     string
	Source   string
	Target   string
	Selected map[string]bool
	Basename string
	Template string

	Error     string
	Result    *gateway.Result
	Rendered  template.HTML
	Broadcast *broadcastView
}

type broadcastView struct {
	Items  []outcomeView
	Failed int
	Export string
}

type outcomeView struct {
	Language string
	Code     string
	OK       bool
	Rendered template.HTML
	Message  string
}

func (s *Server) newPage(tab string) *pageData {
	p := &pageData{
		Full:       s.full,
		AutoDetect: s.autoDetect,
		Tab:        tab,
		Languages:  s.gateway.Registry().Entries(),
		Selected:   map[string]bool{},
		Basename:   broadcast.DefaultBasename,
	}
	if s.full {
		p.Templates = s.templates.Names()
	}
	if len(p.Languages) > 1 {
		p.Source, p.Target = p.Languages[0].Code, p.Languages[1].Code
	}
	if s.autoDetect {
		p.Source = language.AutoCode
	}
	return p
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	switch tab {
	case tabBroadcast, tabTemplates:
		if !s.full {
			tab = tabTranslate
		}
	default:
		tab = tabTranslate
	}
	p := s.newPage(tab)

	// picking a template fills the input
	if name := r.URL.Query().Get("template"); name != "" && s.full {
		body, err := s.templates.Get(name)
		if err != nil {
			p.Error = err.Error()
			s.render(w, http.StatusNotFound, p)
			return
		}
		p.Template = name
		p.Text = body
	}

	s.render(w, http.StatusOK, p)
}

func (s *Server) translateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p := s.newPage(tabTranslate)
	p.Text = r.PostForm.Get("text")
	p.Source = r.PostForm.Get("source")
	p.Target = r.PostForm.Get("target")

	res, err := s.gateway.Translate(r.Context(), p.Text, p.Source, p.Target)
	if err != nil {
		p.Error = gateway.Message(err)
		s.render(w, statusFromError(err), p)
		return
	}
	p.Result = res
	p.Rendered = template.HTML(markdown.ToHTML(res.Text))
	s.render(w, http.StatusOK, p)
}

func (s *Server) broadcastForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p := s.newPage(tabBroadcast)
	p.Text = r.PostForm.Get("text")
	p.Source = r.PostForm.Get("source")
	if b := strings.TrimSpace(r.PostForm.Get("basename")); b != "" {
		p.Basename = b
	}
	targets := formTargets(r.PostForm["targets"])
	for _, t := range targets {
		p.Selected[t] = true
	}

	session, err := s.broadcaster.Collect(r.Context(), p.Text, p.Source, targets)
	if err != nil {
		p.Error = gateway.Message(err)
		s.render(w, statusFromError(err), p)
		return
	}

	view := &broadcastView{Failed: session.Failed(), Export: broadcast.Export(session)}
	for _, o := range session.Results {
		item := outcomeView{Language: o.Target.Name, Code: o.Target.Code, OK: o.OK()}
		if o.OK() {
			item.Rendered = template.HTML(markdown.ToHTML(o.Result.Text))
		} else {
			item.Message = gateway.Message(o.Err)
		}
		view.Items = append(view.Items, item)
	}
	p.Broadcast = view
	s.render(w, http.StatusOK, p)
}

// exportForm turns the export text shown on the results page into a
// download, so the broadcast is not translated twice.
func (s *Server) exportForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	content := r.PostForm.Get("content")
	if strings.TrimSpace(content) == "" {
		http.Error(w, "nothing to export", http.StatusBadRequest)
		return
	}
	writeAttachment(w, broadcast.ExportFilename(r.PostForm.Get("basename")), content)
}

func (s *Server) render(w http.ResponseWriter, status int, p *pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, p); err != nil {
		log.Printf("render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/valpere/transhub/internal/broadcast"
	"github.com/valpere/transhub/internal/gateway"
)

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type broadcastRequest struct {
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	Targets  []string `json:"targets"`
	Basename string   `json:"basename,omitempty"`
}

// outcomeLine is one NDJSON line of a streamed broadcast.
type outcomeLine struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Target string `json:"target"`
	Code   string `json:"code"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gateway.Registry().Entries())
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.templates.All())
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := s.templates.Get(name)
	if err != nil {
		respondError(w, statusFromError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": name, "body": body})
}

func (s *Server) translateAPI(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	res, err := s.gateway.Translate(r.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		respondError(w, statusFromError(err), gateway.Message(err))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// broadcastAPI streams one JSON line per target as soon as it is translated.
func (s *Server) broadcastAPI(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	outcomes, plan, err := s.broadcaster.Broadcast(r.Context(), req.Text, req.Source, req.Targets)
	if err != nil {
		respondError(w, statusFromError(err), gateway.Message(err))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for o := range outcomes {
		line := outcomeLine{
			Index:  o.Index,
			Total:  len(plan),
			Target: o.Target.Name,
			Code:   o.Target.Code,
		}
		if o.OK() {
			line.Text = o.Result.Text
		} else {
			line.Error = gateway.Message(o.Err)
		}
		if err := enc.Encode(line); err != nil {
			// client went away
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) exportAPI(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	session, err := s.broadcaster.Collect(r.Context(), req.Text, req.Source, req.Targets)
	if err != nil {
		respondError(w, statusFromError(err), gateway.Message(err))
		return
	}
	writeAttachment(w, broadcast.ExportFilename(req.Basename), broadcast.Export(session))
}

func writeAttachment(w http.ResponseWriter, filename, content string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}

// formTargets accepts repeated "targets" fields and comma separated lists.
func formTargets(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

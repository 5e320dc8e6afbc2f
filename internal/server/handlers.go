package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/genome"
	"github.com/sozercan/genome-workbench/internal/session"
)

// statusFor maps an error kind to the HTTP status of the response carrying it.
func statusFor(err error) int {
	switch apimodels.KindOf(err) {
	case apimodels.InvalidInput:
		return http.StatusBadRequest
	case apimodels.MissingCredential, apimodels.AuthenticationFailed:
		return http.StatusUnauthorized
	case apimodels.ServiceError:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func activeTab(v string) apimodels.Action {
	if a := apimodels.Action(v); a.Valid() {
		return a
	}
	return apimodels.ActionSequence
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	cfg, _ := s.sessions.Get(id)
	active := activeTab(r.URL.Query().Get("tab"))

	data := s.newPage(cfg, active)
	if res, ok := s.sessions.Result(id); ok && res.Action == active {
		data.Result = res
	}
	s.writePage(w, http.StatusOK, data)
}

func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	active := activeTab(r.PostForm.Get("tab"))
	key := strings.TrimSpace(r.PostForm.Get("api_key"))
	organism := genome.Organism(r.PostForm.Get("organism"))

	if organism != "" && !genome.ValidOrganism(organism) {
		cfg, _ := s.sessions.Get(id)
		err := apimodels.NewError(apimodels.InvalidInput, "unsupported organism %q", organism)
		data := s.newPage(cfg, active)
		data.Error, data.ErrorKind = apimodels.UserMessage(err), apimodels.KindOf(err)
		s.writePage(w, statusFor(err), data)
		return
	}

	s.sessions.Update(id, func(c session.Config) session.Config {
		// a blank key field keeps the current key
		if key != "" {
			c = c.WithAPIKey(key)
		}
		if organism != "" {
			c = c.WithOrganism(organism)
		}
		return c
	})
	slog.Info("Updated session settings", "keyChanged", key != "", "organism", organism)
	http.Redirect(w, r, "/?tab="+url.QueryEscape(string(active)), http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionID(r))
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	action := apimodels.Action(chi.URLParam(r, "action"))
	if !action.Valid() {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	id := sessionID(r)
	// the submitted inputs are stored first so a failed call re-renders them
	cfg, _ := s.sessions.Update(id, func(c session.Config) session.Config {
		return c.WithParams(action, paramsFromForm(action, r.PostForm, c.Params(action)))
	})

	res, err := s.analyzer.Run(r.Context(), id, cfg, action)
	data := s.newPage(cfg, action)
	if err != nil {
		slog.Warn("Analysis request failed", "action", action, "kind", apimodels.KindOf(err), "error", err)
		data.Error, data.ErrorKind = apimodels.UserMessage(err), apimodels.KindOf(err)
		s.writePage(w, statusFor(err), data)
		return
	}

	s.sessions.SetResult(id, res)
	data.Result = res
	s.writePage(w, http.StatusOK, data)
}

// paramsFromForm overlays the submitted fields of one tab on its current inputs.
func paramsFromForm(action apimodels.Action, form url.Values, p session.Params) session.Params {
	text := func(name string, dst *string) {
		if form.Has(name) {
			*dst = strings.TrimSpace(form.Get(name))
		}
	}
	number := func(name string, dst *int) {
		if form.Has(name) {
			n, err := strconv.Atoi(strings.TrimSpace(form.Get(name)))
			if err != nil {
				n = 0
			}
			*dst = n
		}
	}

	text("sequence", &p.Sequence)
	text("gene_symbol", &p.GeneSymbol)
	text("interval", &p.Interval)
	text("variant", &p.Variant)
	text("scorer_output", &p.ScorerOutput)
	text("aggregation", &p.Aggregation)
	number("sequence_length", &p.SequenceLength)
	number("ism_width", &p.ISMWidth)
	number("scoring_width", &p.ScoringWidth)

	switch action {
	case apimodels.ActionSequence, apimodels.ActionInterval, apimodels.ActionVariant:
		// an empty multi-select is not submitted at all
		p.OutputTypes = form["output_types"]
		p.Tissues = form["tissues"]
	}
	p.Explain = form.Get("explain") != ""
	return p
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	res, ok := s.sessions.Result(sessionID(r))
	if !ok {
		http.Error(w, "No result to download", http.StatusNotFound)
		return
	}
	table, ok := res.Table(name)
	if !ok {
		http.Error(w, "Unknown table", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+table.ID+`.csv"`)
	if err := table.WriteCSV(w); err != nil {
		slog.Error("Failed to write CSV", "table", table.ID, "error", err)
	}
}

// maxRequestBody caps the JSON bridge's request body.
const maxRequestBody = 1 << 20

type apiAnalyzeRequest struct {
	APIKey   string           `json:"apiKey"`
	Action   apimodels.Action `json:"action"`
	Organism genome.Organism  `json:"organism,omitempty"`
	// Params overlay the action's defaults
	Params json.RawMessage `json:"params,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	var req apiAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apimodels.WrapError(apimodels.InvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, apimodels.WrapError(apimodels.InvalidInput, err, "request body is not valid JSON"))
		return
	}
	if !req.Action.Valid() {
		writeError(w, apimodels.NewError(apimodels.InvalidInput, "unknown action %q", req.Action))
		return
	}

	params := session.DefaultParams(req.Action)
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeError(w, apimodels.WrapError(apimodels.InvalidInput, err, "params do not match the %s form", req.Action))
			return
		}
	}
	cfg := session.NewConfig().WithAPIKey(req.APIKey).WithParams(req.Action, params)
	if req.Organism != "" {
		cfg = cfg.WithOrganism(req.Organism)
	}

	slog.Debug("Received analysis request", "action", req.Action, "organism", cfg.Organism())

	res, err := s.analyzer.Run(r.Context(), "api/"+middleware.GetReqID(r.Context()), cfg, req.Action)
	if err != nil {
		slog.Error("Analysis request failed", "action", req.Action, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), apimodels.ErrorResponse{
		Kind:    apimodels.KindOf(err),
		Message: apimodels.UserMessage(err),
	})
}

package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/analysis"
	"github.com/sozercan/genome-workbench/internal/genome"
	"github.com/sozercan/genome-workbench/internal/render"
	"github.com/sozercan/genome-workbench/internal/session"
)

// maxDisplayRows bounds the rows shown in an HTML table.
const maxDisplayRows = 200

var tabLabels = map[apimodels.Action]string{
	apimodels.ActionSequence: "Sequence prediction",
	apimodels.ActionInterval: "Interval prediction",
	apimodels.ActionVariant:  "Variant effect",
	apimodels.ActionScore:    "Variant scoring",
	apimodels.ActionISM:      "ISM",
}

type tab struct {
	Action  apimodels.Action
	Label   string
	Params  session.Params
	Lengths []int
}

type limits struct {
	MinISMWidth, MaxISMWidth         int
	MinScoringWidth, MaxScoringWidth int
}

type pageData struct {
	Tabs   []tab
	Active tab

	HasKey    bool
	Organism  genome.Organism
	Organisms []genome.Organism

	OutputTypes      []genome.OutputType
	TrackOutputTypes []genome.OutputType
	Tissues          []genome.Tissue
	Aggregations     []genome.Aggregation
	Limits           limits

	CanNarrate     bool
	CanLookupGenes bool

	Error     string
	ErrorKind apimodels.ErrorKind
	Result    *render.Result
	MaxRows   int
}

func lengthsFor(a apimodels.Action) []int {
	switch a {
	case apimodels.ActionSequence:
		return genome.SequenceLengths
	case apimodels.ActionISM:
		return genome.ISMLengths
	}
	return genome.IntervalLengths
}

func (s *Server) newPage(cfg session.Config, active apimodels.Action) pageData {
	p := pageData{
		HasKey:           cfg.HasAPIKey(),
		Organism:         cfg.Organism(),
		Organisms:        genome.Organisms,
		OutputTypes:      genome.OutputTypes,
		TrackOutputTypes: genome.TrackOutputTypes,
		Tissues:          genome.Tissues,
		Aggregations:     genome.Aggregations,
		Limits: limits{
			MinISMWidth:     analysis.MinISMWidth,
			MaxISMWidth:     analysis.MaxISMWidth,
			MinScoringWidth: analysis.MinScoringWidth,
			MaxScoringWidth: analysis.MaxScoringWidth,
		},
		CanNarrate:     s.analyzer.CanNarrate(),
		CanLookupGenes: s.analyzer.CanLookupGenes(),
		MaxRows:        maxDisplayRows,
	}
	for _, a := range apimodels.Actions {
		t := tab{Action: a, Label: tabLabels[a], Params: cfg.Params(a), Lengths: lengthsFor(a)}
		p.Tabs = append(p.Tabs, t)
		if a == active {
			p.Active = t
		}
	}
	return p
}

func (s *Server) writePage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		slog.Error("Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func has(list []string, v any) bool {
	return slices.Contains(list, fmt.Sprint(v))
}

func head(rows [][]string) [][]string {
	if len(rows) > maxDisplayRows {
		return rows[:maxDisplayRows]
	}
	return rows
}

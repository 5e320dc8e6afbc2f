// Package render turns typed analysis responses into tables and charts.
// Output depends only on its inputs: the same response always yields the same
// Result, and a response that does not match the schema yields a RenderError
// instead of a partial Result.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/genome"
)

var titles = map[apimodels.Action]string{
	apimodels.ActionSequence: "DNA sequence prediction",
	apimodels.ActionInterval: "Genomic interval prediction",
	apimodels.ActionVariant:  "Variant effect",
	apimodels.ActionScore:    "Variant scores",
	apimodels.ActionISM:      "In-silico mutagenesis",
}

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

func color(i int) string { return palette[i%len(palette)] }

// Render validates resp against the request it answers and builds the Result.
func Render(req apimodels.AnalysisRequest, resp *apimodels.AnalysisResponse) (*Result, error) {
	if resp == nil {
		return nil, malformed("empty response")
	}
	if resp.Action != req.Action {
		return nil, malformed("response is for action %q, request was %q", resp.Action, req.Action)
	}

	res := &Result{
		Action: req.Action,
		Title:  titles[req.Action],
		Metadata: Metadata{
			Organism: string(req.Organism),
		},
	}
	if req.Interval != nil {
		res.Metadata.Interval = req.Interval.String()
	}

	var (
		sections []Section
		err      error
	)
	switch req.Action {
	case apimodels.ActionSequence, apimodels.ActionInterval:
		sections, err = predictionSections(req, resp.Output)
	case apimodels.ActionVariant:
		res.Subtitle = variantLabel(req.Variant)
		sections, err = variantSections(req, resp.Variant)
	case apimodels.ActionScore:
		res.Subtitle = variantLabel(req.Variant)
		sections, err = scoreSections(resp.Scores)
	case apimodels.ActionISM:
		if req.ISMInterval != nil {
			res.Subtitle = "ISM interval " + req.ISMInterval.String()
		}
		sections, err = ismSections(req.ISMInterval, resp.ISM)
	default:
		return nil, malformed("unknown action %q", req.Action)
	}
	if err != nil {
		return nil, err
	}
	res.Sections = sections
	return res, nil
}

func malformed(format string, args ...any) error {
	return apimodels.NewError(apimodels.RenderError, format, args...)
}

func variantLabel(v *genome.Variant) string {
	if v == nil {
		return ""
	}
	return "Variant " + v.String()
}

// validateMatrix checks that values is a non-empty rows x cols matrix.
func validateMatrix(what string, values [][]float64, rows, cols int) error {
	if cols == 0 {
		return malformed("%s: no track metadata", what)
	}
	if len(values) == 0 {
		return malformed("%s: no values", what)
	}
	if rows >= 0 && len(values) != rows {
		return malformed("%s: expected %d rows, got %d", what, rows, len(values))
	}
	for i, row := range values {
		if len(row) != cols {
			return malformed("%s: row %d has %d values, expected %d", what, i, len(row), cols)
		}
	}
	return nil
}

func validateTrack(td *apimodels.TrackData) error {
	what := string(td.OutputType)
	if td.Resolution < 0 {
		return malformed("%s: negative resolution %d", what, td.Resolution)
	}
	return validateMatrix(what, td.Values, -1, len(td.Metadata))
}

func resolution(td *apimodels.TrackData) int64 {
	if td.Resolution == 0 {
		return 1
	}
	return int64(td.Resolution)
}

// positions returns the genomic coordinate of each row of td.
func positions(td *apimodels.TrackData, fallback *genome.Interval) []int64 {
	var start int64
	switch {
	case td.Interval != nil:
		start = td.Interval.Start
	case fallback != nil:
		start = fallback.Start
	}
	res := resolution(td)
	out := make([]int64, len(td.Values))
	for i := range out {
		out[i] = start + int64(i)*res
	}
	return out
}

func trackName(m apimodels.TrackMetadata, i int) string {
	if m.Name != "" {
		return m.Name
	}
	return "track_" + strconv.Itoa(i)
}

func trackCaption(m apimodels.TrackMetadata, i int) string {
	parts := []string{trackName(m, i) + ":"}
	if m.BiosampleName != "" {
		parts = append(parts, m.BiosampleName)
	}
	if m.OntologyCURIE != "" {
		parts = append(parts, "("+m.OntologyCURIE+")")
	}
	if m.Assay != "" {
		parts = append(parts, m.Assay)
	}
	if m.Strand != "" {
		parts = append(parts, "strand "+m.Strand)
	}
	return strings.Join(parts, " ")
}

func tableID(ot genome.OutputType, suffix string) string {
	return strings.ToLower(string(ot)) + "-" + suffix
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func fmtCount(n int) string { return humanize.Comma(int64(n)) }

func fmtFixed(v float64, prec int) string { return fmt.Sprintf("%.*f", prec, v) }

func fmtPos(p int64) string { return strconv.FormatInt(p, 10) }

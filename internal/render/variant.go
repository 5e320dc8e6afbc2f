package render

import (
	"math"

	"github.com/sozercan/genome-workbench/apimodels"
)

const (
	refColor = "#696969"
	altColor = "#d62728"
)

func variantSections(req apimodels.AnalysisRequest, out *apimodels.VariantOutput) ([]Section, error) {
	if out == nil {
		return nil, malformed("variant: response has no reference/alternate predictions")
	}
	refs, err := orderedTracks(req.RequestedOutputs, &out.Reference, "variant reference")
	if err != nil {
		return nil, err
	}
	alts, err := orderedTracks(req.RequestedOutputs, &out.Alternate, "variant alternate")
	if err != nil {
		return nil, err
	}
	if len(refs) != len(alts) {
		return nil, malformed("variant: %d reference outputs but %d alternate outputs", len(refs), len(alts))
	}

	sections := make([]Section, 0, len(refs))
	for i, ref := range refs {
		alt := alts[i]
		if alt.OutputType != ref.OutputType {
			return nil, malformed("variant: reference %s paired with alternate %s", ref.OutputType, alt.OutputType)
		}
		if len(alt.Values) != len(ref.Values) || len(alt.Metadata) != len(ref.Metadata) {
			return nil, malformed("variant %s: reference is %dx%d but alternate is %dx%d", ref.OutputType,
				len(ref.Values), len(ref.Metadata), len(alt.Values), len(alt.Metadata))
		}
		sections = append(sections, variantSection(req, ref, alt))
	}
	return sections, nil
}

func variantSection(req apimodels.AnalysisRequest, ref, alt *apimodels.TrackData) Section {
	pos := positions(ref, req.Interval)
	ncols := len(ref.Metadata)

	diffTable := Table{
		ID:    tableID(ref.OutputType, "diff"),
		Title: string(ref.OutputType) + " ALT - REF",
		Rows:  make([][]string, len(ref.Values)),
	}
	diffTable.Columns = append(diffTable.Columns, "position")
	for c, m := range ref.Metadata {
		diffTable.Columns = append(diffTable.Columns, trackName(m, c))
		diffTable.Caption = append(diffTable.Caption, trackCaption(m, c))
	}

	var sum float64
	maxDiff, minDiff := math.Inf(-1), math.Inf(1)
	xs := make([]float64, len(pos))
	refSeries := make([][]float64, ncols)
	altSeries := make([][]float64, ncols)
	for c := range refSeries {
		refSeries[c] = make([]float64, len(ref.Values))
		altSeries[c] = make([]float64, len(ref.Values))
	}
	for r := range ref.Values {
		xs[r] = float64(pos[r])
		cells := make([]string, 0, ncols+1)
		cells = append(cells, fmtPos(pos[r]))
		for c := 0; c < ncols; c++ {
			d := alt.Values[r][c] - ref.Values[r][c]
			sum += d
			maxDiff = math.Max(maxDiff, d)
			minDiff = math.Min(minDiff, d)
			cells = append(cells, fmtFloat(d))
			refSeries[c][r] = ref.Values[r][c]
			altSeries[c][r] = alt.Values[r][c]
		}
		diffTable.Rows[r] = cells
	}

	chart := Chart{
		ID:     tableID(ref.OutputType, "overlay"),
		Title:  string(ref.OutputType) + " REF vs ALT",
		Kind:   LineChart,
		XLabel: "position",
		YLabel: "predicted signal",
	}
	for c, m := range ref.Metadata {
		name := trackName(m, c)
		chart.Series = append(chart.Series,
			Series{Name: "REF " + name, Color: refColor, X: xs, Y: refSeries[c]},
			Series{Name: "ALT " + name, Color: altColor, X: xs, Y: altSeries[c]},
		)
	}

	return Section{
		Title: string(ref.OutputType),
		Metrics: []Metric{
			{Label: "Mean difference", Value: fmtFixed(sum/float64(len(ref.Values)*ncols), 6)},
			{Label: "Max difference", Value: fmtFixed(maxDiff, 6)},
			{Label: "Min difference", Value: fmtFixed(minDiff, 6)},
		},
		Tables: []Table{diffTable},
		Charts: []Chart{chart},
	}
}

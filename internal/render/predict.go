package render

import (
	"slices"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/genome"
)

// orderedTracks returns the requested tracks in request order followed by any
// extra tracks the service sent, failing when a requested one is absent.
func orderedTracks(requested []genome.OutputType, out *apimodels.PredictionOutput, what string) ([]*apimodels.TrackData, error) {
	if out == nil {
		return nil, malformed("%s: response has no predictions", what)
	}
	var tracks []*apimodels.TrackData
	for _, ot := range requested {
		td := out.Track(ot)
		if td == nil {
			return nil, malformed("%s: response is missing %s predictions", what, ot)
		}
		tracks = append(tracks, td)
	}
	for i := range out.Tracks {
		if !slices.Contains(requested, out.Tracks[i].OutputType) {
			tracks = append(tracks, &out.Tracks[i])
		}
	}
	if len(tracks) == 0 {
		return nil, malformed("%s: response has no tracks", what)
	}
	for _, td := range tracks {
		if err := validateTrack(td); err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

func predictionSections(req apimodels.AnalysisRequest, out *apimodels.PredictionOutput) ([]Section, error) {
	tracks, err := orderedTracks(req.RequestedOutputs, out, "prediction")
	if err != nil {
		return nil, err
	}
	sections := make([]Section, 0, len(tracks))
	for _, td := range tracks {
		sections = append(sections, trackSection(td, req.Interval))
	}
	return sections, nil
}

func trackSection(td *apimodels.TrackData, fallback *genome.Interval) Section {
	pos := positions(td, fallback)
	ncols := len(td.Metadata)

	var sum float64
	for _, row := range td.Values {
		for _, v := range row {
			sum += v
		}
	}
	mean := sum / float64(len(td.Values)*ncols)

	table := Table{
		ID:      tableID(td.OutputType, "values"),
		Title:   string(td.OutputType) + " predicted values",
		Columns: make([]string, 0, ncols+1),
		Rows:    make([][]string, len(td.Values)),
	}
	table.Columns = append(table.Columns, "position")
	for i, m := range td.Metadata {
		table.Columns = append(table.Columns, trackName(m, i))
		table.Caption = append(table.Caption, trackCaption(m, i))
	}
	for r, row := range td.Values {
		cells := make([]string, 0, ncols+1)
		cells = append(cells, fmtPos(pos[r]))
		for _, v := range row {
			cells = append(cells, fmtFloat(v))
		}
		table.Rows[r] = cells
	}

	chart := Chart{
		ID:     tableID(td.OutputType, "chart"),
		Title:  string(td.OutputType) + " tracks",
		Kind:   LineChart,
		XLabel: "position",
		YLabel: "predicted signal",
	}
	xs := make([]float64, len(pos))
	for i, p := range pos {
		xs[i] = float64(p)
	}
	for c, m := range td.Metadata {
		ys := make([]float64, len(td.Values))
		for r, row := range td.Values {
			ys[r] = row[c]
		}
		chart.Series = append(chart.Series, Series{Name: trackName(m, c), Color: color(c), X: xs, Y: ys})
	}

	return Section{
		Title: string(td.OutputType),
		Metrics: []Metric{
			{Label: "Positions", Value: fmtCount(len(td.Values))},
			{Label: "Tracks", Value: fmtCount(ncols)},
			{Label: "Resolution (bp)", Value: fmtCount(int(resolution(td)))},
			{Label: "Mean", Value: fmtFixed(mean, 4)},
		},
		Tables: []Table{table},
		Charts: []Chart{chart},
	}
}

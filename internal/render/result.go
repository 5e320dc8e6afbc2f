package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sozercan/genome-workbench/apimodels"
)

// Result is the display-ready form of one analysis response.
type Result struct {
	Action   apimodels.Action `json:"action"`
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle,omitempty"`
	Sections []Section        `json:"sections"`

	// Narrative is an optional plain-language summary added after rendering
	Narrative string `json:"narrative,omitempty"`

	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Duration string `json:"duration"`
	Organism string `json:"organism"`
	Interval string `json:"interval,omitempty"`
}

type Section struct {
	Title   string   `json:"title"`
	Metrics []Metric `json:"metrics,omitempty"`
	Tables  []Table  `json:"tables,omitempty"`
	Charts  []Chart  `json:"charts,omitempty"`
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a rectangular view; every row has len(Columns) cells.
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Caption []string   `json:"caption,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type ChartKind string

const (
	LineChart ChartKind = "line"
	BarChart  ChartKind = "bar"
)

type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	XLabel string    `json:"xLabel"`
	YLabel string    `json:"yLabel"`
	Series []Series  `json:"series"`
}

// Series holds parallel X/Y slices. Labels, when set, annotates each point.
type Series struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Labels []string  `json:"labels,omitempty"`
}

// Tables returns every table of the result in display order.
func (r *Result) Tables() []Table {
	var out []Table
	for _, s := range r.Sections {
		out = append(out, s.Tables...)
	}
	return out
}

// Charts returns every chart of the result in display order.
func (r *Result) Charts() []Chart {
	var out []Chart
	for _, s := range r.Sections {
		out = append(out, s.Charts...)
	}
	return out
}

func (r *Result) Table(id string) (*Table, bool) {
	for i := range r.Sections {
		for j := range r.Sections[i].Tables {
			if r.Sections[i].Tables[j].ID == id {
				return &r.Sections[i].Tables[j], true
			}
		}
	}
	return nil, false
}

// Metrics returns every metric prefixed by its section title.
func (r *Result) Metrics() []Metric {
	var out []Metric
	for _, s := range r.Sections {
		for _, m := range s.Metrics {
			out = append(out, Metric{Label: s.Title + " / " + m.Label, Value: m.Value})
		}
	}
	return out
}

// WriteCSV writes the header and all rows of t.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

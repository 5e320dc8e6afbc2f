package render

import (
	"math"
	"sort"
	"strconv"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/genome"
)

const topPositions = 10

var baseColors = map[byte]string{
	'A': "#d62728",
	'C': "#2ca02c",
	'G': "#ff7f0e",
	'T': "#1f77b4",
}

// ismMatrix places the first-track score of every substitution at
// [position-ismStart][alt base]. Reference bases stay 0.
func ismMatrix(iv *genome.Interval, scores []apimodels.ISMScore) ([][4]float64, error) {
	m := make([][4]float64, iv.Width())
	seen := make([][4]bool, iv.Width())
	for i, s := range scores {
		v := s.Variant
		pos := v.Position - 1
		if !iv.Contains(v.Chromosome, pos) {
			return nil, malformed("ism: variant %d (%s) lies outside %s", i, v, iv)
		}
		if len(v.Alternate) != 1 || genome.BaseIndex(v.Alternate[0]) < 0 {
			return nil, malformed("ism: variant %d (%s) is not a single-base substitution", i, v)
		}
		if len(s.Values) == 0 {
			return nil, malformed("ism: variant %d (%s) has no scores", i, v)
		}
		row, col := pos-iv.Start, genome.BaseIndex(v.Alternate[0])
		if seen[row][col] {
			return nil, malformed("ism: duplicate score for %s", v)
		}
		seen[row][col] = true
		m[row][col] = s.Values[0]
	}
	return m, nil
}

func ismSections(iv *genome.Interval, scores []apimodels.ISMScore) ([]Section, error) {
	if iv == nil {
		return nil, malformed("ism: request has no ISM interval")
	}
	if len(scores) == 0 {
		return nil, malformed("ism: response has no variant scores")
	}
	m, err := ismMatrix(iv, scores)
	if err != nil {
		return nil, err
	}

	n := len(m)
	maxBase := make([]byte, n)
	maxVal := make([]float64, n)
	var sum float64
	hi, lo := math.Inf(-1), math.Inf(1)
	for p, row := range m {
		best := 0
		for b := 1; b < 4; b++ {
			if math.Abs(row[b]) > math.Abs(row[best]) {
				best = b
			}
		}
		maxBase[p] = genome.Bases[best]
		maxVal[p] = row[best]
		sum += row[best]
		hi = math.Max(hi, row[best])
		lo = math.Min(lo, row[best])
	}

	matrix := Table{
		ID:      "ism-matrix",
		Title:   "ISM contribution matrix",
		Caption: []string{"Scores use the first track of each substitution; reference bases are 0."},
		Columns: []string{"position", "A", "C", "G", "T", "max_base", "max_contribution"},
		Rows:    make([][]string, n),
	}
	for p, row := range m {
		matrix.Rows[p] = []string{
			fmtPos(iv.Start + int64(p)),
			fmtFloat(row[0]), fmtFloat(row[1]), fmtFloat(row[2]), fmtFloat(row[3]),
			string(maxBase[p]), fmtFloat(maxVal[p]),
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(maxVal[order[a]]) > math.Abs(maxVal[order[b]])
	})
	top := Table{
		ID:      "ism-top",
		Title:   "Key positions",
		Columns: []string{"rank", "position", "base", "contribution", "abs_contribution"},
	}
	for rank, p := range order[:min(topPositions, n)] {
		top.Rows = append(top.Rows, []string{
			strconv.Itoa(rank + 1),
			fmtPos(iv.Start + int64(p)),
			string(maxBase[p]),
			fmtFloat(maxVal[p]),
			fmtFloat(math.Abs(maxVal[p])),
		})
	}

	chart := Chart{
		ID:     "ism-chart",
		Title:  "ISM contribution by position",
		Kind:   BarChart,
		XLabel: "position",
		YLabel: "ISM contribution",
	}
	for _, base := range genome.Bases {
		s := Series{Name: string(base), Color: baseColors[base]}
		for p := range m {
			if maxBase[p] == base {
				s.X = append(s.X, float64(iv.Start+int64(p)))
				s.Y = append(s.Y, maxVal[p])
				s.Labels = append(s.Labels, string(base))
			}
		}
		chart.Series = append(chart.Series, s)
	}

	return []Section{{
		Title: "ISM " + iv.String(),
		Metrics: []Metric{
			{Label: "Variants", Value: fmtCount(len(scores))},
			{Label: "Positions", Value: fmtCount(n)},
			{Label: "Mean contribution", Value: fmtFixed(sum/float64(n), 6)},
			{Label: "Max positive", Value: fmtFixed(hi, 6)},
			{Label: "Max negative", Value: fmtFixed(lo, 6)},
			{Label: "Range", Value: fmtFixed(hi-lo, 6)},
		},
		Tables: []Table{matrix, top},
		Charts: []Chart{chart},
	}}, nil
}

package server

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strings"

	"github.com/sozercan/genome-workbench/internal/render"
)

const (
	chartWidth  = 900
	chartHeight = 300
	chartMargin = 48

	// maxLinePoints bounds the vertices drawn per series; the tables and CSV keep every value.
	maxLinePoints = 1500
)

type bounds struct {
	xmin, xmax, ymin, ymax float64
}

func chartBounds(c render.Chart) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	n := 0
	for _, s := range c.Series {
		for i := range s.X {
			if i >= len(s.Y) || math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
				continue
			}
			b.xmin, b.xmax = math.Min(b.xmin, s.X[i]), math.Max(b.xmax, s.X[i])
			b.ymin, b.ymax = math.Min(b.ymin, s.Y[i]), math.Max(b.ymax, s.Y[i])
			n++
		}
	}
	if n == 0 {
		return b, false
	}
	if c.Kind == render.BarChart {
		b.ymin, b.ymax = math.Min(b.ymin, 0), math.Max(b.ymax, 0)
	}
	if b.xmax == b.xmin {
		b.xmin, b.xmax = b.xmin-0.5, b.xmax+0.5
	}
	if b.ymax == b.ymin {
		b.ymin, b.ymax = b.ymin-1, b.ymax+1
	}
	return b, true
}

func (b bounds) sx(x float64) float64 {
	return chartMargin + (x-b.xmin)/(b.xmax-b.xmin)*(chartWidth-2*chartMargin)
}

func (b bounds) sy(y float64) float64 {
	return chartHeight - chartMargin - (y-b.ymin)/(b.ymax-b.ymin)*(chartHeight-2*chartMargin)
}

// thin keeps the minimum and maximum of each bucket so peaks survive when a
// series has more points than can be drawn.
func thin(xs, ys []float64, limit int) ([]float64, []float64) {
	n := min(len(xs), len(ys))
	if n <= limit {
		return xs[:n], ys[:n]
	}
	bucket := int(math.Ceil(float64(n) / float64(limit/2)))
	outX := make([]float64, 0, limit+2)
	outY := make([]float64, 0, limit+2)
	for start := 0; start < n; start += bucket {
		end := min(start+bucket, n)
		lo, hi := start, start
		for i := start; i < end; i++ {
			if ys[i] < ys[lo] {
				lo = i
			}
			if ys[i] > ys[hi] {
				hi = i
			}
		}
		first, second := min(lo, hi), max(lo, hi)
		outX, outY = append(outX, xs[first]), append(outY, ys[first])
		if second != first {
			outX, outY = append(outX, xs[second]), append(outY, ys[second])
		}
	}
	return outX, outY
}

func fmtTick(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// chartSVG draws c as an inline SVG figure with a legend.
func chartSVG(c render.Chart) template.HTML {
	b, ok := chartBounds(c)
	if !ok {
		return template.HTML(fmt.Sprintf(`<p class="hint">%s: no finite values to plot.</p>`, html.EscapeString(c.Title)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<figure id="%s"><figcaption>%s</figcaption>`, html.EscapeString(c.ID), html.EscapeString(c.Title))
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-label="%s">`,
		chartWidth, chartHeight, chartWidth, chartHeight, html.EscapeString(c.Title))

	left, right := float64(chartMargin), float64(chartWidth-chartMargin)
	top, bottom := float64(chartMargin), float64(chartHeight-chartMargin)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#57606a"/>`, left, bottom, right, bottom)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#57606a"/>`, left, top, left, bottom)
	if b.ymin < 0 && b.ymax > 0 {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#d0d7de" stroke-dasharray="4 3"/>`, left, b.sy(0), right, b.sy(0))
	}
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end">%s</text>`, left-4, top+4, fmtTick(b.ymax))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end">%s</text>`, left-4, bottom, fmtTick(b.ymin))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="11">%s</text>`, left, bottom+16, fmtTick(b.xmin))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end">%s</text>`, right, bottom+16, fmtTick(b.xmax))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="12" text-anchor="middle">%s</text>`, (left+right)/2, float64(chartHeight-8), html.EscapeString(c.XLabel))
	fmt.Fprintf(&sb, `<text x="12" y="%.1f" font-size="12" text-anchor="middle" transform="rotate(-90 12 %.1f)">%s</text>`,
		(top+bottom)/2, (top+bottom)/2, html.EscapeString(c.YLabel))

	switch c.Kind {
	case render.BarChart:
		writeBars(&sb, c, b)
	default:
		writeLines(&sb, c, b)
	}
	sb.WriteString(`</svg><div class="legend">`)
	for _, s := range c.Series {
		fmt.Fprintf(&sb, `<span><i style="background:%s"></i>%s</span>`, html.EscapeString(s.Color), html.EscapeString(s.Name))
	}
	sb.WriteString(`</div></figure>`)
	return template.HTML(sb.String())
}

func writeLines(sb *strings.Builder, c render.Chart, b bounds) {
	for _, s := range c.Series {
		xs, ys := thin(s.X, s.Y, maxLinePoints)
		pts := make([]string, 0, len(xs))
		for i := range xs {
			if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
				continue
			}
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", b.sx(xs[i]), b.sy(ys[i])))
		}
		fmt.Fprintf(sb, `<polyline fill="none" stroke="%s" stroke-width="1.2" points="%s"><title>%s</title></polyline>`,
			html.EscapeString(s.Color), strings.Join(pts, " "), html.EscapeString(s.Name))
	}
}

func writeBars(sb *strings.Builder, c render.Chart, b bounds) {
	slots := 0
	for _, s := range c.Series {
		slots = max(slots, len(s.X))
	}
	width := math.Max(1, (chartWidth-2*chartMargin)/float64(max(slots, 1))*0.8)
	zero := b.sy(0)
	for _, s := range c.Series {
		for i := range s.X {
			if i >= len(s.Y) || s.Y[i] == 0 || math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
				continue
			}
			y := b.sy(s.Y[i])
			top, h := math.Min(y, zero), math.Abs(zero-y)
			label := s.Name
			if i < len(s.Labels) {
				label = s.Labels[i]
			}
			fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`,
				b.sx(s.X[i])-width/2, top, width, h, html.EscapeString(s.Color), html.EscapeString(label))
		}
	}
}

package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a 0-based, half-open region on one chromosome.
type Interval struct {
	Chromosome string `json:"chromosome"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
}

// ParseInterval accepts "chr1:1000-2000". Thousands separators are tolerated.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	chrom, rng, ok := strings.Cut(s, ":")
	if !ok || chrom == "" {
		return Interval{}, fmt.Errorf("interval %q: expected chromosome:start-end", s)
	}
	startStr, endStr, ok := strings.Cut(rng, "-")
	if !ok {
		return Interval{}, fmt.Errorf("interval %q: expected chromosome:start-end", s)
	}
	start, err := parseCoord(startStr)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: start: %w", s, err)
	}
	end, err := parseCoord(endStr)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: end: %w", s, err)
	}
	iv := Interval{Chromosome: chrom, Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func parseCoord(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return v, nil
}

func (iv Interval) Validate() error {
	if iv.Chromosome == "" {
		return fmt.Errorf("interval: chromosome is required")
	}
	if iv.Start < 0 {
		return fmt.Errorf("interval %s: start must not be negative", iv)
	}
	if iv.End <= iv.Start {
		return fmt.Errorf("interval %s: start must be less than end", iv)
	}
	return nil
}

func (iv Interval) Width() int64 { return iv.End - iv.Start }

func (iv Interval) Center() int64 { return iv.Start + iv.Width()/2 }

// Resize returns an interval of the given width centred on iv.Center().
func (iv Interval) Resize(width int64) Interval {
	start := iv.Center() - width/2
	return Interval{Chromosome: iv.Chromosome, Start: start, End: start + width}
}

// Contains reports whether the 0-based position pos lies inside iv.
func (iv Interval) Contains(chrom string, pos int64) bool {
	return chrom == iv.Chromosome && pos >= iv.Start && pos < iv.End
}

// Overlaps reports whether the two intervals share at least one base.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Chromosome == o.Chromosome && iv.Start < o.End && o.Start < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chromosome, iv.Start, iv.End)
}

package genome

import (
	"fmt"
	"strings"
)

// Variant is a substitution or indel at a 1-based position.
type Variant struct {
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Reference  string `json:"referenceBases"`
	Alternate  string `json:"alternateBases"`
}

// ParseVariant accepts "chr22:36201698:A>C".
func ParseVariant(s string) (Variant, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Variant{}, fmt.Errorf("variant %q: expected chromosome:position:REF>ALT", s)
	}
	pos, err := parseCoord(parts[1])
	if err != nil {
		return Variant{}, fmt.Errorf("variant %q: position: %w", s, err)
	}
	ref, alt, ok := strings.Cut(parts[2], ">")
	if !ok {
		return Variant{}, fmt.Errorf("variant %q: expected REF>ALT", s)
	}
	v := Variant{
		Chromosome: parts[0],
		Position:   pos,
		Reference:  strings.ToUpper(strings.TrimSpace(ref)),
		Alternate:  strings.ToUpper(strings.TrimSpace(alt)),
	}
	if err := v.Validate(); err != nil {
		return Variant{}, err
	}
	return v, nil
}

func (v Variant) Validate() error {
	if v.Chromosome == "" {
		return fmt.Errorf("variant: chromosome is required")
	}
	if v.Position < 1 {
		return fmt.Errorf("variant %s: position must be 1 or greater", v)
	}
	if v.Reference == "" || v.Alternate == "" {
		return fmt.Errorf("variant %s: reference and alternate bases are required", v)
	}
	if _, err := NormalizeSequence(v.Reference); err != nil {
		return fmt.Errorf("variant %s: reference: %w", v, err)
	}
	if _, err := NormalizeSequence(v.Alternate); err != nil {
		return fmt.Errorf("variant %s: alternate: %w", v, err)
	}
	return nil
}

// ReferenceInterval is the 0-based span covered by the reference bases.
func (v Variant) ReferenceInterval() Interval {
	start := v.Position - 1
	return Interval{Chromosome: v.Chromosome, Start: start, End: start + int64(len(v.Reference))}
}

func (v Variant) String() string {
	return fmt.Sprintf("%s:%d:%s>%s", v.Chromosome, v.Position, v.Reference, v.Alternate)
}

package genome

import (
	"fmt"
	"strings"
	"unicode"
)

// Bases is the column order used for per-base matrices.
var Bases = [4]byte{'A', 'C', 'G', 'T'}

// BaseIndex returns the column of b in Bases, or -1.
func BaseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

// NormalizeSequence strips whitespace, uppercases and rejects anything but ACGTN.
func NormalizeSequence(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	s := b.String()
	if s == "" {
		return "", fmt.Errorf("empty sequence")
	}
	for i, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return "", fmt.Errorf("invalid base %q at %d; allowed: A C G T N", r, i+1)
		}
	}
	return s, nil
}

// PadSequence centres seq in a run of N of the given length. When the padding
// cannot be split evenly the extra base goes left if (length-len(seq))&length&1
// is set, otherwise right.
func PadSequence(seq string, length int) (string, error) {
	if len(seq) > length {
		return "", fmt.Errorf("sequence of %d bases exceeds context length %d", len(seq), length)
	}
	marg := length - len(seq)
	left := marg/2 + (marg & length & 1)
	return strings.Repeat("N", left) + seq + strings.Repeat("N", marg-left), nil
}

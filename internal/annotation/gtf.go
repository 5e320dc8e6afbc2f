package annotation

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sozercan/genome-workbench/internal/genome"
)

const proteinCoding = "protein_coding"

type Gene struct {
	ID       string
	Name     string
	Type     string
	Strand   string
	Interval genome.Interval
}

type Transcript struct {
	ID       string
	GeneID   string
	GeneName string
	Strand   string
	Interval genome.Interval
	// Length is the summed exon length, or the genomic span when no exons were listed.
	Length int64
}

// Index holds protein-coding genes and the longest transcript of each.
type Index struct {
	genes       map[string]Gene
	transcripts []Transcript
}

// Gene looks a gene up by its HGNC symbol, case-insensitively.
func (idx *Index) Gene(symbol string) (Gene, bool) {
	g, ok := idx.genes[strings.ToUpper(strings.TrimSpace(symbol))]
	return g, ok
}

// Transcripts returns the longest transcripts overlapping iv, ordered by start.
func (idx *Index) Transcripts(iv genome.Interval) []Transcript {
	var out []Transcript
	for _, t := range idx.transcripts {
		if t.Interval.Overlaps(iv) {
			out = append(out, t)
		}
	}
	return out
}

func (idx *Index) Len() int { return len(idx.genes) }

type transcriptRec struct {
	Transcript
	exonLen int64
}

// Parse reads a GENCODE-style GTF. Only protein-coding genes and transcripts are kept.
func Parse(r io.Reader) (*Index, error) {
	idx := &Index{genes: make(map[string]Gene)}
	recs := make(map[string]*transcriptRec)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		f := strings.Split(text, "\t")
		if len(f) != 9 {
			return nil, fmt.Errorf("gtf line %d: expected 9 tab-separated fields, got %d", line, len(f))
		}
		feature := f[2]
		if feature != "gene" && feature != "transcript" && feature != "exon" {
			continue
		}
		start, err1 := strconv.ParseInt(f[3], 10, 64)
		end, err2 := strconv.ParseInt(f[4], 10, 64)
		if err1 != nil || err2 != nil || start < 1 || end < start {
			return nil, fmt.Errorf("gtf line %d: bad coordinates %q-%q", line, f[3], f[4])
		}
		iv := genome.Interval{Chromosome: f[0], Start: start - 1, End: end}
		attrs := parseAttributes(f[8])

		switch feature {
		case "gene":
			if attrs["gene_type"] != proteinCoding || attrs["gene_name"] == "" {
				continue
			}
			key := strings.ToUpper(attrs["gene_name"])
			if _, dup := idx.genes[key]; dup {
				// PAR copies on chrY repeat the chrX symbol; keep the first.
				continue
			}
			idx.genes[key] = Gene{
				ID:       attrs["gene_id"],
				Name:     attrs["gene_name"],
				Type:     attrs["gene_type"],
				Strand:   f[6],
				Interval: iv,
			}
		case "transcript":
			if attrs["transcript_type"] != proteinCoding {
				continue
			}
			id := attrs["transcript_id"]
			recs[id] = &transcriptRec{Transcript: Transcript{
				ID:       id,
				GeneID:   attrs["gene_id"],
				GeneName: attrs["gene_name"],
				Strand:   f[6],
				Interval: iv,
			}}
		case "exon":
			if rec, ok := recs[attrs["transcript_id"]]; ok {
				rec.exonLen += iv.Width()
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gtf: %w", err)
	}

	longest := make(map[string]*transcriptRec)
	for _, rec := range recs {
		rec.Length = rec.exonLen
		if rec.Length == 0 {
			rec.Length = rec.Interval.Width()
		}
		cur, ok := longest[rec.GeneID]
		if !ok || rec.Length > cur.Length || (rec.Length == cur.Length && rec.ID < cur.ID) {
			longest[rec.GeneID] = rec
		}
	}
	for _, rec := range longest {
		idx.transcripts = append(idx.transcripts, rec.Transcript)
	}
	sort.Slice(idx.transcripts, func(i, j int) bool {
		a, b := idx.transcripts[i], idx.transcripts[j]
		if a.Interval.Chromosome != b.Interval.Chromosome {
			return a.Interval.Chromosome < b.Interval.Chromosome
		}
		if a.Interval.Start != b.Interval.Start {
			return a.Interval.Start < b.Interval.Start
		}
		return a.ID < b.ID
	})
	return idx, nil
}

// parseAttributes reads `key "value"; key2 "value2";`. Repeated keys (tag) keep the first value.
func parseAttributes(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = strings.Trim(strings.TrimSpace(val), `"`)
	}
	return out
}

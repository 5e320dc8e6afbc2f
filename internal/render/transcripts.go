package render

import (
	"github.com/sozercan/genome-workbench/internal/annotation"
	"github.com/sozercan/genome-workbench/internal/genome"
)

// TranscriptSection lists the longest protein-coding transcripts inside iv.
func TranscriptSection(iv genome.Interval, ts []annotation.Transcript) Section {
	table := Table{
		ID:      "transcripts",
		Title:   "Protein-coding transcripts",
		Caption: []string{fmtCount(len(ts)) + " transcripts in " + iv.String()},
		Columns: []string{"gene_name", "gene_id", "transcript_id", "chromosome", "start", "end", "strand", "length"},
		Rows:    make([][]string, 0, len(ts)),
	}
	for _, t := range ts {
		table.Rows = append(table.Rows, []string{
			t.GeneName, t.GeneID, t.ID, t.Interval.Chromosome,
			fmtPos(t.Interval.Start), fmtPos(t.Interval.End), t.Strand, fmtPos(t.Length),
		})
	}
	return Section{Title: "Gene annotation", Tables: []Table{table}}
}

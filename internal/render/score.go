package render

import (
	"strconv"

	"github.com/sozercan/genome-workbench/apimodels"
)

var tidyColumns = []string{
	"variant_id", "scorer", "gene_id", "gene_name", "gene_type", "gene_strand",
	"track_name", "track_strand", "ontology_curie", "biosample_name", "raw_score",
}

func scoreSections(scores []apimodels.VariantScore) ([]Section, error) {
	if len(scores) == 0 {
		return nil, malformed("score: response has no variant scores")
	}
	sections := make([]Section, 0, len(scores))
	for i := range scores {
		vs := &scores[i]
		what := "score " + vs.Scorer
		rows := 1
		if len(vs.Genes) > 0 {
			rows = len(vs.Genes)
		}
		if err := validateMatrix(what, vs.Values, rows, len(vs.Tracks)); err != nil {
			return nil, err
		}
		sections = append(sections, scoreSection(i, vs))
	}
	return sections, nil
}

// strandsMatch drops stranded tracks scored against a gene on the other strand.
func strandsMatch(gene, track string) bool {
	if (gene != "+" && gene != "-") || (track != "+" && track != "-") {
		return true
	}
	return gene == track
}

func scoreSection(idx int, vs *apimodels.VariantScore) Section {
	suffix := strconv.Itoa(idx)
	title := vs.Scorer
	if title == "" {
		title = "Scorer " + suffix
	}

	sec := Section{
		Title: title,
		Metrics: []Metric{
			{Label: "Genes", Value: fmtCount(len(vs.Genes))},
			{Label: "Tracks", Value: fmtCount(len(vs.Tracks))},
			{Label: "Total scores", Value: fmtCount(len(vs.Values) * len(vs.Tracks))},
		},
	}

	if len(vs.Genes) > 0 {
		genes := Table{
			ID:      "genes-" + suffix,
			Title:   "Scored genes",
			Columns: []string{"gene_id", "gene_name", "gene_type", "strand"},
			Rows:    make([][]string, 0, len(vs.Genes)),
		}
		for _, g := range vs.Genes {
			genes.Rows = append(genes.Rows, []string{g.GeneID, g.GeneName, g.GeneType, g.Strand})
		}
		sec.Tables = append(sec.Tables, genes)
	}

	tidy := Table{
		ID:      "scores-" + suffix,
		Title:   "Variant scores",
		Columns: tidyColumns,
	}
	if len(vs.Genes) > 0 && hasStrandedTracks(vs.Tracks) {
		tidy.Caption = []string{"Stranded tracks are listed only for genes on the same strand."}
	}
	for r, row := range vs.Values {
		var gene apimodels.GeneInfo
		if len(vs.Genes) > 0 {
			gene = vs.Genes[r]
		}
		for c, v := range row {
			tr := vs.Tracks[c]
			if !strandsMatch(gene.Strand, tr.Strand) {
				continue
			}
			tidy.Rows = append(tidy.Rows, []string{
				vs.Variant.String(), vs.Scorer, gene.GeneID, gene.GeneName, gene.GeneType, gene.Strand,
				trackName(tr, c), tr.Strand, tr.OntologyCURIE, tr.BiosampleName, fmtFloat(v),
			})
		}
	}
	sec.Tables = append(sec.Tables, tidy)
	return sec
}

func hasStrandedTracks(tracks []apimodels.TrackMetadata) bool {
	for _, t := range tracks {
		if t.Strand == "+" || t.Strand == "-" {
			return true
		}
	}
	return false
}

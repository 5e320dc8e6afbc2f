package apimodels

import "github.com/sozercan/genome-workbench/internal/genome"

// AnalysisResponse holds the fields consumed from one remote call. Exactly one of
// the payload fields is set, matching Action.
type AnalysisResponse struct {
	Action Action `json:"action"`

	// Predictions for the sequence and interval actions
	Output *PredictionOutput `json:"output,omitempty"`

	// Reference and alternate predictions for the variant action
	Variant *VariantOutput `json:"variant,omitempty"`

	// One entry per scorer for the score action
	Scores []VariantScore `json:"scores,omitempty"`

	// One entry per mutated base for the ISM action
	ISM []ISMScore `json:"ism,omitempty"`
}

type PredictionOutput struct {
	Tracks []TrackData `json:"tracks"`
}

// Track returns the data for one output type, or nil.
func (p *PredictionOutput) Track(ot genome.OutputType) *TrackData {
	if p == nil {
		return nil
	}
	for i := range p.Tracks {
		if p.Tracks[i].OutputType == ot {
			return &p.Tracks[i]
		}
	}
	return nil
}

// TrackData is a positions x tracks matrix for one output type.
type TrackData struct {
	OutputType genome.OutputType `json:"outputType"`

	Interval *genome.Interval `json:"interval,omitempty"`

	// Bases per row
	Resolution int `json:"resolution"`

	// Values[position][track]
	Values [][]float64 `json:"values"`

	// One entry per track column
	Metadata []TrackMetadata `json:"metadata"`
}

type TrackMetadata struct {
	Name          string `json:"name"`
	Strand        string `json:"strand"`
	OntologyCURIE string `json:"ontologyCurie,omitempty"`
	BiosampleName string `json:"biosampleName,omitempty"`
	Assay         string `json:"assay,omitempty"`
}

type VariantOutput struct {
	Reference PredictionOutput `json:"reference"`
	Alternate PredictionOutput `json:"alternate"`
}

// VariantScore is a genes x tracks score matrix. Genes is empty for scorers that
// are not gene-centric, in which case Values has a single row.
type VariantScore struct {
	Variant genome.Variant  `json:"variant"`
	Scorer  string          `json:"scorer"`
	Genes   []GeneInfo      `json:"genes"`
	Tracks  []TrackMetadata `json:"tracks"`
	Values  [][]float64     `json:"values"`
}

type GeneInfo struct {
	GeneID   string `json:"geneId"`
	GeneName string `json:"geneName"`
	GeneType string `json:"geneType,omitempty"`
	Strand   string `json:"strand"`
}

// ISMScore is the score of one single-base substitution, one value per track.
type ISMScore struct {
	Variant genome.Variant `json:"variant"`
	Values  []float64      `json:"values"`
}

package apimodels

import "github.com/sozercan/genome-workbench/internal/genome"

// Action names one analysis tab / remote operation.
type Action string

const (
	ActionSequence Action = "sequence"
	ActionInterval Action = "interval"
	ActionVariant  Action = "variant"
	ActionScore    Action = "score"
	ActionISM      Action = "ism"
)

var Actions = []Action{ActionSequence, ActionInterval, ActionVariant, ActionScore, ActionISM}

func (a Action) Valid() bool {
	switch a {
	case ActionSequence, ActionInterval, ActionVariant, ActionScore, ActionISM:
		return true
	}
	return false
}

type ScorerKind string

const (
	// ScorerRecommended asks the service for its recommended scorer of an output type.
	ScorerRecommended ScorerKind = "RECOMMENDED"
	// ScorerCenterMask scores a window of Width bases around the variant.
	ScorerCenterMask ScorerKind = "CENTER_MASK"
)

type Scorer struct {
	Kind        ScorerKind         `json:"kind"`
	OutputType  genome.OutputType  `json:"outputType"`
	Width       int                `json:"width,omitempty"`
	Aggregation genome.Aggregation `json:"aggregation,omitempty"`
}

func (s Scorer) String() string {
	if s.Kind == ScorerCenterMask {
		return string(s.Kind) + "/" + string(s.OutputType) + "/" + string(s.Aggregation)
	}
	return string(s.Kind) + "/" + string(s.OutputType)
}

// AnalysisRequest is built from the session immediately before each remote call.
type AnalysisRequest struct {
	// Action selects the remote operation
	Action Action `json:"action"`

	Organism genome.Organism `json:"organism"`

	// Sequence is already padded to the model context length
	Sequence string `json:"sequence,omitempty"`

	// Interval is the model input window for interval, variant, score and ISM actions
	Interval *genome.Interval `json:"interval,omitempty"`

	Variant *genome.Variant `json:"variant,omitempty"`

	// ISMInterval is the window whose every base is mutated
	ISMInterval *genome.Interval `json:"ismInterval,omitempty"`

	RequestedOutputs []genome.OutputType `json:"requestedOutputs,omitempty"`

	// OntologyTerms are UBERON CURIEs
	OntologyTerms []string `json:"ontologyTerms,omitempty"`

	Scorer *Scorer `json:"scorer,omitempty"`
}

package analysis

import (
	"context"
	"slices"
	"strings"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/annotation"
	"github.com/sozercan/genome-workbench/internal/genome"
	"github.com/sozercan/genome-workbench/internal/session"
)

// Limits of the ISM form sliders.
const (
	MinISMWidth     = 64
	MaxISMWidth     = 512
	MinScoringWidth = 101
	MaxScoringWidth = 1001
)

func invalid(format string, args ...any) error {
	return apimodels.NewError(apimodels.InvalidInput, format, args...)
}

// BuildRequest validates the form inputs of one tab and assembles the Analysis
// Request. A gene symbol is resolved through genes, which may be nil.
func BuildRequest(ctx context.Context, genes *annotation.Source, organism genome.Organism, action apimodels.Action, p session.Params) (apimodels.AnalysisRequest, error) {
	req := apimodels.AnalysisRequest{Action: action, Organism: organism}
	if !action.Valid() {
		return req, invalid("unknown action %q", action)
	}
	if !genome.ValidOrganism(organism) {
		return req, invalid("unsupported organism %q", organism)
	}

	var lengths []int
	switch action {
	case apimodels.ActionSequence:
		lengths = genome.SequenceLengths
	case apimodels.ActionISM:
		lengths = genome.ISMLengths
	default:
		lengths = genome.IntervalLengths
	}
	if !slices.Contains(lengths, p.SequenceLength) {
		return req, invalid("sequence length %d is not one of %v", p.SequenceLength, lengths)
	}
	length := int64(p.SequenceLength)

	switch action {
	case apimodels.ActionSequence, apimodels.ActionInterval, apimodels.ActionVariant:
		outputs, err := trackOutputs(p.OutputTypes)
		if err != nil {
			return req, err
		}
		terms, err := ontologyTerms(p.Tissues)
		if err != nil {
			return req, err
		}
		req.RequestedOutputs = outputs
		req.OntologyTerms = terms
	}

	switch action {
	case apimodels.ActionSequence:
		seq, err := genome.NormalizeSequence(p.Sequence)
		if err != nil {
			return req, invalid("%v", err)
		}
		padded, err := genome.PadSequence(seq, p.SequenceLength)
		if err != nil {
			return req, invalid("%v", err)
		}
		req.Sequence = padded

	case apimodels.ActionInterval:
		iv, err := requestInterval(ctx, genes, p)
		if err != nil {
			return req, err
		}
		window := iv.Resize(length)
		req.Interval = &window

	case apimodels.ActionVariant, apimodels.ActionScore:
		v, err := genome.ParseVariant(p.Variant)
		if err != nil {
			return req, invalid("%v", err)
		}
		window := v.ReferenceInterval().Resize(length)
		req.Variant = &v
		req.Interval = &window
		if action == apimodels.ActionScore {
			ot := genome.OutputType(p.ScorerOutput)
			if !genome.ValidOutputType(ot) {
				return req, invalid("unknown scorer output type %q", p.ScorerOutput)
			}
			req.Scorer = &apimodels.Scorer{Kind: apimodels.ScorerRecommended, OutputType: ot}
		}

	case apimodels.ActionISM:
		iv, err := genome.ParseInterval(p.Interval)
		if err != nil {
			return req, invalid("%v", err)
		}
		if p.ISMWidth < MinISMWidth || p.ISMWidth > MaxISMWidth {
			return req, invalid("ISM width must be between %d and %d", MinISMWidth, MaxISMWidth)
		}
		if p.ScoringWidth < MinScoringWidth || p.ScoringWidth > MaxScoringWidth {
			return req, invalid("scoring width must be between %d and %d", MinScoringWidth, MaxScoringWidth)
		}
		ot := genome.OutputType(p.ScorerOutput)
		if !genome.ValidOutputType(ot) {
			return req, invalid("unknown scorer output type %q", p.ScorerOutput)
		}
		agg := genome.Aggregation(p.Aggregation)
		if !genome.ValidAggregation(agg) {
			return req, invalid("unknown aggregation %q", p.Aggregation)
		}
		window := iv.Resize(length)
		ism := window.Resize(int64(p.ISMWidth))
		req.Interval = &window
		req.ISMInterval = &ism
		req.Scorer = &apimodels.Scorer{
			Kind:        apimodels.ScorerCenterMask,
			OutputType:  ot,
			Width:       p.ScoringWidth,
			Aggregation: agg,
		}
	}
	return req, nil
}

// requestInterval resolves the interval tab's region, by gene symbol when one
// is given and by coordinates otherwise.
func requestInterval(ctx context.Context, genes *annotation.Source, p session.Params) (genome.Interval, error) {
	symbol := strings.TrimSpace(p.GeneSymbol)
	if symbol == "" {
		iv, err := genome.ParseInterval(p.Interval)
		if err != nil {
			return iv, invalid("%v", err)
		}
		return iv, nil
	}
	if !genes.Enabled() {
		return genome.Interval{}, invalid("gene symbol lookup is not configured; enter coordinates instead")
	}
	idx, err := genes.Index(ctx)
	if err != nil {
		return genome.Interval{}, apimodels.WrapError(apimodels.TransportError, err, "gene annotation is unavailable")
	}
	g, ok := idx.Gene(symbol)
	if !ok {
		return genome.Interval{}, invalid("unknown protein-coding gene %q", symbol)
	}
	return g.Interval, nil
}

func trackOutputs(raw []string) ([]genome.OutputType, error) {
	if len(raw) == 0 {
		return nil, invalid("select at least one output type")
	}
	out := make([]genome.OutputType, 0, len(raw))
	for _, s := range raw {
		ot := genome.OutputType(s)
		if !slices.Contains(genome.TrackOutputTypes, ot) {
			return nil, invalid("output type %q cannot be shown as a track", s)
		}
		if !slices.Contains(out, ot) {
			out = append(out, ot)
		}
	}
	return out, nil
}

func ontologyTerms(tissues []string) ([]string, error) {
	if len(tissues) == 0 {
		return nil, invalid("select at least one tissue")
	}
	terms := make([]string, 0, len(tissues))
	for _, t := range tissues {
		curie, ok := genome.TissueCURIE(t)
		if !ok {
			return nil, invalid("unknown tissue %q", t)
		}
		if !slices.Contains(terms, curie) {
			terms = append(terms, curie)
		}
	}
	return terms, nil
}

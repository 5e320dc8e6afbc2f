// Package session holds the per-browser Session Configuration. A Config is an
// immutable value: every edit returns a new Config and the Store swaps it in.
package session

import (
	"maps"
	"slices"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/genome"
)

// Params are the raw form inputs of one analysis tab.
type Params struct {
	Sequence       string   `json:"sequence,omitempty"`
	GeneSymbol     string   `json:"geneSymbol,omitempty"`
	Interval       string   `json:"interval,omitempty"`
	Variant        string   `json:"variant,omitempty"`
	SequenceLength int      `json:"sequenceLength,omitempty"`
	OutputTypes    []string `json:"outputTypes,omitempty"`
	Tissues        []string `json:"tissues,omitempty"`
	ScorerOutput   string   `json:"scorerOutput,omitempty"`
	ISMWidth       int      `json:"ismWidth,omitempty"`
	ScoringWidth   int      `json:"scoringWidth,omitempty"`
	Aggregation    string   `json:"aggregation,omitempty"`
	Explain        bool     `json:"explain,omitempty"`
}

func (p Params) clone() Params {
	p.OutputTypes = slices.Clone(p.OutputTypes)
	p.Tissues = slices.Clone(p.Tissues)
	return p
}

// DefaultParams mirrors the example inputs shown when a tab is first opened.
func DefaultParams(a apimodels.Action) Params {
	switch a {
	case apimodels.ActionSequence:
		return Params{
			Sequence:       "GATTACA",
			SequenceLength: 2048,
			OutputTypes:    []string{string(genome.DNase)},
			Tissues:        []string{"Lung"},
		}
	case apimodels.ActionInterval:
		return Params{
			Interval:       "chr22:36000000-36100000",
			SequenceLength: 1048576,
			OutputTypes:    []string{string(genome.RNASeq)},
			Tissues:        []string{"Lung"},
		}
	case apimodels.ActionVariant:
		return Params{
			Variant:        "chr22:36201698:A>C",
			SequenceLength: 1048576,
			OutputTypes:    []string{string(genome.RNASeq)},
			Tissues:        []string{"Lung"},
		}
	case apimodels.ActionScore:
		return Params{
			Variant:        "chr22:36201698:A>C",
			SequenceLength: 1048576,
			ScorerOutput:   string(genome.RNASeq),
		}
	case apimodels.ActionISM:
		return Params{
			Interval:       "chr20:3753000-3753400",
			SequenceLength: 2048,
			ISMWidth:       256,
			ScorerOutput:   string(genome.RNASeq),
			ScoringWidth:   501,
			Aggregation:    string(genome.DiffMean),
		}
	}
	return Params{}
}

// Config is the Session Configuration. The zero value has no key and default params.
type Config struct {
	apiKey   string
	organism genome.Organism
	params   map[apimodels.Action]Params
}

func NewConfig() Config {
	return Config{organism: genome.DefaultOrganism}
}

func (c Config) APIKey() string { return c.apiKey }

func (c Config) HasAPIKey() bool { return c.apiKey != "" }

func (c Config) Organism() genome.Organism {
	if c.organism == "" {
		return genome.DefaultOrganism
	}
	return c.organism
}

// Params returns a copy of the stored inputs of a tab, or its defaults.
func (c Config) Params(a apimodels.Action) Params {
	if p, ok := c.params[a]; ok {
		return p.clone()
	}
	return DefaultParams(a)
}

func (c Config) WithAPIKey(key string) Config {
	c.apiKey = key
	return c
}

func (c Config) WithOrganism(o genome.Organism) Config {
	c.organism = o
	return c
}

func (c Config) WithParams(a apimodels.Action, p Params) Config {
	next := maps.Clone(c.params)
	if next == nil {
		next = make(map[apimodels.Action]Params, 1)
	}
	next[a] = p.clone()
	c.params = next
	return c
}

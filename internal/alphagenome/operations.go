package alphagenome

import "github.com/sozercan/genome-workbench/apimodels"

const trackFields = `
  outputType
  interval { chromosome start end }
  resolution
  values
  metadata { name strand ontologyCurie biosampleName assay }`

const predictSequenceQuery = `
query PredictSequence($sequence: String!, $organism: Organism!, $requestedOutputs: [OutputType!]!, $ontologyTerms: [String!]) {
  predictSequence(sequence: $sequence, organism: $organism, requestedOutputs: $requestedOutputs, ontologyTerms: $ontologyTerms) {
    tracks {` + trackFields + `
    }
  }
}`

const predictIntervalQuery = `
query PredictInterval($interval: IntervalInput!, $organism: Organism!, $requestedOutputs: [OutputType!]!, $ontologyTerms: [String!]) {
  predictInterval(interval: $interval, organism: $organism, requestedOutputs: $requestedOutputs, ontologyTerms: $ontologyTerms) {
    tracks {` + trackFields + `
    }
  }
}`

const predictVariantQuery = `
query PredictVariant($interval: IntervalInput!, $variant: VariantInput!, $organism: Organism!, $requestedOutputs: [OutputType!]!, $ontologyTerms: [String!]) {
  predictVariant(interval: $interval, variant: $variant, organism: $organism, requestedOutputs: $requestedOutputs, ontologyTerms: $ontologyTerms) {
    reference {
      tracks {` + trackFields + `
      }
    }
    alternate {
      tracks {` + trackFields + `
      }
    }
  }
}`

const scoreVariantQuery = `
query ScoreVariant($interval: IntervalInput!, $variant: VariantInput!, $organism: Organism!, $scorers: [ScorerInput!]!) {
  scoreVariant(interval: $interval, variant: $variant, organism: $organism, scorers: $scorers) {
    variant { chromosome position referenceBases alternateBases }
    scorer
    genes { geneId geneName geneType strand }
    tracks { name strand ontologyCurie biosampleName assay }
    values
  }
}`

const scoreISMQuery = `
query ScoreIsmVariants($interval: IntervalInput!, $ismInterval: IntervalInput!, $organism: Organism!, $scorers: [ScorerInput!]!) {
  scoreIsmVariants(interval: $interval, ismInterval: $ismInterval, organism: $organism, scorers: $scorers) {
    variant { chromosome position referenceBases alternateBases }
    values
  }
}`

// operation describes how one Action maps onto the remote schema.
type operation struct {
	name  string
	query string
}

var operations = map[apimodels.Action]operation{
	apimodels.ActionSequence: {"PredictSequence", predictSequenceQuery},
	apimodels.ActionInterval: {"PredictInterval", predictIntervalQuery},
	apimodels.ActionVariant:  {"PredictVariant", predictVariantQuery},
	apimodels.ActionScore:    {"ScoreVariant", scoreVariantQuery},
	apimodels.ActionISM:      {"ScoreIsmVariants", scoreISMQuery},
}

type predictSequenceData struct {
	PredictSequence *apimodels.PredictionOutput `json:"predictSequence"`
}

type predictIntervalData struct {
	PredictInterval *apimodels.PredictionOutput `json:"predictInterval"`
}

type predictVariantData struct {
	PredictVariant *apimodels.VariantOutput `json:"predictVariant"`
}

type scoreVariantData struct {
	ScoreVariant []apimodels.VariantScore `json:"scoreVariant"`
}

type scoreISMData struct {
	ScoreIsmVariants []apimodels.ISMScore `json:"scoreIsmVariants"`
}

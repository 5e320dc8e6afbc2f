package alphagenome

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/config"
	"github.com/sozercan/genome-workbench/internal/genome"
)

type gqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := NewClient(config.AlphaGenomeConfig{
		Endpoint:     ts.URL,
		APIKeyHeader: "X-Goog-Api-Key",
		Timeout:      2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func intervalRequest() apimodels.AnalysisRequest {
	iv := genome.Interval{Chromosome: "chr1", Start: 1000, End: 2000}
	return apimodels.AnalysisRequest{
		Action:           apimodels.ActionInterval,
		Organism:         genome.HomoSapiens,
		Interval:         &iv,
		RequestedOutputs: []genome.OutputType{genome.RNASeq},
		OntologyTerms:    []string{"UBERON:0002048"},
	}
}

func TestCallPredictInterval(t *testing.T) {
	mockResponse := `
{
  "data": {
    "predictInterval": {
      "tracks": [
        {
          "outputType": "RNA_SEQ",
          "interval": {"chromosome": "chr1", "start": 1000, "end": 2000},
          "resolution": 500,
          "values": [[0.5], [1.5]],
          "metadata": [{"name": "lung", "strand": "+", "ontologyCurie": "UBERON:0002048"}]
        }
      ]
    }
  }
}`
	var got gqlRequest
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Goog-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		respond(mockResponse)(w, r)
	})

	resp, err := c.Call(context.Background(), "abc123", intervalRequest())
	require.NoError(t, err)

	assert.Equal(t, "abc123", header)
	assert.Equal(t, "PredictInterval", got.OperationName)
	assert.Contains(t, got.Query, "predictInterval(")
	assert.Equal(t, "HOMO_SAPIENS", got.Variables["organism"])
	assert.Equal(t, map[string]any{"chromosome": "chr1", "start": float64(1000), "end": float64(2000)}, got.Variables["interval"])
	assert.Equal(t, []any{"RNA_SEQ"}, got.Variables["requestedOutputs"])

	require.NotNil(t, resp.Output)
	assert.Equal(t, apimodels.ActionInterval, resp.Action)
	td := resp.Output.Track(genome.RNASeq)
	require.NotNil(t, td)
	assert.Equal(t, [][]float64{{0.5}, {1.5}}, td.Values)
	assert.Equal(t, "UBERON:0002048", td.Metadata[0].OntologyCURIE)
}

func TestCallScoreVariant(t *testing.T) {
	mockResponse := `
{
  "data": {
    "scoreVariant": [
      {
        "variant": {"chromosome": "chr22", "position": 36201698, "referenceBases": "A", "alternateBases": "C"},
        "scorer": "RECOMMENDED/RNA_SEQ",
        "genes": [{"geneId": "ENSG00000100342", "geneName": "APOL1", "geneType": "protein_coding", "strand": "+"}],
        "tracks": [{"name": "lung", "strand": "+"}],
        "values": [[0.25]]
      }
    ]
  }
}`
	var got gqlRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		respond(mockResponse)(w, r)
	})

	v := genome.Variant{Chromosome: "chr22", Position: 36201698, Reference: "A", Alternate: "C"}
	req := intervalRequest()
	req.Action = apimodels.ActionScore
	req.Variant = &v
	req.Scorer = &apimodels.Scorer{Kind: apimodels.ScorerRecommended, OutputType: genome.RNASeq}

	resp, err := c.Call(context.Background(), "abc123", req)
	require.NoError(t, err)
	assert.Equal(t, "ScoreVariant", got.OperationName)
	assert.NotContains(t, got.Variables, "requestedOutputs")
	assert.Len(t, got.Variables["scorers"], 1)
	require.Len(t, resp.Scores, 1)
	assert.Equal(t, "APOL1", resp.Scores[0].Genes[0].GeneName)
	assert.Equal(t, "C", resp.Scores[0].Variant.Alternate)
}

// capture records the GraphQL request and answers with body.
func capture(got *gqlRequest, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(got)
		respond(body)(w, r)
	}
}

func TestCallPredictSequence(t *testing.T) {
	mockResponse := `
{
  "data": {
    "predictSequence": {
      "tracks": [
        {
          "outputType": "DNASE",
          "resolution": 1,
          "values": [[0.1, 0.2], [0.3, 0.4]],
          "metadata": [{"name": "lung"}, {"name": "liver", "assay": "DNase-seq"}]
        }
      ]
    }
  }
}`
	var got gqlRequest
	c := newTestClient(t, capture(&got, mockResponse))

	req := apimodels.AnalysisRequest{
		Action:           apimodels.ActionSequence,
		Organism:         genome.HomoSapiens,
		Sequence:         "NNGATTACANN",
		RequestedOutputs: []genome.OutputType{genome.DNase},
		OntologyTerms:    []string{"UBERON:0002048", "UBERON:0002107"},
	}
	resp, err := c.Call(context.Background(), "abc123", req)
	require.NoError(t, err)

	assert.Equal(t, "PredictSequence", got.OperationName)
	assert.Contains(t, got.Query, "predictSequence(")
	assert.Equal(t, "NNGATTACANN", got.Variables["sequence"])
	assert.NotContains(t, got.Variables, "interval")
	assert.Equal(t, []any{"DNASE"}, got.Variables["requestedOutputs"])
	assert.Equal(t, []any{"UBERON:0002048", "UBERON:0002107"}, got.Variables["ontologyTerms"])

	td := resp.Output.Track(genome.DNase)
	require.NotNil(t, td)
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, td.Values)
	require.Len(t, td.Metadata, 2)
	assert.Equal(t, "DNase-seq", td.Metadata[1].Assay)
	assert.Nil(t, resp.Variant)
}

func TestCallPredictVariant(t *testing.T) {
	mockResponse := `
{
  "data": {
    "predictVariant": {
      "reference": {
        "tracks": [{"outputType": "RNA_SEQ", "resolution": 1, "values": [[1.0], [2.0]], "metadata": [{"name": "lung"}]}]
      },
      "alternate": {
        "tracks": [{"outputType": "RNA_SEQ", "resolution": 1, "values": [[1.5], [0.5]], "metadata": [{"name": "lung"}]}]
      }
    }
  }
}`
	var got gqlRequest
	c := newTestClient(t, capture(&got, mockResponse))

	v := genome.Variant{Chromosome: "chr22", Position: 36201698, Reference: "A", Alternate: "C"}
	req := intervalRequest()
	req.Action = apimodels.ActionVariant
	req.Variant = &v

	resp, err := c.Call(context.Background(), "abc123", req)
	require.NoError(t, err)

	assert.Equal(t, "PredictVariant", got.OperationName)
	assert.Contains(t, got.Query, "predictVariant(")
	assert.Equal(t, map[string]any{
		"chromosome": "chr22", "position": float64(36201698), "referenceBases": "A", "alternateBases": "C",
	}, got.Variables["variant"])
	assert.Equal(t, []any{"RNA_SEQ"}, got.Variables["requestedOutputs"])
	assert.NotContains(t, got.Variables, "scorers")

	require.NotNil(t, resp.Variant)
	assert.Nil(t, resp.Output)
	ref := resp.Variant.Reference.Track(genome.RNASeq)
	alt := resp.Variant.Alternate.Track(genome.RNASeq)
	require.NotNil(t, ref)
	require.NotNil(t, alt)
	assert.Equal(t, [][]float64{{1.0}, {2.0}}, ref.Values)
	assert.Equal(t, [][]float64{{1.5}, {0.5}}, alt.Values)
}

func TestCallScoreISM(t *testing.T) {
	mockResponse := `
{
  "data": {
    "scoreIsmVariants": [
      {"variant": {"chromosome": "chr20", "position": 3753100, "referenceBases": "G", "alternateBases": "A"}, "values": [0.75]},
      {"variant": {"chromosome": "chr20", "position": 3753100, "referenceBases": "G", "alternateBases": "T"}, "values": [-0.25]}
    ]
  }
}`
	var got gqlRequest
	c := newTestClient(t, capture(&got, mockResponse))

	window := genome.Interval{Chromosome: "chr20", Start: 3752176, End: 3754224}
	ism := window.Resize(256)
	req := apimodels.AnalysisRequest{
		Action:      apimodels.ActionISM,
		Organism:    genome.HomoSapiens,
		Interval:    &window,
		ISMInterval: &ism,
		Scorer: &apimodels.Scorer{
			Kind:        apimodels.ScorerCenterMask,
			OutputType:  genome.RNASeq,
			Width:       501,
			Aggregation: genome.DiffMean,
		},
	}
	resp, err := c.Call(context.Background(), "abc123", req)
	require.NoError(t, err)

	assert.Equal(t, "ScoreIsmVariants", got.OperationName)
	assert.Contains(t, got.Query, "scoreIsmVariants(")
	assert.Equal(t, map[string]any{
		"chromosome": "chr20", "start": float64(ism.Start), "end": float64(ism.End),
	}, got.Variables["ismInterval"])
	assert.Equal(t, []any{map[string]any{
		"kind": "CENTER_MASK", "outputType": "RNA_SEQ", "width": float64(501), "aggregation": "DIFF_MEAN",
	}}, got.Variables["scorers"])
	assert.NotContains(t, got.Variables, "requestedOutputs")

	require.Len(t, resp.ISM, 2)
	assert.Equal(t, "T", resp.ISM[1].Variant.Alternate)
	assert.Equal(t, int64(3753100), resp.ISM[0].Variant.Position)
	assert.Equal(t, []float64{-0.25}, resp.ISM[1].Values)
}

func TestCallErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    apimodels.ErrorKind
		message string
	}{
		{
			name: "unauthorized status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
			kind: apimodels.AuthenticationFailed,
		},
		{
			name: "forbidden status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "denied", http.StatusForbidden)
			},
			kind: apimodels.AuthenticationFailed,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			kind: apimodels.TransportError,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
			kind: apimodels.TransportError,
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": {"message": "interval end beyond chromosome"}}`))
			},
			kind:    apimodels.ServiceError,
			message: "interval end beyond chromosome",
		},
		{
			name:    "graphql unauthenticated",
			handler: respond(`{"errors": [{"message": "API key not valid", "extensions": {"code": "UNAUTHENTICATED"}}]}`),
			kind:    apimodels.AuthenticationFailed,
			message: "API key not valid",
		},
		{
			name:    "graphql rejection",
			handler: respond(`{"errors": [{"message": "unsupported chromosome chrZ"}, {"message": "bad interval"}]}`),
			kind:    apimodels.ServiceError,
			message: "unsupported chromosome chrZ; bad interval",
		},
		{
			name:    "unreadable body",
			handler: respond(`<html>gateway</html>`),
			kind:    apimodels.TransportError,
		},
		{
			name:    "wrong field type",
			handler: respond(`{"data": {"predictInterval": {"tracks": [{"outputType": "RNA_SEQ", "values": "oops"}]}}}`),
			kind:    apimodels.RenderError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Call(context.Background(), "abc123", intervalRequest())
			require.Error(t, err)
			assert.Equal(t, tt.kind, apimodels.KindOf(err))
			if tt.message != "" {
				var apiErr *apimodels.Error
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestCallTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c, err := NewClient(config.AlphaGenomeConfig{Endpoint: ts.URL, APIKeyHeader: "X-Goog-Api-Key", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "abc123", intervalRequest())
	require.Error(t, err)
	assert.Equal(t, apimodels.TransportError, apimodels.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestCallIncompleteRequestMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	req := intervalRequest()
	req.Action = apimodels.ActionVariant
	_, err := c.Call(context.Background(), "abc123", req)
	assert.Equal(t, apimodels.InvalidInput, apimodels.KindOf(err))

	_, err = c.Call(context.Background(), "abc123", apimodels.AnalysisRequest{Action: "bogus"})
	assert.Equal(t, apimodels.InvalidInput, apimodels.KindOf(err))
	assert.Zero(t, calls.Load())
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.AlphaGenomeConfig{APIKeyHeader: "X"})
	assert.Error(t, err)
	_, err = NewClient(config.AlphaGenomeConfig{Endpoint: "http://localhost"})
	assert.Error(t, err)
}

func TestServiceMessage(t *testing.T) {
	assert.Equal(t, "x", serviceMessage(`{"message": "x"}`))
	assert.Equal(t, "plain text", serviceMessage("plain text"))
	assert.Equal(t, "request rejected", serviceMessage(""))
}

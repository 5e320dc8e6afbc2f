package alphagenome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/config"
)

// Client calls the remote prediction service. It holds no credentials; the
// session's key is attached per call.
type Client struct {
	endpoint   string
	keyHeader  string
	httpClient *http.Client
}

func NewClient(cfg config.AlphaGenomeConfig) (*Client, error) {
	slog.Info("Creating prediction service client", "endpoint", cfg.Endpoint, "timeout", cfg.Timeout)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("prediction service endpoint cannot be empty")
	}
	if cfg.APIKeyHeader == "" {
		return nil, fmt.Errorf("prediction service key header cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		keyHeader:  cfg.APIKeyHeader,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// StatusError is a non-200 answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// keyedDoer attaches the API key and turns non-200 responses into *StatusError
// before genqlient sees them.
type keyedDoer struct {
	client *http.Client
	header string
	key    string
}

func (d keyedDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set(d.header, d.key)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// Call performs exactly one request for req and returns the decoded response.
// Errors are *apimodels.Error of kind AuthenticationFailed, TransportError,
// ServiceError or RenderError.
func (c *Client) Call(ctx context.Context, apiKey string, req apimodels.AnalysisRequest) (*apimodels.AnalysisResponse, error) {
	op, ok := operations[req.Action]
	if !ok {
		return nil, apimodels.NewError(apimodels.InvalidInput, "unknown action %q", req.Action)
	}
	vars, err := variables(req)
	if err != nil {
		return nil, err
	}

	gql := graphql.NewClient(c.endpoint, keyedDoer{client: c.httpClient, header: c.keyHeader, key: apiKey})
	resp := &apimodels.AnalysisResponse{Action: req.Action}

	var data any
	switch req.Action {
	case apimodels.ActionSequence:
		data = &predictSequenceData{}
	case apimodels.ActionInterval:
		data = &predictIntervalData{}
	case apimodels.ActionVariant:
		data = &predictVariantData{}
	case apimodels.ActionScore:
		data = &scoreVariantData{}
	case apimodels.ActionISM:
		data = &scoreISMData{}
	}

	slog.Info("Calling prediction service", "operation", op.name)
	start := time.Now()
	err = gql.MakeRequest(ctx,
		&graphql.Request{OpName: op.name, Query: op.query, Variables: vars},
		&graphql.Response{Data: data},
	)
	if err != nil {
		classified := classify(err)
		slog.Error("Prediction service call failed", "operation", op.name, "kind", apimodels.KindOf(classified), "error", err)
		return nil, classified
	}
	slog.Info("Prediction service call completed", "operation", op.name, "duration", time.Since(start))

	switch d := data.(type) {
	case *predictSequenceData:
		resp.Output = d.PredictSequence
	case *predictIntervalData:
		resp.Output = d.PredictInterval
	case *predictVariantData:
		resp.Variant = d.PredictVariant
	case *scoreVariantData:
		resp.Scores = d.ScoreVariant
	case *scoreISMData:
		resp.ISM = d.ScoreIsmVariants
	}
	return resp, nil
}

func variables(req apimodels.AnalysisRequest) (map[string]any, error) {
	missing := func(what string) error {
		return apimodels.NewError(apimodels.InvalidInput, "%s request needs %s", req.Action, what)
	}
	vars := map[string]any{"organism": req.Organism}
	switch req.Action {
	case apimodels.ActionSequence:
		if req.Sequence == "" {
			return nil, missing("a sequence")
		}
		vars["sequence"] = req.Sequence
	case apimodels.ActionInterval, apimodels.ActionVariant, apimodels.ActionScore, apimodels.ActionISM:
		if req.Interval == nil {
			return nil, missing("an interval")
		}
		vars["interval"] = req.Interval
	}
	switch req.Action {
	case apimodels.ActionSequence, apimodels.ActionInterval, apimodels.ActionVariant:
		vars["requestedOutputs"] = req.RequestedOutputs
		vars["ontologyTerms"] = req.OntologyTerms
	case apimodels.ActionScore, apimodels.ActionISM:
		if req.Scorer == nil {
			return nil, missing("a scorer")
		}
		vars["scorers"] = []apimodels.Scorer{*req.Scorer}
	}
	switch req.Action {
	case apimodels.ActionVariant, apimodels.ActionScore:
		if req.Variant == nil {
			return nil, missing("a variant")
		}
		vars["variant"] = req.Variant
	case apimodels.ActionISM:
		if req.ISMInterval == nil {
			return nil, missing("an ISM interval")
		}
		vars["ismInterval"] = req.ISMInterval
	}
	return vars, nil
}

var authCodes = map[string]bool{
	"UNAUTHENTICATED":   true,
	"PERMISSION_DENIED": true,
}

func classify(err error) error {
	var (
		statusErr *StatusError
		gqlErrs   gqlerror.List
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		netErr    net.Error
	)
	switch {
	case errors.As(err, &statusErr):
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return apimodels.WrapError(apimodels.AuthenticationFailed, err, "API key rejected (HTTP %d)", statusErr.StatusCode)
		case statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500:
			return apimodels.WrapError(apimodels.TransportError, err, "service unavailable (HTTP %d)", statusErr.StatusCode)
		default:
			return apimodels.WrapError(apimodels.ServiceError, err, "%s", serviceMessage(statusErr.Body))
		}
	case errors.As(err, &gqlErrs):
		msgs := make([]string, 0, len(gqlErrs))
		for _, e := range gqlErrs {
			if code, _ := e.Extensions["code"].(string); authCodes[code] {
				return apimodels.WrapError(apimodels.AuthenticationFailed, err, "%s", e.Message)
			}
			msgs = append(msgs, e.Message)
		}
		return apimodels.WrapError(apimodels.ServiceError, err, "%s", strings.Join(msgs, "; "))
	case errors.As(err, &typeErr):
		return apimodels.WrapError(apimodels.RenderError, err, "field %q has an unexpected type", typeErr.Field)
	case errors.As(err, &syntaxErr):
		return apimodels.WrapError(apimodels.TransportError, err, "unreadable response")
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apimodels.WrapError(apimodels.TransportError, err, "request timed out")
	case errors.Is(err, context.Canceled):
		return apimodels.WrapError(apimodels.TransportError, err, "request canceled")
	}
	return apimodels.WrapError(apimodels.TransportError, err, "request failed")
}

// serviceMessage extracts a readable message from an error body, which may be
// JSON ({"error": {"message": ...}} or {"message": ...}) or plain text.
func serviceMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if body == "" {
		return "request rejected"
	}
	return body
}

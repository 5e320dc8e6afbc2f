// Package analysis runs one user action: it checks the session, builds the
// Analysis Request, calls the prediction service once and renders the answer.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/annotation"
	"github.com/sozercan/genome-workbench/internal/render"
	"github.com/sozercan/genome-workbench/internal/session"
)

// Predictor performs one remote call.
type Predictor interface {
	Call(ctx context.Context, apiKey string, req apimodels.AnalysisRequest) (*apimodels.AnalysisResponse, error)
}

// Summarizer writes a plain-language summary of a result.
type Summarizer interface {
	Summarize(ctx context.Context, res *render.Result) (string, error)
}

type Analyzer struct {
	predictor Predictor
	genes     *annotation.Source
	narrator  Summarizer

	// inflight collapses identical submissions by one session
	inflight singleflight.Group
}

// New returns an Analyzer. genes and narrator are optional.
func New(predictor Predictor, genes *annotation.Source, narrator Summarizer) *Analyzer {
	return &Analyzer{
		predictor: predictor,
		genes:     genes,
		narrator:  narrator,
	}
}

// CanNarrate reports whether results can be summarised.
func (a *Analyzer) CanNarrate() bool { return a.narrator != nil }

// CanLookupGenes reports whether gene symbols can be resolved.
func (a *Analyzer) CanLookupGenes() bool { return a.genes.Enabled() }

// Run performs action for the session. Concurrent calls with the same
// sessionID and an identical Analysis Request share one remote call and one
// Result. A caller whose ctx ends stops waiting; the shared call carries on for
// the others, bounded by the client's timeout.
func (a *Analyzer) Run(ctx context.Context, sessionID string, cfg session.Config, action apimodels.Action) (*render.Result, error) {
	if !action.Valid() {
		return nil, invalid("unknown action %q", action)
	}
	if !cfg.HasAPIKey() {
		return nil, apimodels.NewError(apimodels.MissingCredential, "no API key set for this session")
	}

	params := cfg.Params(action)
	req, err := BuildRequest(ctx, a.genes, cfg.Organism(), action, params)
	if err != nil {
		slog.Info("Rejected analysis input", "action", action, "error", err)
		return nil, err
	}

	key, err := inflightKey(sessionID, req, params.Explain)
	if err != nil {
		return nil, apimodels.WrapError(apimodels.InvalidInput, err, "request cannot be encoded")
	}
	callCtx := context.WithoutCancel(ctx)
	ch := a.inflight.DoChan(key, func() (any, error) {
		return a.run(callCtx, cfg.APIKey(), req, params)
	})

	select {
	case <-ctx.Done():
		return nil, apimodels.WrapError(apimodels.TransportError, ctx.Err(), "request canceled")
	case r := <-ch:
		if r.Shared {
			slog.Debug("Joined in-flight analysis", "action", action)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*render.Result), nil
	}
}

// inflightKey identifies a submission by its session and the exact request it
// would send.
func inflightKey(sessionID string, req apimodels.AnalysisRequest, explain bool) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return sessionID + "/" + strconv.FormatBool(explain) + "/" + string(b), nil
}

func (a *Analyzer) run(ctx context.Context, apiKey string, req apimodels.AnalysisRequest, params session.Params) (*render.Result, error) {
	slog.Info("Starting analysis", "action", req.Action, "organism", req.Organism)
	startTime := time.Now()

	resp, err := a.predictor.Call(ctx, apiKey, req)
	if err != nil {
		return nil, err
	}

	res, err := render.Render(req, resp)
	if err != nil {
		slog.Error("Failed to render analysis response", "action", req.Action, "error", err)
		return nil, err
	}

	if section, ok := a.transcripts(ctx, req); ok {
		res.Sections = append(res.Sections, section)
	}

	if params.Explain && a.narrator != nil {
		text, err := a.narrator.Summarize(ctx, res)
		if err != nil {
			slog.Warn("Result narration failed", "action", req.Action, "error", err)
		} else {
			res.Narrative = text
		}
	}

	res.Metadata.Duration = time.Since(startTime).Round(time.Millisecond).String()
	slog.Info("Analysis completed", "action", req.Action, "duration", res.Metadata.Duration, "tables", len(res.Tables()))
	return res, nil
}

// transcripts builds the gene annotation section for interval and variant
// predictions when an annotation source is configured.
func (a *Analyzer) transcripts(ctx context.Context, req apimodels.AnalysisRequest) (render.Section, bool) {
	if !a.genes.Enabled() || req.Interval == nil {
		return render.Section{}, false
	}
	switch req.Action {
	case apimodels.ActionInterval, apimodels.ActionVariant:
	default:
		return render.Section{}, false
	}
	idx, err := a.genes.Index(ctx)
	if err != nil {
		slog.Warn("Gene annotation unavailable", "error", err)
		return render.Section{}, false
	}
	return render.TranscriptSection(*req.Interval, idx.Transcripts(*req.Interval)), true
}

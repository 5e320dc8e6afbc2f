package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sozercan/genome-workbench/apimodels"
	"github.com/sozercan/genome-workbench/internal/annotation"
	"github.com/sozercan/genome-workbench/internal/genome"
	"github.com/sozercan/genome-workbench/internal/render"
	"github.com/sozercan/genome-workbench/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePredictor records every call. When release is set, calls block until it is closed.
type fakePredictor struct {
	mu    sync.Mutex
	calls []apimodels.AnalysisRequest
	keys  []string

	release chan struct{}
	resp    *apimodels.AnalysisResponse
	err     error
}

func (f *fakePredictor) Call(ctx context.Context, apiKey string, req apimodels.AnalysisRequest) (*apimodels.AnalysisResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.keys = append(f.keys, apiKey)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	resp.Action = req.Action
	return &resp, nil
}

func (f *fakePredictor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSummarizer struct {
	text string
	err  error
}

func (f fakeSummarizer) Summarize(context.Context, *render.Result) (string, error) {
	return f.text, f.err
}

func oneTrack() *apimodels.AnalysisResponse {
	return &apimodels.AnalysisResponse{
		Output: &apimodels.PredictionOutput{Tracks: []apimodels.TrackData{{
			OutputType: genome.RNASeq,
			Resolution: 1,
			Values:     [][]float64{{0.5}, {1.5}},
			Metadata:   []apimodels.TrackMetadata{{Name: "lung", OntologyCURIE: "UBERON:0002048"}},
		}}},
	}
}

func intervalSession(key string) session.Config {
	p := session.DefaultParams(apimodels.ActionInterval)
	p.Interval = "chr1:1000-2000"
	p.SequenceLength = 131072
	return session.NewConfig().WithAPIKey(key).WithParams(apimodels.ActionInterval, p)
}

func TestRunWithoutKeyMakesNoCall(t *testing.T) {
	f := &fakePredictor{resp: oneTrack()}
	a := New(f, nil, nil)
	for _, action := range apimodels.Actions {
		_, err := a.Run(context.Background(), "s1", session.NewConfig(), action)
		assert.Equal(t, apimodels.MissingCredential, apimodels.KindOf(err), "action %s", action)
	}
	assert.Zero(t, f.count())
}

func TestRunInterval(t *testing.T) {
	f := &fakePredictor{resp: oneTrack()}
	a := New(f, nil, nil)

	res, err := a.Run(context.Background(), "s1", intervalSession("abc123"), apimodels.ActionInterval)
	require.NoError(t, err)
	require.Equal(t, 1, f.count())
	assert.Equal(t, "abc123", f.keys[0])

	req := f.calls[0]
	assert.Equal(t, genome.Interval{Chromosome: "chr1", Start: 1500 - 65536, End: 1500 + 65536}, *req.Interval)
	assert.Equal(t, []genome.OutputType{genome.RNASeq}, req.RequestedOutputs)
	assert.Equal(t, []string{"UBERON:0002048"}, req.OntologyTerms)

	assert.Len(t, res.Tables(), 1)
	assert.Len(t, res.Charts(), 1)
	assert.NotEmpty(t, res.Metadata.Duration)
	assert.Empty(t, res.Narrative)
}

func TestRunCollapsesDuplicateSubmissions(t *testing.T) {
	f := &fakePredictor{resp: oneTrack(), release: make(chan struct{})}
	a := New(f, nil, nil)
	cfg := intervalSession("abc123")

	const n = 8
	var ready, done sync.WaitGroup
	results := make([]*render.Result, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		ready.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			ready.Done()
			results[i], errs[i] = a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
		}(i)
	}
	ready.Wait()
	require.Eventually(t, func() bool { return f.count() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	done.Wait()

	assert.Equal(t, 1, f.count(), "duplicate submissions share one call")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}

	// a later submission is a new action and calls again
	_, err := a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count())
}

func TestRunDifferentInputsDoNotShare(t *testing.T) {
	f := &fakePredictor{resp: oneTrack(), release: make(chan struct{})}
	a := New(f, nil, nil)

	first := intervalSession("abc123")
	p := first.Params(apimodels.ActionInterval)
	p.Interval = "chr7:5000000-5001000"
	second := first.WithParams(apimodels.ActionInterval, p)

	var wg sync.WaitGroup
	var r1, r2 *render.Result
	var err1, err2 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		r1, err1 = a.Run(context.Background(), "s1", first, apimodels.ActionInterval)
	}()
	require.Eventually(t, func() bool { return f.count() == 1 }, time.Second, time.Millisecond)
	go func() {
		defer wg.Done()
		r2, err2 = a.Run(context.Background(), "s1", second, apimodels.ActionInterval)
	}()
	require.Eventually(t, func() bool { return f.count() == 2 }, time.Second, time.Millisecond)
	close(f.release)
	wg.Wait()

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, strings.HasPrefix(r1.Metadata.Interval, "chr1:"), r1.Metadata.Interval)
	assert.True(t, strings.HasPrefix(r2.Metadata.Interval, "chr7:"), r2.Metadata.Interval)
	assert.NotSame(t, r1, r2)
}

func TestRunCallerCancelDoesNotFailJoinedCaller(t *testing.T) {
	f := &fakePredictor{resp: oneTrack(), release: make(chan struct{})}
	a := New(f, nil, nil)
	cfg := intervalSession("abc123")

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.Run(ctx, "s1", cfg, apimodels.ActionInterval)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return f.count() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		res *render.Result
		err error
	}
	joined := make(chan outcome, 1)
	go func() {
		res, err := a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
		joined <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.Equal(t, apimodels.TransportError, apimodels.KindOf(<-firstErr))

	close(f.release)
	got := <-joined
	require.NoError(t, got.err)
	assert.NotNil(t, got.res)
	assert.Equal(t, 1, f.count())
}

func TestRunSeparateSessionsDoNotShare(t *testing.T) {
	f := &fakePredictor{resp: oneTrack()}
	a := New(f, nil, nil)
	cfg := intervalSession("abc123")
	_, err := a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "s2", cfg, apimodels.ActionInterval)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count())
}

func TestRunPropagatesErrorKinds(t *testing.T) {
	for _, kind := range []apimodels.ErrorKind{apimodels.AuthenticationFailed, apimodels.TransportError, apimodels.ServiceError} {
		f := &fakePredictor{err: apimodels.NewError(kind, "nope")}
		_, err := New(f, nil, nil).Run(context.Background(), "s1", intervalSession("k"), apimodels.ActionInterval)
		assert.Equal(t, kind, apimodels.KindOf(err))
		assert.Equal(t, 1, f.count(), "never retried")
	}
}

func TestRunMalformedResponse(t *testing.T) {
	resp := oneTrack()
	resp.Output.Tracks[0].Values = [][]float64{{1}, {1, 2}}
	f := &fakePredictor{resp: resp}
	res, err := New(f, nil, nil).Run(context.Background(), "s1", intervalSession("k"), apimodels.ActionInterval)
	assert.Nil(t, res)
	assert.Equal(t, apimodels.RenderError, apimodels.KindOf(err))
}

func TestRunNarration(t *testing.T) {
	cfg := intervalSession("k")
	p := cfg.Params(apimodels.ActionInterval)
	p.Explain = true
	cfg = cfg.WithParams(apimodels.ActionInterval, p)

	a := New(&fakePredictor{resp: oneTrack()}, nil, fakeSummarizer{text: "Signal is flat."})
	assert.True(t, a.CanNarrate())
	res, err := a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
	require.NoError(t, err)
	assert.Equal(t, "Signal is flat.", res.Narrative)

	a = New(&fakePredictor{resp: oneTrack()}, nil, fakeSummarizer{err: errors.New("quota")})
	res, err = a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
	require.NoError(t, err, "narration failures are not fatal")
	assert.Empty(t, res.Narrative)
}

const geneGTF = `chr19	HAVANA	gene	41003	42000	.	+	.	gene_id "ENSG1"; gene_type "protein_coding"; gene_name "CYP2B6";
chr19	HAVANA	transcript	41003	42000	.	+	.	gene_id "ENSG1"; transcript_id "ENST1"; transcript_type "protein_coding"; gene_name "CYP2B6";
`

func TestRunGeneSymbol(t *testing.T) {
	idx, err := annotation.Parse(strings.NewReader(geneGTF))
	require.NoError(t, err)
	f := &fakePredictor{resp: oneTrack()}
	a := New(f, annotation.NewStaticSource(idx), nil)
	assert.True(t, a.CanLookupGenes())

	p := session.DefaultParams(apimodels.ActionInterval)
	p.GeneSymbol = "cyp2b6"
	p.SequenceLength = 131072
	cfg := session.NewConfig().WithAPIKey("k").WithParams(apimodels.ActionInterval, p)

	res, err := a.Run(context.Background(), "s1", cfg, apimodels.ActionInterval)
	require.NoError(t, err)
	assert.Equal(t, int64(131072), f.calls[0].Interval.Width())
	assert.True(t, f.calls[0].Interval.Contains("chr19", 41500))

	tbl, ok := res.Table("transcripts")
	require.True(t, ok)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "CYP2B6", tbl.Rows[0][0])

	p.GeneSymbol = "NOPE1"
	_, err = a.Run(context.Background(), "s1", cfg.WithParams(apimodels.ActionInterval, p), apimodels.ActionInterval)
	assert.Equal(t, apimodels.InvalidInput, apimodels.KindOf(err))
	assert.Equal(t, 1, f.count())
}

func TestBuildRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("sequence is padded", func(t *testing.T) {
		p := session.DefaultParams(apimodels.ActionSequence)
		p.Sequence = " gattaca\n"
		req, err := BuildRequest(ctx, nil, genome.HomoSapiens, apimodels.ActionSequence, p)
		require.NoError(t, err)
		assert.Len(t, req.Sequence, 2048)
		assert.Contains(t, req.Sequence, "GATTACA")
		assert.Equal(t, []genome.OutputType{genome.DNase}, req.RequestedOutputs)
	})

	t.Run("variant window", func(t *testing.T) {
		req, err := BuildRequest(ctx, nil, genome.HomoSapiens, apimodels.ActionVariant, session.DefaultParams(apimodels.ActionVariant))
		require.NoError(t, err)
		require.NotNil(t, req.Variant)
		assert.Equal(t, int64(1048576), req.Interval.Width())
		assert.True(t, req.Interval.Contains("chr22", 36201697))
	})

	t.Run("score uses recommended scorer", func(t *testing.T) {
		req, err := BuildRequest(ctx, nil, genome.HomoSapiens, apimodels.ActionScore, session.DefaultParams(apimodels.ActionScore))
		require.NoError(t, err)
		assert.Equal(t, &apimodels.Scorer{Kind: apimodels.ScorerRecommended, OutputType: genome.RNASeq}, req.Scorer)
		assert.Empty(t, req.RequestedOutputs)
	})

	t.Run("ism windows", func(t *testing.T) {
		req, err := BuildRequest(ctx, nil, genome.HomoSapiens, apimodels.ActionISM, session.DefaultParams(apimodels.ActionISM))
		require.NoError(t, err)
		assert.Equal(t, int64(2048), req.Interval.Width())
		assert.Equal(t, int64(256), req.ISMInterval.Width())
		assert.Equal(t, req.Interval.Center(), req.ISMInterval.Center())
		assert.Equal(t, apimodels.ScorerCenterMask, req.Scorer.Kind)
		assert.Equal(t, 501, req.Scorer.Width)
		assert.Equal(t, genome.DiffMean, req.Scorer.Aggregation)
	})

	invalid := []struct {
		name   string
		action apimodels.Action
		edit   func(*session.Params)
	}{
		{"bad base", apimodels.ActionSequence, func(p *session.Params) { p.Sequence = "ACGU" }},
		{"sequence too long", apimodels.ActionSequence, func(p *session.Params) { p.Sequence = strings.Repeat("A", 2049) }},
		{"bad length", apimodels.ActionSequence, func(p *session.Params) { p.SequenceLength = 1000 }},
		{"no outputs", apimodels.ActionInterval, func(p *session.Params) { p.OutputTypes = nil }},
		{"contact maps are not tracks", apimodels.ActionInterval, func(p *session.Params) { p.OutputTypes = []string{"CONTACT_MAPS"} }},
		{"no tissues", apimodels.ActionSequence, func(p *session.Params) { p.Tissues = nil }},
		{"no tissues for variant", apimodels.ActionVariant, func(p *session.Params) { p.Tissues = []string{} }},
		{"unknown tissue", apimodels.ActionInterval, func(p *session.Params) { p.Tissues = []string{"Spleenish"} }},
		{"bad interval", apimodels.ActionInterval, func(p *session.Params) { p.Interval = "chr1:2000-1000" }},
		{"gene lookup unconfigured", apimodels.ActionInterval, func(p *session.Params) { p.GeneSymbol = "APOL1" }},
		{"bad variant", apimodels.ActionVariant, func(p *session.Params) { p.Variant = "chr22:abc:A>C" }},
		{"bad scorer", apimodels.ActionScore, func(p *session.Params) { p.ScorerOutput = "FOO" }},
		{"ism width", apimodels.ActionISM, func(p *session.Params) { p.ISMWidth = 1024 }},
		{"scoring width", apimodels.ActionISM, func(p *session.Params) { p.ScoringWidth = 5 }},
		{"aggregation", apimodels.ActionISM, func(p *session.Params) { p.Aggregation = "MEDIAN" }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := session.DefaultParams(tt.action)
			tt.edit(&p)
			_, err := BuildRequest(ctx, nil, genome.HomoSapiens, tt.action, p)
			assert.Equal(t, apimodels.InvalidInput, apimodels.KindOf(err))
		})
	}

	_, err := BuildRequest(ctx, nil, "DANIO_RERIO", apimodels.ActionInterval, session.DefaultParams(apimodels.ActionInterval))
	assert.Equal(t, apimodels.InvalidInput, apimodels.KindOf(err))
}

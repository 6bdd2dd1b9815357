package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"compass-backend/internal/compass"
	"compass-backend/internal/scoring"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/telemetry"
)

// ChartData is a fresh chart payload. Renderers must treat it as a
// replacement for the previous one.
type ChartData struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Max    int      `json:"max"`
}

// NewChartData builds the chart payload for v.
func NewChartData(v scoring.ScoreVector) ChartData {
	out := ChartData{
		Labels: make([]string, 0, len(scoring.Axes)),
		Values: make([]int, 0, len(scoring.Axes)),
		Max:    v.Max,
	}
	for _, axis := range scoring.Axes {
		out.Labels = append(out.Labels, axis.Label())
		out.Values = append(out.Values, v.Get(axis))
	}
	return out
}

// View is a snapshot of the orchestrator state for display.
type View struct {
	State      State                `json:"state"`
	Seq        uint64               `json:"seq"`
	Selections scoring.Selections   `json:"selections"`
	Missing    []scoring.Dimension  `json:"missing,omitempty"`
	Scores     *scoring.ScoreVector `json:"scores,omitempty"`
	Result     *Result              `json:"result,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// Renderer receives chart and view updates. Calls are serialized and made
// with the orchestrator lock held, so a Renderer must not call back into the
// Orchestrator.
type Renderer interface {
	RenderChart(ChartData)
	RenderView(View)
}

type nopRenderer struct{}

func (nopRenderer) RenderChart(ChartData) {}
func (nopRenderer) RenderView(View)       {}

// Options configures an Orchestrator.
type Options struct {
	Engine  *scoring.Engine
	Catalog *compass.Catalog
	// Completer enables augmented mode. Nil selects the static tables.
	Completer Completer
	Renderer  Renderer
	// Nonce overrides the per-request prompt nonce, mainly for tests.
	Nonce func() string
}

// Orchestrator drives the reducer and owns the single in-flight request.
type Orchestrator struct {
	engine    *scoring.Engine
	catalog   *compass.Catalog
	completer Completer
	renderer  Renderer
	nonce     func() string

	mu     sync.Mutex
	model  Model
	scores *scoring.ScoreVector
	cancel context.CancelFunc
	closed bool

	base     context.Context
	stopBase context.CancelFunc
	wg       sync.WaitGroup
}

// New builds an orchestrator in the idle state.
func New(opts Options) (*Orchestrator, error) {
	if opts.Engine == nil {
		return nil, errors.New("recommend: scoring engine is required")
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	if opts.Nonce == nil {
		opts.Nonce = func() string { return "" }
	}
	base, stop := context.WithCancel(context.Background())
	return &Orchestrator{
		engine:    opts.Engine,
		catalog:   opts.Catalog,
		completer: opts.Completer,
		renderer:  opts.Renderer,
		nonce:     opts.Nonce,
		model:     NewModel(),
		base:      base,
		stopBase:  stop,
	}, nil
}

// Select dispatches a SelectionChanged for a raw dimension id (aliases
// accepted).
func (o *Orchestrator) Select(dimension, value string) (View, error) {
	dim, err := scoring.ParseDimension(dimension)
	if err != nil {
		return o.View(), err
	}
	return o.Dispatch(SelectionChanged{Dimension: dim, Value: value}), nil
}

// Retry re-runs the current request.
func (o *Orchestrator) Retry() View {
	return o.Dispatch(Retry{})
}

// Dispatch applies msg and, when the selections became complete, scores them,
// renders the chart and starts the recommendation request before returning.
func (o *Orchestrator) Dispatch(msg Msg) View {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return o.viewLocked()
	}

	prevState := o.model.State
	next, load := reduce(o.model, msg)
	o.model = next

	if next.State != StateLoading || load {
		// Anything in flight no longer matches the displayed selections.
		o.cancelLocked()
	}
	if next.State == StateAwaitingInput {
		o.scores = nil
	}
	if load {
		o.startLocked()
	}

	if prevState != o.model.State || load {
		telemetry.Debug("recommend.transition", map[string]any{
			"from": string(prevState),
			"to":   string(o.model.State),
			"seq":  o.model.Seq,
		})
	}
	view := o.viewLocked()
	o.renderer.RenderView(view)
	return view
}

func (o *Orchestrator) startLocked() {
	seq := o.model.Seq
	sel := o.model.Selections.Clone()

	scores := o.engine.Score(sel)
	o.scores = &scores
	metrics.IncScore(string(scores.Scheme))
	o.renderer.RenderChart(NewChartData(scores))

	if o.completer == nil {
		o.model, _ = reduce(o.model, resultArrived{seq: seq, result: StaticRecommendation(sel)})
		return
	}

	ctx, cancel := context.WithCancel(o.base)
	o.cancel = cancel
	o.wg.Add(1)
	go o.fetch(ctx, seq, sel, scores)
}

func (o *Orchestrator) fetch(ctx context.Context, seq uint64, sel scoring.Selections, scores scoring.ScoreVector) {
	defer o.wg.Done()

	result, err := o.request(ctx, sel, scores)

	var msg Msg
	if err != nil {
		msg = requestFailed{seq: seq, message: UserMessage(err, DefaultFailureMessage)}
	} else {
		msg = resultArrived{seq: seq, result: result}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.model.Seq || o.model.State != StateLoading {
		telemetry.Debug("recommend.stale_result", map[string]any{
			"seq":     seq,
			"current": o.model.Seq,
			"failed":  err != nil,
		})
		return
	}
	if err != nil {
		telemetry.Warn("recommend.failed", map[string]any{"seq": seq, "error": err})
	}
	o.model, _ = reduce(o.model, msg)
	o.cancelLocked()
	if !o.closed {
		o.renderer.RenderView(o.viewLocked())
	}
}

func (o *Orchestrator) request(ctx context.Context, sel scoring.Selections, scores scoring.ScoreVector) (Result, error) {
	prompt, err := BuildCompassPrompt(PromptInput{
		Selections: sel,
		Scores:     scores,
		Catalog:    o.catalog,
		Nonce:      o.nonce(),
	})
	if err != nil {
		return Result{}, err
	}
	raw, err := o.completer.Complete(ctx, prompt, true)
	if err != nil {
		return Result{}, fmt.Errorf("request recommendation: %w", err)
	}
	return ParseResult(raw)
}

func (o *Orchestrator) cancelLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// View returns the current snapshot.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) viewLocked() View {
	m := o.model
	v := View{
		State:      m.State,
		Seq:        m.Seq,
		Selections: m.Selections.Clone(),
		Message:    m.Message,
	}
	if m.State == StateAwaitingInput {
		v.Missing = m.Selections.Missing()
	}
	if o.scores != nil {
		s := *o.scores
		v.Scores = &s
	}
	if m.Result != nil {
		r := *m.Result
		v.Result = &r
	}
	return v
}

// Wait blocks until the in-flight request, if any, has settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels the in-flight request and waits for it. Later dispatches are
// ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.cancelLocked()
	o.mu.Unlock()
	o.stopBase()
	o.wg.Wait()
}

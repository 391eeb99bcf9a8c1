package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stage is one node of the claim pipeline. A stage reads the shared state
// and writes only its own output fields.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *entities.PipelineState) error
}

// Options configures pipeline construction.
type Options struct {
	// PayerName is the payer identity used by rule validation.
	PayerName string

	// TopK is the snippet count for every knowledge query.
	TopK int

	// Clock supplies the transaction timestamp; nil means time.Now.
	Clock func() time.Time

	// Metrics, when set, records per-stage latency and run outcomes.
	Metrics *observability.Metrics
}

// Pipeline executes the fixed stage sequence: extraction, coding,
// validation, modifier reconciliation, formatting. One entry, one terminal
// state, no branching, no cycles; every stage runs exactly once per
// invocation. The pipeline owns the aggregate state's lifecycle and does
// no business logic of its own.
type Pipeline struct {
	stages  []Stage
	metrics *observability.Metrics
}

// New wires the five stages against the injected external collaborators.
func New(completion providers.CompletionProvider, knowledge providers.KnowledgeProvider, opts Options) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	return &Pipeline{
		stages: []Stage{
			NewExtractionStage(completion, knowledge, opts.TopK),
			NewCodingStage(completion, knowledge, opts.TopK),
			NewValidationStage(knowledge, opts.PayerName, opts.TopK),
			NewModifierStage(completion),
			NewFormatterStage(opts.Clock),
		},
		metrics: opts.Metrics,
	}
}

// Run processes one note to a terminal state. Stages execute strictly
// sequentially; each depends on the previous stage's output. A returned
// error is either an infrastructure failure of an external collaborator
// or the formatter's missing-required-value error. Malformed model
// content never surfaces here; the stages degrade it to empty fields.
func (p *Pipeline) Run(ctx context.Context, note string) (*entities.PipelineState, error) {
	state := &entities.PipelineState{Note: note}

	for _, stage := range p.stages {
		start := time.Now()
		err := stage.Run(ctx, state)
		p.recordStage(ctx, stage.Name(), time.Since(start), err)

		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", stage.Name(), err)
		}

		observability.LoggerFromContext(ctx).Debug().
			Str("stage", stage.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("pipeline stage complete")
	}

	return state, nil
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, elapsed time.Duration, err error) {
	if p.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.PipelineStageDuration.Record(ctx, float64(elapsed.Milliseconds()),
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("status", status),
		))
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/domain/repositories"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
	"github.com/clinicore/claimgen/pkg/retry"
)

// ClaimPipeline is the note-to-claim pipeline the service orchestrates
type ClaimPipeline interface {
	Run(ctx context.Context, note string) (*entities.PipelineState, error)
}

// ClaimService handles business logic for claim generation
type ClaimService struct {
	pipeline      ClaimPipeline
	repo          repositories.ClaimRepository
	risk          providers.DenialRiskProvider
	payerName     string
	retryExternal bool
	metrics       *observability.Metrics
	now           func() time.Time
}

// ClaimServiceOptions configures optional service collaborators.
type ClaimServiceOptions struct {
	// Risk, when set, enables best-effort denial-risk scoring of each
	// generated claim. Scoring failures never fail generation.
	Risk providers.DenialRiskProvider

	// RetryExternal enables bounded backoff retry of pipeline runs that
	// fail on infrastructure errors. Content degradation is never retried.
	RetryExternal bool

	// Metrics records run outcomes when set.
	Metrics *observability.Metrics

	// Clock supplies record timestamps; nil means time.Now.
	Clock func() time.Time
}

// NewClaimService creates a new claim service
func NewClaimService(p ClaimPipeline, repo repositories.ClaimRepository, payerName string, opts ClaimServiceOptions) *ClaimService {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &ClaimService{
		pipeline:      p,
		repo:          repo,
		risk:          opts.Risk,
		payerName:     payerName,
		retryExternal: opts.RetryExternal,
		metrics:       opts.Metrics,
		now:           now,
	}
}

// Generate runs one note through the pipeline and returns the terminal
// claim record. The stored copy is PHI-scrubbed; the returned copy is not.
func (s *ClaimService) Generate(ctx context.Context, note string) (*entities.ClaimRecord, error) {
	logger := observability.LoggerFromContext(ctx)

	state, err := s.runPipeline(ctx, note)
	if err != nil {
		s.recordRun(ctx, "error")
		return nil, err
	}
	s.recordRun(ctx, "ok")

	record := &entities.ClaimRecord{
		ID:               uuid.New().String(),
		Note:             note,
		Context:          state.Context,
		Bundle:           state.Bundle,
		RequiresModifier: state.RequiresModifier,
		Justification:    state.Justification,
		EDI:              state.EDI,
		CreatedAt:        s.now().UTC(),
	}

	s.scoreRisk(ctx, state, record)

	// The generated claim already exists; the audit copy feeds model
	// training and is persisted best-effort, like search indexing.
	if s.repo != nil {
		if err := s.repo.Create(ctx, s.scrubbed(record)); err != nil {
			logger.Warn().Err(err).Str("claim_id", record.ID).Msg("failed to persist claim audit record")
		}
	}

	return record, nil
}

// GetByID retrieves a persisted claim record
func (s *ClaimService) GetByID(ctx context.Context, id string) (*entities.ClaimRecord, error) {
	if s.repo == nil {
		return nil, apperrors.NewNotFoundError("claim persistence is not configured")
	}
	return s.repo.GetByID(ctx, id)
}

// List retrieves persisted claim records, newest first
func (s *ClaimService) List(ctx context.Context, filter repositories.ClaimFilter) ([]*entities.ClaimRecord, error) {
	if s.repo == nil {
		return []*entities.ClaimRecord{}, nil
	}
	return s.repo.List(ctx, filter)
}

// runPipeline executes the pipeline, optionally retrying infrastructure
// failures. Content-level errors surface immediately.
func (s *ClaimService) runPipeline(ctx context.Context, note string) (*entities.PipelineState, error) {
	if !s.retryExternal {
		return s.pipeline.Run(ctx, note)
	}

	var state *entities.PipelineState
	var permanentErr error

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 3

	err := retry.Do(ctx, cfg, func() error {
		st, err := s.pipeline.Run(ctx, note)
		if err != nil {
			if apperrors.IsExternal(err) {
				return err
			}
			permanentErr = err
			return nil
		}
		state = st
		permanentErr = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if permanentErr != nil {
		return nil, permanentErr
	}
	return state, nil
}

// scoreRisk attaches a denial-risk score when a scorer is configured.
// Failures log and leave the record unscored.
func (s *ClaimService) scoreRisk(ctx context.Context, state *entities.PipelineState, record *entities.ClaimRecord) {
	if s.risk == nil {
		return
	}

	score, err := s.risk.Score(ctx, BuildClaimFeatures(state, s.payerName))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("claim_id", record.ID).Msg("denial-risk scoring failed")
		if s.metrics != nil {
			s.metrics.RiskScoreCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		}
		return
	}

	record.RiskScore = &score.RiskScore
	if s.metrics != nil {
		s.metrics.RiskScoreCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
	}
}

// scrubbed returns a persistence copy with direct identifiers redacted.
func (s *ClaimService) scrubbed(record *entities.ClaimRecord) *entities.ClaimRecord {
	stored := *record
	stored.Note = ScrubPHI(record.Note, record.Context.Provider)
	if stored.Context.Provider != "" {
		stored.Context.Provider = RedactedPlaceholder
	}
	return &stored
}

func (s *ClaimService) recordRun(ctx context.Context, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ClaimRunCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

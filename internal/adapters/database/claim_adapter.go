package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/repositories"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// ClaimAdapter implements ClaimRepository
type ClaimAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClaimAdapter creates a new claim adapter
func NewClaimAdapter(client *postgres.Client) repositories.ClaimRepository {
	return &ClaimAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a terminal claim record
func (a *ClaimAdapter) Create(ctx context.Context, record *entities.ClaimRecord) error {
	contextJSON, err := json.Marshal(record.Context)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal encounter context", err)
	}
	bundleJSON, err := json.Marshal(record.Bundle)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal code bundle", err)
	}

	row := goqu.Record{
		"id":                record.ID,
		"note":              record.Note,
		"encounter_context": contextJSON,
		"code_bundle":       bundleJSON,
		"requires_modifier": record.RequiresModifier,
		"justification":     record.Justification,
		"edi":               record.EDI,
		"risk_score":        record.RiskScore,
		"created_at":        record.CreatedAt,
	}

	query, args, err := a.db.Insert("claims").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create claim record", err)
	}

	return nil
}

// GetByID retrieves a claim record by ID
func (a *ClaimAdapter) GetByID(ctx context.Context, id string) (*entities.ClaimRecord, error) {
	query, args, err := a.db.Select(
		"id", "note", "encounter_context", "code_bundle",
		"requires_modifier", "justification", "edi", "risk_score", "created_at",
	).From("claims").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	record, err := scanClaim(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("claim %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get claim record", err)
	}

	return record, nil
}

// List retrieves claim records, newest first
func (a *ClaimAdapter) List(ctx context.Context, filter repositories.ClaimFilter) ([]*entities.ClaimRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	ds := a.db.Select(
		"id", "note", "encounter_context", "code_bundle",
		"requires_modifier", "justification", "edi", "risk_score", "created_at",
	).From("claims").
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint(filter.Offset))

	if filter.RequiresModifier != nil {
		ds = ds.Where(goqu.Ex{"requires_modifier": *filter.RequiresModifier})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list claim records", err)
	}
	defer rows.Close()

	records := []*entities.ClaimRecord{}
	for rows.Next() {
		record, err := scanClaim(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan claim record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate claim records", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entities.ClaimRecord, error) {
	record := &entities.ClaimRecord{}
	var contextJSON, bundleJSON []byte
	var riskScore sql.NullFloat64

	err := row.Scan(
		&record.ID,
		&record.Note,
		&contextJSON,
		&bundleJSON,
		&record.RequiresModifier,
		&record.Justification,
		&record.EDI,
		&riskScore,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contextJSON, &record.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal encounter context: %w", err)
	}
	if err := json.Unmarshal(bundleJSON, &record.Bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal code bundle: %w", err)
	}
	if riskScore.Valid {
		record.RiskScore = &riskScore.Float64
	}

	return record, nil
}

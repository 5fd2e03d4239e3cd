package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"postgen/internal/domain"
	"postgen/internal/infra"
	"postgen/internal/sqlinline"
)

// MaxPageSize bounds one page of history.
const MaxPageSize = 100

// GenerationRepositoryPG implements domain.GenerationRepository using PostgreSQL.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewGenerationRepository constructs a new generation repository instance.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql, now: time.Now}
}

// Create inserts the record and assigns its ID.
func (r *GenerationRepositoryPG) Create(ctx context.Context, g *domain.Generation) error {
	if g == nil {
		return fmt.Errorf("%w: generation is required", domain.ErrInvalidInput)
	}
	id := uuid.NewString()
	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	createdAt = createdAt.UTC()
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		id,
		string(g.InputKind),
		g.InputContent,
		g.Hook,
		g.Caption,
		g.Cta,
		g.FinalOutput,
		g.Cost,
		g.HookCost,
		g.CaptionCost,
		g.CtaCost,
		g.MergeCost,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	g.ID = id
	g.CreatedAt = createdAt
	return nil
}

// List returns one page of summaries, newest first, with the total count.
func (r *GenerationRepositoryPG) List(ctx context.Context, page, pageSize int) ([]domain.GenerationSummary, int, error) {
	if page < 1 {
		return nil, 0, fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidInput)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, 0, fmt.Errorf("%w: page_size must be between 1 and %d", domain.ErrInvalidInput, MaxPageSize)
	}

	var total int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountGenerations).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generations: %w", err)
	}

	rows, err := r.sql.Query(ctx, sqlinline.QListGenerations, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.GenerationSummary, 0, pageSize)
	for rows.Next() {
		var (
			item domain.GenerationSummary
			kind string
		)
		if err := rows.Scan(&item.ID, &kind, &item.InputContent, &item.FinalOutput, &item.Cost, &item.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan generation: %w", err)
		}
		item.InputKind = domain.InputKind(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list generations: %w", err)
	}
	return items, total, nil
}

// GetByID loads one record; unknown or malformed IDs yield domain.ErrNotFound.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var (
		g    domain.Generation
		kind string
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectGenerationByID, id).Scan(
		&g.ID,
		&kind,
		&g.InputContent,
		&g.Hook,
		&g.Caption,
		&g.Cta,
		&g.FinalOutput,
		&g.Cost,
		&g.HookCost,
		&g.CaptionCost,
		&g.CtaCost,
		&g.MergeCost,
		&g.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select generation: %w", err)
	}
	g.InputKind = domain.InputKind(kind)
	return &g, nil
}

// Delete removes one record.
func (r *GenerationRepositoryPG) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteGeneration, id)
	if err != nil {
		return fmt.Errorf("delete generation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)

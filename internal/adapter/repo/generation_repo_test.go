package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"postgen/internal/domain"
	"postgen/internal/sqlinline"
)

type fakeExecutor struct {
	execQuery string
	execArgs  []any
	execTag   pgconn.CommandTag
	execErr   error

	rowQuery  string
	rowArgs   []any
	rowValues []any
	rowErr    error

	queryArgs []any
	rows      [][]any
	queryErr  error
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execQuery = query
	f.execArgs = args
	return f.execTag, f.execErr
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	f.rowQuery = query
	f.rowArgs = args
	return fakeRow{values: f.rowValues, err: f.rowErr}
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.queryArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.rows[r.idx])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx], nil
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		src := reflect.ValueOf(v)
		if !src.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", v, target.Elem().Type())
		}
		target.Elem().Set(src)
	}
	return nil
}

func TestGenerationCreateAssignsIDAndTimestamp(t *testing.T) {
	exec := &fakeExecutor{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := NewGenerationRepository(exec)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	g := domain.NewGeneration(domain.InputKindTopic, "coffee", domain.GenerationResult{
		Hook: "H", Caption: "C", Cta: "T", FinalArtifact: "H\n\nC\n\nT", Costs: domain.StaticCostBreakdown(),
	})
	if err := repo.Create(context.Background(), g); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := uuid.Parse(g.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", g.ID)
	}
	if !g.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %s, want %s", g.CreatedAt, fixed)
	}
	if exec.execQuery != sqlinline.QInsertGeneration {
		t.Fatalf("unexpected query")
	}
	if len(exec.execArgs) != 13 {
		t.Fatalf("expected 13 args, got %d", len(exec.execArgs))
	}
	if exec.execArgs[1] != "topic" || exec.execArgs[6] != "H\n\nC\n\nT" {
		t.Fatalf("unexpected args %v", exec.execArgs)
	}
}

func TestGenerationCreatePropagatesErrors(t *testing.T) {
	exec := &fakeExecutor{execErr: errors.New("insert failed")}
	repo := NewGenerationRepository(exec)
	g := &domain.Generation{InputKind: domain.InputKindPrompt, InputContent: "x"}
	if err := repo.Create(context.Background(), g); err == nil {
		t.Fatal("expected error")
	}
	if g.ID != "" {
		t.Fatalf("ID should stay empty on failure, got %q", g.ID)
	}
}

func TestGenerationListPaginates(t *testing.T) {
	created := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	exec := &fakeExecutor{
		rowValues: []any{42},
		rows: [][]any{
			{"11111111-1111-1111-1111-111111111111", "topic", "coffee", "post one", 0.0005, created},
			{"22222222-2222-2222-2222-222222222222", "prompt", "write about tea", "post two", 0.0005, created.Add(-time.Hour)},
		},
	}
	repo := NewGenerationRepository(exec)
	items, total, err := repo.List(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 42 {
		t.Fatalf("total = %d, want 42", total)
	}
	if len(items) != 2 || items[0].InputKind != domain.InputKindTopic || items[1].InputContent != "write about tea" {
		t.Fatalf("unexpected items %+v", items)
	}
	if exec.queryArgs[0] != 10 || exec.queryArgs[1] != 20 {
		t.Fatalf("limit/offset = %v, want 10/20", exec.queryArgs)
	}
}

func TestGenerationListRejectsBadPaging(t *testing.T) {
	repo := NewGenerationRepository(&fakeExecutor{})
	for _, tc := range []struct{ page, size int }{{0, 10}, {1, 0}, {1, 101}} {
		if _, _, err := repo.List(context.Background(), tc.page, tc.size); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("List(%d, %d) expected ErrInvalidInput, got %v", tc.page, tc.size, err)
		}
	}
}

func TestGenerationGetByID(t *testing.T) {
	id := "33333333-3333-3333-3333-333333333333"
	created := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	exec := &fakeExecutor{rowValues: []any{
		id, "prompt", "content", "H", "C", "T", "H\n\nC\n\nT",
		0.0005, 0.00011, 0.00028, 0.00006, 0.00005, created,
	}}
	repo := NewGenerationRepository(exec)
	g, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if g.ID != id || g.InputKind != domain.InputKindPrompt || g.CaptionCost != 0.00028 || !g.CreatedAt.Equal(created) {
		t.Fatalf("unexpected generation %+v", g)
	}
	if exec.rowArgs[0] != id {
		t.Fatalf("unexpected query args %v", exec.rowArgs)
	}
}

func TestGenerationGetByIDNotFound(t *testing.T) {
	repo := NewGenerationRepository(&fakeExecutor{rowErr: pgx.ErrNoRows})
	if _, err := repo.GetByID(context.Background(), "44444444-4444-4444-4444-444444444444"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	exec := &fakeExecutor{}
	repo = NewGenerationRepository(exec)
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if exec.rowQuery != "" {
		t.Fatalf("malformed ids should not reach the database")
	}
}

func TestGenerationDelete(t *testing.T) {
	id := "55555555-5555-5555-5555-555555555555"
	exec := &fakeExecutor{execTag: pgconn.NewCommandTag("DELETE 1")}
	repo := NewGenerationRepository(exec)
	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if exec.execQuery != sqlinline.QDeleteGeneration {
		t.Fatalf("unexpected query")
	}

	exec = &fakeExecutor{execTag: pgconn.NewCommandTag("DELETE 0")}
	repo = NewGenerationRepository(exec)
	if err := repo.Delete(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

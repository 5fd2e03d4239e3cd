package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"postgen/internal/domain"
	"postgen/internal/providers/runpod"
)

type fakePipeline struct {
	result   *domain.GenerationResult
	err      error
	calls    int
	kind     domain.InputKind
	content  string
	ctxAlive bool
}

func (f *fakePipeline) Run(ctx context.Context, kind domain.InputKind, content string) (*domain.GenerationResult, error) {
	f.calls++
	f.kind = kind
	f.content = content
	f.ctxAlive = ctx.Err() == nil
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeInference struct {
	probeText string
	probeErr  error
	doc       runpod.Value
	statusErr error
	endpoint  string
	job       string
}

func (f *fakeInference) Probe(ctx context.Context) (string, error) {
	return f.probeText, f.probeErr
}

func (f *fakeInference) Status(ctx context.Context, endpointID, jobID string) (runpod.Value, error) {
	f.endpoint, f.job = endpointID, jobID
	return f.doc, f.statusErr
}

// memoryRepo is an in-memory domain.GenerationRepository.
type memoryRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.Generation
	seq       int
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]*domain.Generation)}
}

func (m *memoryRepo) Create(ctx context.Context, g *domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	g.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Date(2024, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	stored := *g
	m.items[g.ID] = &stored
	return nil
}

func (m *memoryRepo) List(ctx context.Context, page, pageSize int) ([]domain.GenerationSummary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.Generation, 0, len(m.items))
	for _, g := range m.items {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	out := make([]domain.GenerationSummary, 0, end-start)
	for _, g := range all[start:end] {
		out = append(out, domain.GenerationSummary{
			ID: g.ID, InputKind: g.InputKind, InputContent: g.InputContent,
			FinalOutput: g.FinalOutput, Cost: g.Cost, CreatedAt: g.CreatedAt,
		})
	}
	return out, len(all), nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func sampleResult() *domain.GenerationResult {
	return &domain.GenerationResult{
		Hook:          "H",
		Caption:       "C",
		Cta:           "T",
		FinalArtifact: "H\n\nC\n\nT",
		Costs:         domain.StaticCostBreakdown(),
		CreatedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

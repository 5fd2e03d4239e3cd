package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postgen/internal/domain"
	"postgen/internal/http/handlers"
	"postgen/internal/providers/runpod"
)

type stubPipeline struct{}

func (stubPipeline) Run(ctx context.Context, kind domain.InputKind, content string) (*domain.GenerationResult, error) {
	return &domain.GenerationResult{
		Hook: "H", Caption: "C", Cta: "T", FinalArtifact: "H\n\nC\n\nT",
		Costs: domain.StaticCostBreakdown(), CreatedAt: time.Now().UTC(),
	}, nil
}

type stubInference struct{}

func (stubInference) Probe(ctx context.Context) (string, error) { return "Hello", nil }

func (stubInference) Status(ctx context.Context, endpointID, jobID string) (runpod.Value, error) {
	return runpod.Object(runpod.Member{Key: "id", Value: runpod.String(jobID)}), nil
}

type stubRepo struct {
	stored []*domain.Generation
}

func (s *stubRepo) Create(ctx context.Context, g *domain.Generation) error {
	g.ID = "11111111-1111-1111-1111-111111111111"
	s.stored = append(s.stored, g)
	return nil
}

func (s *stubRepo) List(ctx context.Context, page, pageSize int) ([]domain.GenerationSummary, int, error) {
	return nil, len(s.stored), nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	for _, g := range s.stored {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Delete(ctx context.Context, id string) error { return domain.ErrNotFound }

func newTestRouter(rateLimit int) (http.Handler, *stubRepo) {
	repo := &stubRepo{}
	app := handlers.NewApp(stubPipeline{}, stubInference{}, repo, nil, nil)
	return NewRouter(app, RouterOptions{
		Logger:          zerolog.Nop(),
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: rateLimit,
	}), repo
}

func TestRoutesAreReachable(t *testing.T) {
	router, _ := newTestRouter(0)
	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/history", http.StatusOK},
		{http.MethodGet, "/api/history/abc", http.StatusNotFound},
		{http.MethodGet, "/api/history/abc/download", http.StatusNotFound},
		{http.MethodDelete, "/api/history/abc", http.StatusNotFound},
		{http.MethodGet, "/api/test-runpod", http.StatusOK},
		{http.MethodGet, "/api/check-job/ep/job", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/generate", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestGenerateThroughRouter(t *testing.T) {
	router, repo := newTestRouter(0)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"input_type":"topic","input_content":"coffee"}`))
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS header")
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["final_output"] != "H\n\nC\n\nT" || len(repo.stored) != 1 {
		t.Fatalf("unexpected body %v", body)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/"+repo.stored[0].ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("history get status = %d", rr.Code)
	}
}

func TestGenerateIsRateLimited(t *testing.T) {
	router, _ := newTestRouter(1)
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"input_type":"topic","input_content":"coffee"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := send(); code != http.StatusOK {
		t.Fatalf("first status = %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", code)
	}
}

package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestStaticCostBreakdownTotal(t *testing.T) {
	costs := StaticCostBreakdown()
	if math.Abs(costs.Total-0.0005) > 1e-12 {
		t.Fatalf("total = %v, want 0.0005", costs.Total)
	}
	var sum float64
	for _, stage := range Stages {
		sum += stage.Cost()
	}
	if math.Abs(sum-costs.Total) > 1e-12 {
		t.Fatalf("stage sum = %v, total = %v", sum, costs.Total)
	}
}

func TestParseInputKind(t *testing.T) {
	cases := []struct {
		raw     string
		want    InputKind
		wantErr bool
	}{
		{raw: "topic", want: InputKindTopic},
		{raw: " Prompt ", want: InputKindPrompt},
		{raw: "keywords", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseInputKind(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ParseInputKind(%q) err = %v, want ErrInvalidInput", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseInputKind(%q) error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseInputKind(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNewGenerationCopiesCosts(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result := GenerationResult{
		Hook:          "H",
		Caption:       "C",
		Cta:           "T",
		FinalArtifact: "H\n\nC\n\nT",
		Costs:         StaticCostBreakdown(),
		CreatedAt:     created,
	}
	gen := NewGeneration(InputKindTopic, "coffee", result)
	if gen.Cost != result.TotalCost() {
		t.Fatalf("cost = %v, want %v", gen.Cost, result.TotalCost())
	}
	if gen.CaptionCost != CaptionCost || gen.MergeCost != MergeCost {
		t.Fatalf("stage costs not copied: %+v", gen)
	}
	if gen.FinalOutput != result.FinalArtifact || !gen.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record: %+v", gen)
	}
}

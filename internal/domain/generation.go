package domain

import (
	"fmt"
	"strings"
	"time"
)

// InputKind enumerates how the user described the post.
type InputKind string

const (
	InputKindTopic  InputKind = "topic"
	InputKindPrompt InputKind = "prompt"
)

// ParseInputKind accepts the wire form of an input kind.
func ParseInputKind(raw string) (InputKind, error) {
	switch InputKind(strings.ToLower(strings.TrimSpace(raw))) {
	case InputKindTopic:
		return InputKindTopic, nil
	case InputKindPrompt:
		return InputKindPrompt, nil
	default:
		return "", fmt.Errorf("%w: input_type must be %q or %q", ErrInvalidInput, InputKindTopic, InputKindPrompt)
	}
}

// Stage identifies one step of the generation pipeline.
type Stage int

const (
	StageHook Stage = iota
	StageCaption
	StageCta
	StageMerge
)

// Fixed per-stage cost estimates in USD. The provider does not report
// billing, so these are static.
const (
	HookCost    = 0.00011
	CaptionCost = 0.00028
	CtaCost     = 0.00006
	MergeCost   = 0.00005
)

// Stages lists every pipeline stage in execution order.
var Stages = []Stage{StageHook, StageCaption, StageCta, StageMerge}

func (s Stage) String() string {
	switch s {
	case StageHook:
		return "hook"
	case StageCaption:
		return "caption"
	case StageCta:
		return "cta"
	case StageMerge:
		return "merge"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Cost returns the fixed cost estimate for the stage.
func (s Stage) Cost() float64 {
	switch s {
	case StageHook:
		return HookCost
	case StageCaption:
		return CaptionCost
	case StageCta:
		return CtaCost
	case StageMerge:
		return MergeCost
	default:
		return 0
	}
}

// CostBreakdown reports the per-stage estimate and its sum.
type CostBreakdown struct {
	Hook    float64 `json:"hook"`
	Caption float64 `json:"caption"`
	Cta     float64 `json:"cta"`
	Merge   float64 `json:"merge"`
	Total   float64 `json:"total"`
}

// StaticCostBreakdown returns the fixed estimate used for every run.
func StaticCostBreakdown() CostBreakdown {
	return CostBreakdown{
		Hook:    HookCost,
		Caption: CaptionCost,
		Cta:     CtaCost,
		Merge:   MergeCost,
		Total:   HookCost + CaptionCost + CtaCost + MergeCost,
	}
}

// StageResult is the cleaned output of one stage.
type StageResult struct {
	Stage   Stage
	Text    string
	CostUSD float64
}

// GenerationResult is produced once per pipeline run.
type GenerationResult struct {
	Hook          string
	Caption       string
	Cta           string
	FinalArtifact string
	Costs         CostBreakdown
	Stages        []StageResult
	CreatedAt     time.Time
}

// TotalCost is the static estimate for the whole run.
func (r GenerationResult) TotalCost() float64 {
	return r.Costs.Total
}

// Generation is the persisted record of a run.
type Generation struct {
	ID           string
	InputKind    InputKind
	InputContent string
	Hook         string
	Caption      string
	Cta          string
	FinalOutput  string
	Cost         float64
	HookCost     float64
	CaptionCost  float64
	CtaCost      float64
	MergeCost    float64
	CreatedAt    time.Time
}

// NewGeneration builds the record handed to the repository.
func NewGeneration(kind InputKind, content string, result GenerationResult) *Generation {
	return &Generation{
		InputKind:    kind,
		InputContent: content,
		Hook:         result.Hook,
		Caption:      result.Caption,
		Cta:          result.Cta,
		FinalOutput:  result.FinalArtifact,
		Cost:         result.Costs.Total,
		HookCost:     result.Costs.Hook,
		CaptionCost:  result.Costs.Caption,
		CtaCost:      result.Costs.Cta,
		MergeCost:    result.Costs.Merge,
		CreatedAt:    result.CreatedAt,
	}
}

// GenerationSummary is the list view of a record.
type GenerationSummary struct {
	ID           string
	InputKind    InputKind
	InputContent string
	FinalOutput  string
	Cost         float64
	CreatedAt    time.Time
}

package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"postgen/internal/domain"
	"postgen/internal/infra"
	"postgen/internal/providers/runpod"
)

// TopicLabelLimit is the number of characters of a prompt input used as its topic.
const TopicLabelLimit = 100

// Generator produces cleaned text for one job.
type Generator interface {
	Generate(ctx context.Context, req runpod.JobRequest) (string, error)
}

type stageParams struct {
	model       runpod.ModelClass
	maxTokens   int
	temperature float64
}

var generatingStages = map[domain.Stage]stageParams{
	domain.StageHook:    {model: runpod.ModelFast, maxTokens: 150, temperature: 0.8},
	domain.StageCaption: {model: runpod.ModelLarge, maxTokens: 300, temperature: 0.7},
	domain.StageCta:     {model: runpod.ModelFast, maxTokens: 100, temperature: 0.8},
}

// StageError identifies which stage aborted a run.
type StageError struct {
	Stage domain.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options configures the orchestrator.
type Options struct {
	Prompts *Prompts
	Logger  *infra.Logger
	Now     func() time.Time
}

// Orchestrator sequences hook, caption and cta generations and merges them.
type Orchestrator struct {
	gen     Generator
	prompts *Prompts
	logger  *infra.Logger
	now     func() time.Time
}

// New builds an orchestrator; the embedded prompt catalog is used unless one is supplied.
func New(gen Generator, opts Options) (*Orchestrator, error) {
	if gen == nil {
		return nil, fmt.Errorf("pipeline: generator is required")
	}
	prompts := opts.Prompts
	if prompts == nil {
		var err error
		if prompts, err = DefaultPrompts(); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{gen: gen, prompts: prompts, logger: logger, now: now}, nil
}

// Run executes the three generating stages in order and merges their output.
// Any stage failure aborts the run; no partial result is returned.
func (o *Orchestrator) Run(ctx context.Context, kind domain.InputKind, content string) (*domain.GenerationResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: input content is required", domain.ErrInvalidInput)
	}
	data := PromptData{Topic: content}
	switch kind {
	case domain.InputKindTopic:
	case domain.InputKindPrompt:
		data.Topic = TopicLabel(content)
		data.Context = content
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", domain.ErrInvalidInput, kind)
	}

	logger := o.logger.With().Str("input_type", string(kind)).Logger()
	started := o.now()

	hook, err := o.runStage(ctx, &logger, domain.StageHook, data)
	if err != nil {
		return nil, err
	}
	data.Hook = hook
	caption, err := o.runStage(ctx, &logger, domain.StageCaption, data)
	if err != nil {
		return nil, err
	}
	data.Caption = caption
	cta, err := o.runStage(ctx, &logger, domain.StageCta, data)
	if err != nil {
		return nil, err
	}

	final := Merge(hook, caption, cta)
	costs := domain.StaticCostBreakdown()
	result := &domain.GenerationResult{
		Hook:          hook,
		Caption:       caption,
		Cta:           cta,
		FinalArtifact: final,
		Costs:         costs,
		Stages: []domain.StageResult{
			{Stage: domain.StageHook, Text: hook, CostUSD: costs.Hook},
			{Stage: domain.StageCaption, Text: caption, CostUSD: costs.Caption},
			{Stage: domain.StageCta, Text: cta, CostUSD: costs.Cta},
			{Stage: domain.StageMerge, Text: final, CostUSD: costs.Merge},
		},
		CreatedAt: o.now().UTC(),
	}
	logger.Info().
		Float64("cost_usd", result.TotalCost()).
		Dur("duration", o.now().Sub(started)).
		Msg("pipeline: generation complete")
	return result, nil
}

func (o *Orchestrator) runStage(ctx context.Context, logger *zerolog.Logger, stage domain.Stage, data PromptData) (string, error) {
	params := generatingStages[stage]
	prompt, err := o.prompts.Render(stage, data)
	if err != nil {
		return "", &StageError{Stage: stage, Err: err}
	}
	start := o.now()
	logger.Info().Str("stage", stage.String()).Str("model_class", string(params.model)).Msg("pipeline: stage started")
	text, err := o.gen.Generate(ctx, runpod.JobRequest{
		Prompt:      prompt,
		ModelClass:  params.model,
		MaxTokens:   params.maxTokens,
		Temperature: params.temperature,
	})
	if err != nil {
		logger.Error().Err(err).Str("stage", stage.String()).Msg("pipeline: stage failed")
		return "", &StageError{Stage: stage, Err: err}
	}
	logger.Info().
		Str("stage", stage.String()).
		Int("chars", len(text)).
		Dur("duration", o.now().Sub(start)).
		Msg("pipeline: stage finished")
	return text, nil
}

// TopicLabel returns the first TopicLabelLimit characters of content.
func TopicLabel(content string) string {
	runes := []rune(content)
	if len(runes) <= TopicLabelLimit {
		return content
	}
	return string(runes[:TopicLabelLimit])
}

// Merge joins the stage outputs with blank lines and nothing else.
func Merge(hook, caption, cta string) string {
	return hook + "\n\n" + caption + "\n\n" + cta
}

package pipeline

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"postgen/internal/domain"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when a prompt catalog cannot be used.
var ErrInvalidCatalog = errors.New("pipeline: invalid prompt catalog")

type catalogFile struct {
	Version int               `yaml:"version"`
	Stages  map[string]string `yaml:"stages"`
}

// PromptData feeds the stage templates. Context is empty for topic input.
type PromptData struct {
	Topic   string
	Context string
	Hook    string
	Caption string
}

// Prompts renders the prompt for each generating stage.
type Prompts struct {
	templates map[domain.Stage]*template.Template
}

// DefaultPrompts parses the embedded catalog.
func DefaultPrompts() (*Prompts, error) {
	return ParsePrompts(defaultCatalog)
}

// ParsePrompts parses a YAML catalog; hook, caption and cta are required.
func ParsePrompts(raw []byte) (*Prompts, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	p := &Prompts{templates: make(map[domain.Stage]*template.Template, 3)}
	for _, stage := range []domain.Stage{domain.StageHook, domain.StageCaption, domain.StageCta} {
		text, ok := file.Stages[stage.String()]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: missing %s template", ErrInvalidCatalog, stage)
		}
		tmpl, err := template.New(stage.String()).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, stage, err)
		}
		p.templates[stage] = tmpl
	}
	return p, nil
}

// Render builds the prompt for stage.
func (p *Prompts) Render(stage domain.Stage, data PromptData) (string, error) {
	tmpl, ok := p.templates[stage]
	if !ok {
		return "", fmt.Errorf("pipeline: no prompt for %s stage", stage)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("pipeline: render %s prompt: %w", stage, err)
	}
	return sb.String(), nil
}

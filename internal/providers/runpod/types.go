package runpod

import (
	"net/url"
	"strings"
)

// ModelClass selects which deployed endpoint serves a request.
type ModelClass string

const (
	// ModelFast is the small, quick model used for short stages.
	ModelFast ModelClass = "fast"
	// ModelLarge is the larger instruction model used for long-form stages.
	ModelLarge ModelClass = "large"
)

// JobRequest describes one text generation. MaxTokens <= 0 and temperatures
// outside [0, 2] are left out of the payload so the worker applies its own
// defaults.
type JobRequest struct {
	Prompt      string
	ModelClass  ModelClass
	MaxTokens   int
	Temperature float64
}

// JobHandle identifies an accepted asynchronous job.
type JobHandle struct {
	ID         string
	Endpoint   string
	ModelClass ModelClass
}

// StatusURL derives the status URL from the run URL the job was submitted to.
func (h JobHandle) StatusURL() string {
	return strings.TrimSuffix(h.Endpoint, "/run") + "/status/" + url.PathEscape(h.ID)
}

// PollOutcome is the interpretation of a single status response.
type PollOutcome interface {
	terminal() bool
}

// Queued means the job is waiting for a worker.
type Queued struct {
	QueuePosition *int
}

// Running covers IN_PROGRESS and any status the client does not recognize.
type Running struct{}

// Completed carries the raw output, which may be null.
type Completed struct {
	Output Value
}

// Failed carries the extracted failure message and the raw error payload.
type Failed struct {
	Message string
	Detail  *Value
}

func (Queued) terminal() bool    { return false }
func (Running) terminal() bool   { return false }
func (Completed) terminal() bool { return true }
func (Failed) terminal() bool    { return true }

type runRequest struct {
	Input runInput `json:"input"`
}

type runInput struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

func buildPayload(req JobRequest) runRequest {
	input := runInput{Prompt: req.Prompt}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		input.MaxTokens = &maxTokens
	}
	if req.Temperature >= 0 && req.Temperature <= 2 {
		temperature := req.Temperature
		input.Temperature = &temperature
	}
	return runRequest{Input: input}
}

package runpod

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAPIKey indicates that the client was configured without credentials.
	ErrMissingAPIKey = errors.New("runpod: api key is required")
	// ErrMissingEndpoint indicates that a model class has no endpoint id.
	ErrMissingEndpoint = errors.New("runpod: endpoint id is required")
)

// Kind classifies inference failures.
type Kind int

const (
	KindInvalidModelClass Kind = iota + 1
	KindProviderRejected
	KindProviderTimeout
	KindProviderUnreachable
	KindUnrecognizedResponse
	KindPollExhausted
	KindPollTimeout
	KindJobFailed
	KindCompletedWithoutOutput
)

func (k Kind) String() string {
	switch k {
	case KindInvalidModelClass:
		return "invalid_model_class"
	case KindProviderRejected:
		return "provider_rejected"
	case KindProviderTimeout:
		return "provider_timeout"
	case KindProviderUnreachable:
		return "provider_unreachable"
	case KindUnrecognizedResponse:
		return "unrecognized_response"
	case KindPollExhausted:
		return "poll_exhausted"
	case KindPollTimeout:
		return "poll_timeout"
	case KindJobFailed:
		return "job_failed"
	case KindCompletedWithoutOutput:
		return "completed_without_output"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; matching compares only the kind.
var (
	ErrInvalidModelClass      = &Error{Kind: KindInvalidModelClass}
	ErrProviderRejected       = &Error{Kind: KindProviderRejected}
	ErrProviderTimeout        = &Error{Kind: KindProviderTimeout}
	ErrProviderUnreachable    = &Error{Kind: KindProviderUnreachable}
	ErrUnrecognizedResponse   = &Error{Kind: KindUnrecognizedResponse}
	ErrPollExhausted          = &Error{Kind: KindPollExhausted}
	ErrPollTimeout            = &Error{Kind: KindPollTimeout}
	ErrJobFailed              = &Error{Kind: KindJobFailed}
	ErrCompletedWithoutOutput = &Error{Kind: KindCompletedWithoutOutput}
)

// Error carries the details of a failed inference call. Body is the raw
// provider response, Hint holds operator troubleshooting steps and Elapsed
// is measured in seconds.
type Error struct {
	Kind       Kind
	EndpointID string
	JobID      string
	StatusCode int
	Message    string
	Body       string
	Hint       string
	Detail     *Value
	Elapsed    int
	LastStatus string
	StatusURL  string
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidModelClass:
		msg = fmt.Sprintf("runpod: unknown model class %q", e.Message)
	case KindProviderRejected:
		msg = fmt.Sprintf("runpod: api error (%d): %s", e.StatusCode, e.Message)
	case KindProviderTimeout:
		msg = "runpod: request timeout; the endpoint may be cold-starting or overloaded, try again in a few moments"
	case KindProviderUnreachable:
		msg = fmt.Sprintf("runpod: calling endpoint %s: %v", e.EndpointID, e.Err)
	case KindUnrecognizedResponse:
		msg = fmt.Sprintf("runpod: unexpected response format: %s", e.Body)
	case KindPollExhausted:
		msg = fmt.Sprintf("runpod: error polling job %s status: %v", e.JobID, e.Err)
	case KindPollTimeout:
		msg = fmt.Sprintf("runpod: job %s did not complete within ~%d minutes (%d seconds), current status %s; check the job manually at %s",
			e.JobID, e.Elapsed/60, e.Elapsed, e.LastStatus, e.StatusURL)
	case KindJobFailed:
		msg = fmt.Sprintf("runpod: job failed: %s", e.Message)
	case KindCompletedWithoutOutput:
		msg = fmt.Sprintf("runpod: job %s completed but no output found", e.JobID)
	default:
		msg = "runpod: " + e.Message
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether a caller may reasonably try the call again.
func (e *Error) Retryable() bool {
	return e.Kind == KindProviderTimeout || e.Kind == KindProviderUnreachable
}

// IsRetryable reports whether err carries a retryable inference failure.
func IsRetryable(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Retryable()
}

func troubleshooting(endpointID string) string {
	return strings.Join([]string{
		"Troubleshooting:",
		"1. Verify the endpoint id is correct: " + endpointID,
		"2. Check that the endpoint is deployed and active in the Runpod console",
		"3. Ensure RUNPOD_API_KEY is valid and has access to this endpoint",
		"4. Make sure the endpoint is serverless, not a pod",
		"5. Inspect the endpoint logs in the Runpod console",
	}, "\n")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

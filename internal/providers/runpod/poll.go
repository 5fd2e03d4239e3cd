package runpod

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const progressEvery = 12

// jobState is one decoded status response.
type jobState struct {
	status  string
	outcome PollOutcome
	doc     Value
}

// poll waits for a submitted job. The first status check happens
// immediately; every later attempt waits one poll interval first.
func (c *Client) poll(ctx context.Context, handle JobHandle, target Target) (string, error) {
	statusURL := handle.StatusURL()
	maxAttempts := target.MaxPolls
	logger := c.logger.With().
		Str("job_id", handle.ID).
		Str("endpoint_id", target.EndpointID).
		Str("model", target.Model).
		Logger()
	logger.Info().
		Int("max_attempts", maxAttempts).
		Dur("interval", c.pollInterval).
		Msg("runpod: job accepted, polling for result")

	lastStatus := ""
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				return "", fmt.Errorf("runpod: polling job %s: %w", handle.ID, err)
			}
		}
		state, err := c.fetchState(ctx, statusURL)
		if err != nil {
			if attempt == maxAttempts-1 {
				return "", &Error{
					Kind:       KindPollExhausted,
					EndpointID: target.EndpointID,
					JobID:      handle.ID,
					LastStatus: lastStatus,
					StatusURL:  statusURL,
					Elapsed:    c.elapsedSeconds(maxAttempts),
					Err:        err,
				}
			}
			logger.Warn().Err(err).Int("attempt", attempt+1).Msg("runpod: status check failed, retrying")
			continue
		}
		if state.status != lastStatus {
			event := logger.Info().Str("status", state.status).Int("attempt", attempt+1)
			if q, ok := state.outcome.(Queued); ok && q.QueuePosition != nil {
				event = event.Int("queue_position", *q.QueuePosition)
			}
			event.Msg("runpod: job status changed")
			lastStatus = state.status
		}
		if attempt > 0 && attempt%progressEvery == 0 {
			logger.Info().
				Str("status", state.status).
				Int("attempt", attempt+1).
				Int("max_attempts", maxAttempts).
				Int("elapsed_seconds", c.elapsedSeconds(attempt)).
				Msg("runpod: still waiting for job")
		}

		switch outcome := state.outcome.(type) {
		case Completed:
			text := ""
			if outcome.Output.Truthy() {
				text = ExtractText(outcome.Output)
			}
			if text == "" {
				logger.Warn().Str("result", state.doc.Text()).Msg("runpod: job completed without output")
				return "", &Error{Kind: KindCompletedWithoutOutput, EndpointID: target.EndpointID, JobID: handle.ID, StatusURL: statusURL}
			}
			logger.Info().Int("attempt", attempt+1).Int("chars", len(text)).Msg("runpod: job completed")
			return text, nil
		case Failed:
			withFailureDetails(logger.Error(), state.doc).Str("error", outcome.Message).Msg("runpod: job failed")
			return "", &Error{
				Kind:       KindJobFailed,
				EndpointID: target.EndpointID,
				JobID:      handle.ID,
				Message:    outcome.Message,
				Detail:     outcome.Detail,
				StatusURL:  statusURL,
			}
		}
	}
	return "", &Error{
		Kind:       KindPollTimeout,
		EndpointID: target.EndpointID,
		JobID:      handle.ID,
		LastStatus: lastStatus,
		StatusURL:  statusURL,
		Elapsed:    c.elapsedSeconds(maxAttempts),
	}
}

func (c *Client) fetchState(ctx context.Context, statusURL string) (jobState, error) {
	doc, err := c.getStatus(ctx, statusURL)
	if err != nil {
		return jobState{}, err
	}
	if doc.Kind() != ValueObject {
		return jobState{}, fmt.Errorf("runpod: unexpected status document: %s", truncateRunes(doc.Text(), errorBodyLimit))
	}
	return parseJobState(doc), nil
}

func (c *Client) elapsedSeconds(attempts int) int {
	return int(time.Duration(attempts) * c.pollInterval / time.Second)
}

func parseJobState(doc Value) jobState {
	status := "UNKNOWN"
	if s, ok := doc.Field("status"); ok && s.Text() != "" {
		status = s.Text()
	}
	state := jobState{status: status, doc: doc}
	switch status {
	case "COMPLETED":
		output, ok := doc.Field("output")
		if !ok {
			output = Null()
		}
		state.outcome = Completed{Output: output}
	case "FAILED":
		failed := Failed{Message: failureMessage(doc)}
		if detail, ok := doc.Field("error"); ok {
			failed.Detail = &detail
		}
		state.outcome = failed
	case "IN_QUEUE":
		queued := Queued{}
		if pos, ok := doc.Field("queue_position"); ok {
			if n, ok := pos.Int(); ok {
				queued.QueuePosition = &n
			}
		}
		state.outcome = queued
	default:
		state.outcome = Running{}
	}
	return state
}

// failureMessage prefers a message nested in the output object, then the
// error object or string, then a generic text.
func failureMessage(doc Value) string {
	message := "Unknown error"
	if errVal, ok := doc.Field("error"); ok {
		switch errVal.Kind() {
		case ValueObject:
			message = errVal.Text()
			if field, ok := lookupTruthy(errVal, []string{"message", "error", "detail"}); ok {
				message = field.Text()
			}
		case ValueNull:
		default:
			if text := errVal.Text(); text != "" {
				message = text
			}
		}
	}
	if output, ok := doc.Field("output"); ok && output.Kind() == ValueObject {
		if field, ok := lookupTruthy(output, []string{"error", "message"}); ok {
			message = field.Text()
		}
	}
	return message
}

func withFailureDetails(event *zerolog.Event, doc Value) *zerolog.Event {
	for _, key := range []string{"executionTime", "delayTime", "workerId"} {
		if v, ok := doc.Field(key); ok {
			event = event.Str(key, v.Text())
		}
	}
	if output, ok := doc.Field("output"); ok {
		if tb, ok := output.Field("traceback"); ok {
			event = event.Str("traceback", tb.Text())
		}
	}
	if tb, ok := doc.Field("traceback"); ok {
		event = event.Str("traceback", tb.Text())
	}
	return event
}

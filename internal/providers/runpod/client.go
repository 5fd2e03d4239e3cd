package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"postgen/internal/infra"
)

const (
	defaultBaseURL       = "https://api.runpod.ai/v2"
	defaultFastModel     = "microsoft/Phi-2"
	defaultLargeModel    = "mistralai/Mistral-7B-Instruct-v0.1"
	defaultSubmitTimeout = 60 * time.Second
	defaultPollInterval  = 5 * time.Second
	defaultFastMaxPolls  = 360
	defaultLargeMaxPolls = 1440
	errorBodyLimit       = 500
	probePrompt          = "Say hello in one word"
	probeMaxTokens       = 10
	probeTemperature     = 0.7
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Target binds a model class to a deployed serverless endpoint.
type Target struct {
	EndpointID string
	Model      string
	MaxPolls   int
}

// Options configures the Runpod serverless client.
type Options struct {
	APIKey        string
	BaseURL       string
	Fast          Target
	Large         Target
	HTTPClient    *http.Client
	Logger        *infra.Logger
	SubmitTimeout time.Duration
	PollInterval  time.Duration
	Sleep         Sleeper
}

// Client submits jobs to Runpod serverless endpoints and polls them to
// completion. It is safe for concurrent use.
type Client struct {
	apiKey        string
	baseURL       string
	targets       map[ModelClass]Target
	httpClient    *http.Client
	logger        *infra.Logger
	submitTimeout time.Duration
	pollInterval  time.Duration
	sleep         Sleeper
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	fast, err := normalizeTarget(ModelFast, opts.Fast, defaultFastModel, defaultFastMaxPolls)
	if err != nil {
		return nil, err
	}
	large, err := normalizeTarget(ModelLarge, opts.Large, defaultLargeModel, defaultLargeMaxPolls)
	if err != nil {
		return nil, err
	}
	submitTimeout := opts.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: submitTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		apiKey:        apiKey,
		baseURL:       baseURL,
		targets:       map[ModelClass]Target{ModelFast: fast, ModelLarge: large},
		httpClient:    httpClient,
		logger:        logger,
		submitTimeout: submitTimeout,
		pollInterval:  pollInterval,
		sleep:         sleep,
	}, nil
}

func normalizeTarget(class ModelClass, t Target, defaultModel string, defaultPolls int) (Target, error) {
	t.EndpointID = strings.TrimSpace(t.EndpointID)
	if t.EndpointID == "" {
		return Target{}, fmt.Errorf("%w: %s model", ErrMissingEndpoint, class)
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		t.Model = defaultModel
	}
	if t.MaxPolls <= 0 {
		t.MaxPolls = defaultPolls
	}
	return t, nil
}

// Model returns the model identifier configured for a class.
func (c *Client) Model(class ModelClass) string {
	return c.targets[class].Model
}

// Generate submits req and returns the cleaned generated text, polling the
// job when the endpoint answers asynchronously.
func (c *Client) Generate(ctx context.Context, req JobRequest) (string, error) {
	target, ok := c.targets[req.ModelClass]
	if !ok {
		return "", &Error{Kind: KindInvalidModelClass, Message: string(req.ModelClass)}
	}
	endpoint := c.runURL(target.EndpointID)
	payload := buildPayload(req)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("runpod: encode request: %w", err)
	}
	c.logger.Debug().
		Str("endpoint_id", target.EndpointID).
		Str("model", target.Model).
		Int("prompt_chars", len(req.Prompt)).
		Bool("max_tokens", payload.Input.MaxTokens != nil).
		Bool("temperature", payload.Input.Temperature != nil).
		Msg("runpod: submitting job")

	raw, status, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", transportError(target.EndpointID, err)
	}
	if status >= 300 {
		return "", &Error{
			Kind:       KindProviderRejected,
			EndpointID: target.EndpointID,
			StatusCode: status,
			Message:    errorDetail(raw),
			Hint:       troubleshooting(target.EndpointID),
		}
	}

	result, err := ParseValue(raw)
	if err != nil || result.Kind() != ValueObject {
		return "", &Error{Kind: KindUnrecognizedResponse, EndpointID: target.EndpointID, Body: truncateRunes(string(raw), errorBodyLimit)}
	}
	if id, ok := result.Field("id"); ok && id.Text() != "" {
		handle := JobHandle{ID: id.Text(), Endpoint: endpoint, ModelClass: req.ModelClass}
		return c.poll(ctx, handle, target)
	}
	if output, ok := result.Field("output"); ok {
		if text := ExtractText(output); text != "" {
			return text, nil
		}
	}
	if _, field, ok := lookupField(result, []string{"text", "generated_text"}); ok {
		return CleanText(field.Text()), nil
	}
	return "", &Error{Kind: KindUnrecognizedResponse, EndpointID: target.EndpointID, Body: result.Text()}
}

// Status fetches the raw status document of a job.
func (c *Client) Status(ctx context.Context, endpointID, jobID string) (Value, error) {
	endpointID = strings.TrimSpace(endpointID)
	jobID = strings.TrimSpace(jobID)
	if endpointID == "" || jobID == "" {
		return Value{}, errors.New("runpod: endpoint id and job id are required")
	}
	handle := JobHandle{ID: jobID, Endpoint: c.runURL(endpointID)}
	return c.getStatus(ctx, handle.StatusURL())
}

// Probe runs a minimal generation against the fast endpoint.
func (c *Client) Probe(ctx context.Context) (string, error) {
	return c.Generate(ctx, JobRequest{
		Prompt:      probePrompt,
		ModelClass:  ModelFast,
		MaxTokens:   probeMaxTokens,
		Temperature: probeTemperature,
	})
}

func (c *Client) runURL(endpointID string) string {
	return c.baseURL + "/" + url.PathEscape(endpointID) + "/run"
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("runpod: build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) getStatus(ctx context.Context, statusURL string) (Value, error) {
	raw, status, err := c.do(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return Value{}, fmt.Errorf("runpod: http request: %w", err)
	}
	if status >= 300 {
		return Value{}, fmt.Errorf("runpod: status %d: %s", status, truncateRunes(strings.TrimSpace(string(raw)), errorBodyLimit))
	}
	doc, err := ParseValue(raw)
	if err != nil {
		return Value{}, fmt.Errorf("runpod: decode status: %w", err)
	}
	return doc, nil
}

func transportError(endpointID string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindProviderTimeout, EndpointID: endpointID, Err: err}
	}
	return &Error{Kind: KindProviderUnreachable, EndpointID: endpointID, Err: err}
}

// errorDetail picks the most useful message from a rejected submission body.
func errorDetail(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	parsed, err := ParseValue(raw)
	if err != nil || parsed.Kind() != ValueObject {
		return truncateRunes(body, errorBodyLimit)
	}
	if _, field, ok := lookupField(parsed, []string{"error", "message"}); ok {
		if text := field.Text(); text != "" {
			return text
		}
	}
	return parsed.Text()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

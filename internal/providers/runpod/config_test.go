package runpod

import (
	"testing"
	"time"

	"postgen/internal/infra"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &infra.Config{
		RunpodAPIKey:          "key",
		RunpodBaseURL:         "https://example.test/v2",
		RunpodFastEndpointID:  "fast-ep",
		RunpodLargeEndpointID: "large-ep",
		RunpodFastModel:       "phi",
		RunpodLargeModel:      "mistral",
		RunpodSubmitTimeout:   30 * time.Second,
		RunpodPollInterval:    2 * time.Second,
		RunpodFastMaxPolls:    7,
		RunpodLargeMaxPolls:   9,
	}
	opts := OptionsFromConfig(cfg, nil, nil)
	if opts.Fast.EndpointID != "fast-ep" || opts.Large.EndpointID != "large-ep" {
		t.Fatalf("unexpected targets %+v %+v", opts.Fast, opts.Large)
	}
	if opts.Fast.MaxPolls != 7 || opts.Large.MaxPolls != 9 {
		t.Fatalf("unexpected poll budgets %d %d", opts.Fast.MaxPolls, opts.Large.MaxPolls)
	}

	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Model(ModelLarge) != "mistral" {
		t.Fatalf("unexpected model %q", client.Model(ModelLarge))
	}
}

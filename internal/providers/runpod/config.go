package runpod

import (
	"net/http"

	"postgen/internal/infra"
)

// OptionsFromConfig maps the service configuration onto client options.
// The caller supplies the shared HTTP client and logger.
func OptionsFromConfig(cfg *infra.Config, httpClient *http.Client, logger *infra.Logger) Options {
	return Options{
		APIKey:  cfg.RunpodAPIKey,
		BaseURL: cfg.RunpodBaseURL,
		Fast: Target{
			EndpointID: cfg.RunpodFastEndpointID,
			Model:      cfg.RunpodFastModel,
			MaxPolls:   cfg.RunpodFastMaxPolls,
		},
		Large: Target{
			EndpointID: cfg.RunpodLargeEndpointID,
			Model:      cfg.RunpodLargeModel,
			MaxPolls:   cfg.RunpodLargeMaxPolls,
		},
		HTTPClient:    httpClient,
		Logger:        logger,
		SubmitTimeout: cfg.RunpodSubmitTimeout,
		PollInterval:  cfg.RunpodPollInterval,
	}
}

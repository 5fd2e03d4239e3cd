package credentials

import (
	"context"

	"postgen/internal/domain"
	"postgen/internal/infra"
)

// ApplyRunpodFallback fills cfg.RunpodAPIKey from tokens when the environment
// left it empty. It reports whether the stored key was used.
func ApplyRunpodFallback(ctx context.Context, cfg *infra.Config, tokens domain.CredentialStore) (bool, error) {
	if cfg == nil || cfg.RunpodAPIKey != "" || tokens == nil {
		return false, nil
	}
	key, err := tokens.Token(ctx, ProviderRunpod)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, nil
	}
	cfg.RunpodAPIKey = key
	return true, nil
}

package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"postgen/internal/infra"
	"postgen/internal/sqlinline"
)

const (
	ProviderRunpod = "runpod"
)

// Store keeps provider API keys in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) RunpodAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderRunpod)
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetRunpodAPIKey stores key, recording which endpoints it was issued for.
func (s *Store) SetRunpodAPIKey(ctx context.Context, key string, endpointIDs ...string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("runpod api key is required")
	}
	var props map[string]any
	if len(endpointIDs) > 0 {
		props = map[string]any{"endpoints": endpointIDs}
	}
	return s.upsert(ctx, ProviderRunpod, key, props)
}

// DeleteRunpodAPIKey removes the stored key. It reports whether a key existed.
func (s *Store) DeleteRunpodAPIKey(ctx context.Context) (bool, error) {
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, ProviderRunpod)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

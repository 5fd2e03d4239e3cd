package domain

import "context"

// GenerationRepository persists pipeline results.
type GenerationRepository interface {
	Create(ctx context.Context, generation *Generation) error
	List(ctx context.Context, page, pageSize int) ([]GenerationSummary, int, error)
	GetByID(ctx context.Context, id string) (*Generation, error)
	Delete(ctx context.Context, id string) error
}

// CredentialStore resolves provider tokens kept in the database.
type CredentialStore interface {
	Token(ctx context.Context, provider string) (string, error)
}

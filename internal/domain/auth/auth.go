package auth

import (
	"context"

	"github.com/google/uuid"
)

// APIKeyInfo holds the identity data for a validated admin API key.
type APIKeyInfo struct {
	ID      uuid.UUID
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

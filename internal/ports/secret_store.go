package ports

import "context"

// SecretStore keeps opaque credentials such as provider API keys, addressed
// by a slash-separated reference.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Package env exposes API keys supplied through NOTIFYAI_* environment
// variables, typically loaded from a .env file, as a read-only secret store.
package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
)

const prefix = "NOTIFYAI_"

var ErrReadOnly = errors.New("environment secret store is read-only")

type Store struct {
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{lookup: os.LookupEnv}
}

// VariableFor maps a secret reference to its variable name:
// "notifyai/gemini/api_key" becomes NOTIFYAI_GEMINI_API_KEY.
func VariableFor(key string) string {
	key = strings.TrimPrefix(strings.TrimSpace(key), "notifyai/")
	replacer := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return prefix + strings.ToUpper(replacer.Replace(key))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := VariableFor(key)
	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("env %s: %w", name, domain.ErrSecretNotFound)
	}

	return strings.TrimSpace(value), nil
}

func (s *Store) Put(context.Context, string, string) error {
	return ErrReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return ErrReadOnly
}

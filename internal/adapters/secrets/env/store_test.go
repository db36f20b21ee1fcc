package env

import (
	"context"
	"testing"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NOTIFYAI_GEMINI_API_KEY", VariableFor("notifyai/gemini/api_key"))
	assert.Equal(t, "NOTIFYAI_LEGACY_API_KEY", VariableFor("legacy/api-key"))
}

func TestStoreGetReadsEnvironment(t *testing.T) {
	t.Setenv("NOTIFYAI_GROQ_API_KEY", " gsk_from_env ")

	value, err := NewStore().Get(context.Background(), "notifyai/groq/api_key")
	require.NoError(t, err)
	assert.Equal(t, "gsk_from_env", value)
}

func TestStoreGetMissingVariable(t *testing.T) {
	t.Parallel()

	store := &Store{lookup: func(string) (string, bool) { return "", false }}

	_, err := store.Get(context.Background(), "notifyai/gemini/api_key")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "NOTIFYAI_GEMINI_API_KEY")
}

func TestStoreIsReadOnly(t *testing.T) {
	t.Parallel()

	store := NewStore()
	assert.ErrorIs(t, store.Put(context.Background(), "notifyai/gemini/api_key", "x"), ErrReadOnly)
	assert.ErrorIs(t, store.Delete(context.Background(), "notifyai/gemini/api_key"), ErrReadOnly)
}

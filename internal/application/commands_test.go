package application

import (
	"context"
	"errors"
	"testing"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCommandService(settings *memorySettings, secrets ports.SecretStore, provider *stubProvider) *Service {
	return NewService(Deps{
		Settings: settings,
		Secrets:  secrets,
		Providers: func(domain.ProviderConfig) (ports.Provider, error) {
			return provider, nil
		},
	})
}

func TestConfigureProviderDetectsProviderAndStoresKey(t *testing.T) {
	settings := &memorySettings{}
	secrets := newMemorySecrets(nil)
	service := newCommandService(settings, secrets, nil)

	err := service.ConfigureProvider(context.Background(), ConfigureProviderCommand{APIKey: " gsk_new "})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderGroq, settings.settings.Provider)
	assert.Equal(t, "notifyai/groq/api_key", settings.settings.SecretRef)
	assert.Equal(t, "gsk_new", secrets.values["notifyai/groq/api_key"])
}

func TestConfigureProviderRejectsUnknownKey(t *testing.T) {
	service := newCommandService(&memorySettings{}, newMemorySecrets(nil), nil)

	err := service.ConfigureProvider(context.Background(), ConfigureProviderCommand{APIKey: "sk-other"})

	var unknown *domain.UnknownProviderError
	require.ErrorAs(t, err, &unknown)
}

func TestConfigureProviderSwitchDeletesPreviousKey(t *testing.T) {
	settings := &memorySettings{present: true, settings: domain.Settings{
		Provider:    domain.ProviderGemini,
		SecretRef:   "notifyai/gemini/api_key",
		Targets:     []string{"notify.a"},
		ModelLimits: map[string]domain.ModelLimits{"gemini-flash-latest": {RPD: 250}},
	}}
	secrets := newMemorySecrets(map[string]string{"notifyai/gemini/api_key": "AIza-old"})
	service := newCommandService(settings, secrets, nil)

	err := service.ConfigureProvider(context.Background(), ConfigureProviderCommand{
		Provider: domain.ProviderGroq,
		APIKey:   "gsk_new",
		Model:    "llama-3.3-70b-versatile",
	})
	require.NoError(t, err)

	assert.NotContains(t, secrets.values, "notifyai/gemini/api_key")
	assert.Equal(t, []string{"notify.a"}, settings.settings.Targets)
	assert.Equal(t, "llama-3.3-70b-versatile", settings.settings.Model)
	assert.Nil(t, settings.settings.ModelLimits)
}

func TestConfigureProviderRollsBackSecretWhenSaveFails(t *testing.T) {
	saveErr := errors.New("disk full")
	settings := &memorySettings{saveErr: saveErr}
	store := &mockSecretStore{}
	store.On("Get", mock.Anything, "notifyai/gemini/api_key").Return("AIza-old", nil)
	store.On("Put", mock.Anything, "notifyai/gemini/api_key", "AIza-new").Return(nil).Once()
	store.On("Put", mock.Anything, "notifyai/gemini/api_key", "AIza-old").Return(nil).Once()
	service := newCommandService(settings, store, nil)

	err := service.ConfigureProvider(context.Background(), ConfigureProviderCommand{APIKey: "AIza-new"})

	require.ErrorIs(t, err, saveErr)
	store.AssertExpectations(t)
}

func TestConfigureProviderRollbackDeletesFreshSecret(t *testing.T) {
	saveErr := errors.New("disk full")
	deleteErr := errors.New("keyring locked")
	store := &mockSecretStore{}
	store.On("Get", mock.Anything, "notifyai/groq/api_key").Return("", domain.ErrSecretNotFound)
	store.On("Put", mock.Anything, "notifyai/groq/api_key", "gsk_new").Return(nil)
	store.On("Delete", mock.Anything, "notifyai/groq/api_key").Return(deleteErr)
	service := newCommandService(&memorySettings{saveErr: saveErr}, store, nil)

	err := service.ConfigureProvider(context.Background(), ConfigureProviderCommand{APIKey: "gsk_new"})

	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, deleteErr)
	store.AssertExpectations(t)
}

func TestRemoveAPIKey(t *testing.T) {
	settings := &memorySettings{present: true, settings: domain.Settings{
		Provider:  domain.ProviderGemini,
		SecretRef: "notifyai/gemini/api_key",
	}}
	secrets := newMemorySecrets(map[string]string{"notifyai/gemini/api_key": "AIza"})
	service := newCommandService(settings, secrets, nil)

	require.NoError(t, service.RemoveAPIKey(context.Background()))
	assert.Empty(t, secrets.values)
	assert.Empty(t, settings.settings.SecretRef)
	assert.Equal(t, domain.ProviderGemini, settings.settings.Provider)
}

func TestSetTargets(t *testing.T) {
	settings := &memorySettings{}
	service := newCommandService(settings, newMemorySecrets(nil), nil)

	require.NoError(t, service.SetTargets(context.Background(), []string{" notify.a ", "", "script.announce"}))
	assert.Equal(t, []string{"notify.a", "", "script.announce"}, settings.settings.Targets)

	err := service.SetTargets(context.Background(), []string{"notify"})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	err = service.SetTargets(context.Background(), []string{"a.1", "a.2", "a.3", "a.4", "a.5"})
	assert.Error(t, err)
	assert.Len(t, settings.settings.Targets, 3)
}

func TestSetSpeechAndLocale(t *testing.T) {
	settings := &memorySettings{}
	service := newCommandService(settings, newMemorySecrets(nil), nil)

	require.NoError(t, service.SetSpeech(context.Background(), domain.SpeechSettings{
		Service:     " tts.cloud ",
		AudioDevice: "media_player.hall",
		Language:    "tr",
	}))
	assert.Equal(t, domain.SpeechSettings{Service: "tts.cloud", AudioDevice: "media_player.hall", Language: "tr"}, settings.settings.Speech)

	require.NoError(t, service.SetLocale(context.Background(), "TR"))
	assert.Equal(t, domain.LocaleTurkish, settings.settings.Locale)

	assert.Error(t, service.SetLocale(context.Background(), "de"))
	assert.Equal(t, domain.LocaleTurkish, settings.settings.Locale)
}

func TestSelectModelValidatesFirst(t *testing.T) {
	settings := &memorySettings{present: true, settings: domain.Settings{
		Provider:  domain.ProviderGemini,
		SecretRef: "notifyai/gemini/api_key",
	}}
	secrets := newMemorySecrets(map[string]string{"notifyai/gemini/api_key": "AIza"})
	provider := &stubProvider{id: domain.ProviderGemini}
	service := newCommandService(settings, secrets, provider)

	require.NoError(t, service.SelectModel(context.Background(), "gemini-2.5-flash", true))
	assert.Equal(t, "gemini-2.5-flash", settings.settings.Model)

	provider.validate = &domain.ProviderError{Provider: domain.ProviderGemini, Status: 429, Body: "quota"}
	err := service.SelectModel(context.Background(), "gemini-2.5-pro", true)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, "gemini-2.5-flash", settings.settings.Model)

	provider.validate = &domain.ProviderError{Provider: domain.ProviderGemini, Status: 404, Body: "not found"}
	err = service.SelectModel(context.Background(), "gemini-0", true)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

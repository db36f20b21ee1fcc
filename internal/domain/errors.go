package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrInvalidTarget    = errors.New("invalid delivery target")
	ErrPromptMissing    = errors.New("system prompt missing")
)

// ConfigurationError reports a missing API key, an unreadable system prompt or
// any other setting the pipeline cannot run without.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-2xx answer from an upstream model API.
type ProviderError struct {
	Provider ProviderID
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.Status, e.Body)
}

// ModelNotFound reports whether the upstream rejected the model identifier.
func (e *ProviderError) ModelNotFound() bool {
	return e.Status == 404
}

// QuotaExceeded reports a rate-limit rejection, either by status or by an
// error message that mentions the quota.
func (e *ProviderError) QuotaExceeded() bool {
	return e.Status == 429 || strings.Contains(strings.ToLower(e.Body), "quota")
}

type MalformedResponseError struct {
	Provider ProviderID
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected %s response format: %s", e.Provider, e.Reason)
}

type UnknownProviderError struct {
	Value string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Value)
}

type DeliveryError struct {
	Target string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// TTSError wraps the failure of one speech attempt. Stage names the call
// shape that failed: "speak", "speak_region", "speak_no_language" or "legacy".
type TTSError struct {
	Stage string
	Err   error
}

func (e *TTSError) Error() string {
	return fmt.Sprintf("tts %s: %v", e.Stage, e.Err)
}

func (e *TTSError) Unwrap() error {
	return e.Err
}

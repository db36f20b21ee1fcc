// Package assets reads the system prompt and images from disk.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
)

const SystemPromptFile = "system_prompt.md"

// PromptFile serves the system prompt from a markdown file.
type PromptFile struct {
	path string
}

var _ ports.PromptSource = (*PromptFile)(nil)

func NewPromptFile(path string) *PromptFile {
	return &PromptFile{path: path}
}

// SystemPrompt fails with a ConfigurationError wrapping ErrPromptMissing when
// the file is absent, unreadable or blank.
func (p *PromptFile) SystemPrompt(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &domain.ConfigurationError{Reason: fmt.Sprintf("%s not found at %s", SystemPromptFile, p.path), Err: domain.ErrPromptMissing}
		}
		return "", &domain.ConfigurationError{Reason: "read system prompt", Err: errors.Join(domain.ErrPromptMissing, err)}
	}

	prompt := string(data)
	if strings.TrimSpace(prompt) == "" {
		return "", &domain.ConfigurationError{Reason: "system prompt is empty", Err: domain.ErrPromptMissing}
	}

	return prompt, nil
}

// SettingsPrompt reads the prompt file named by the settings, or the default
// path when the settings name none or cannot be loaded.
type SettingsPrompt struct {
	settings    ports.SettingsRepository
	defaultPath string
}

var _ ports.PromptSource = (*SettingsPrompt)(nil)

func NewSettingsPrompt(settings ports.SettingsRepository, defaultPath string) *SettingsPrompt {
	return &SettingsPrompt{settings: settings, defaultPath: defaultPath}
}

func (p *SettingsPrompt) SystemPrompt(ctx context.Context) (string, error) {
	path := p.defaultPath
	if loaded, err := p.settings.Load(ctx); err == nil && strings.TrimSpace(loaded.SystemPromptPath) != "" {
		path = loaded.SystemPromptPath
	}

	return NewPromptFile(path).SystemPrompt(ctx)
}

// ImageFiles loads request images from local paths.
type ImageFiles struct{}

var _ ports.ImageSource = ImageFiles{}

func (ImageFiles) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("image not found at %s", path)
		}
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}

	return data, nil
}

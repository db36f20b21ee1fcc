package ports

import "context"

type PromptSource interface {
	SystemPrompt(ctx context.Context) (string, error)
}

type ImageSource interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

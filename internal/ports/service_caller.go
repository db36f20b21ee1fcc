package ports

import "context"

// ServiceCaller invokes a host service such as "notify.mobile_app" or
// "tts.speak" with a JSON-compatible payload.
type ServiceCaller interface {
	Call(ctx context.Context, namespace, action string, data map[string]any) error
}

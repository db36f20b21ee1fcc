// Package desktop shows notifications on the local desktop.
package desktop

import (
	"context"
	"fmt"

	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/gen2brain/beeep"
)

// Namespace is the target namespace routed to the desktop, as in
// "desktop.notify" or "desktop.alert".
const Namespace = "desktop"

type showFunc func(title, message string) error

type Notifier struct {
	notify showFunc
	alert  showFunc
}

var _ ports.ServiceCaller = (*Notifier)(nil)

func New() *Notifier {
	return &Notifier{
		notify: func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:  func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

func (n *Notifier) Call(ctx context.Context, _ string, action string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title, _ := data["title"].(string)
	message, _ := data["message"].(string)

	var show showFunc
	switch action {
	case "notify":
		show = n.notify
	case "alert":
		show = n.alert
	default:
		return fmt.Errorf("unsupported desktop action %q", action)
	}

	if err := show(title, message); err != nil {
		return fmt.Errorf("desktop %s: %w", action, err)
	}
	return nil
}

package desktop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallDispatchesByAction(t *testing.T) {
	t.Parallel()

	var shown []string
	n := &Notifier{
		notify: func(title, message string) error {
			shown = append(shown, "notify:"+title+":"+message)
			return nil
		},
		alert: func(title, message string) error {
			shown = append(shown, "alert:"+title+":"+message)
			return errors.New("no display")
		},
	}

	require.NoError(t, n.Call(context.Background(), Namespace, "notify", map[string]any{"title": "T", "message": "M"}))

	err := n.Call(context.Background(), Namespace, "alert", map[string]any{"title": "T"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")

	err = n.Call(context.Background(), Namespace, "beep", nil)
	assert.Error(t, err)

	assert.Equal(t, []string{"notify:T:M", "alert:T:"}, shown)
}

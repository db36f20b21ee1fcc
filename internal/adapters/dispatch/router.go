// Package dispatch routes service calls to a caller chosen by namespace.
package dispatch

import (
	"context"
	"errors"

	"github.com/ahamitd/notifyai/internal/ports"
)

var ErrNoRoute = errors.New("no service caller for namespace")

// Router sends each call to the caller registered for its namespace and
// everything else to the fallback, normally the home automation host.
type Router struct {
	routes   map[string]ports.ServiceCaller
	fallback ports.ServiceCaller
}

var _ ports.ServiceCaller = (*Router)(nil)

func NewRouter(fallback ports.ServiceCaller) *Router {
	return &Router{routes: map[string]ports.ServiceCaller{}, fallback: fallback}
}

func (r *Router) Handle(namespace string, caller ports.ServiceCaller) *Router {
	r.routes[namespace] = caller
	return r
}

func (r *Router) Call(ctx context.Context, namespace, action string, data map[string]any) error {
	if caller, ok := r.routes[namespace]; ok {
		return caller.Call(ctx, namespace, action, data)
	}
	if r.fallback == nil {
		return ErrNoRoute
	}
	return r.fallback.Call(ctx, namespace, action, data)
}

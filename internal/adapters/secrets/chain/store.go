package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/ahamitd/notifyai/internal/adapters/secrets/env"
	filestore "github.com/ahamitd/notifyai/internal/adapters/secrets/file"
	passstore "github.com/ahamitd/notifyai/internal/adapters/secrets/pass"
	"github.com/ahamitd/notifyai/internal/ports"
)

// Backend is one named store in a chain.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Reads and writes stop at the first
// backend that succeeds; deletes reach every backend so no stale copy of a
// key survives in a lower one.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret store chain has no backends")

func NewStore(backends ...Backend) *Store {
	store, err := NewStoreChecked(backends...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret store backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: backends}, nil
}

// NewDefault reads the environment first, then pass, then plain files under
// fileRoot. Writes land in pass when it is available, otherwise in files.
func NewDefault(fileRoot string) (*Store, error) {
	return NewStoreChecked(
		Backend{Name: "env", Store: envstore.NewStore()},
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		if !errors.Is(err, envstore.ErrReadOnly) {
			errs = append(errs, fmt.Errorf("%s backend put failed: %w", backend.Name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("%s backend get failed: %w", backend.Name, err))
	}

	return "", errors.Join(errs...)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var (
		errs      []error
		succeeded bool
	)
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		switch {
		case err == nil:
			succeeded = true
		case shouldStop(err):
			return err
		case errors.Is(err, envstore.ErrReadOnly):
		default:
			errs = append(errs, fmt.Errorf("%s backend delete failed: %w", backend.Name, err))
		}
	}

	if succeeded {
		return nil
	}
	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package chain

import (
	"context"
	"errors"
	"fmt"

	agestore "github.com/bnema/poolrdp/internal/adapters/secrets/age"
	filestore "github.com/bnema/poolrdp/internal/adapters/secrets/file"
	passstore "github.com/bnema/poolrdp/internal/adapters/secrets/pass"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

// Backend names accepted by Open.
const (
	BackendAge   = "age"
	BackendPass  = "pass"
	BackendFile  = "file"
	BackendChain = "chain"
)

type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewPassFirstWithAgeFallback prefers pass and falls back to age sealed files
// under dir.
func NewPassFirstWithAgeFallback(dir string, identityPath string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(), agestore.NewStore(filestore.NewStore(dir), identityPath))
}

// Open builds the store for a configured backend name.
func Open(backend string, dir string, identityPath string) (ports.SecretStore, error) {
	switch backend {
	case BackendAge:
		return agestore.NewStore(filestore.NewStore(dir), identityPath), nil
	case BackendPass:
		return passstore.NewStore(), nil
	case BackendFile:
		return filestore.NewStore(dir), nil
	case BackendChain, "":
		return NewPassFirstWithAgeFallback(dir, identityPath)
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", backend)
	}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(err, domain.ErrSecretNotFound) && errors.Is(fallbackErr, domain.ErrSecretNotFound) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete clears the key from both backends so a forgotten secret cannot
// resurface from the fallback.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	if err == nil || fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

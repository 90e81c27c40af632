// Package age encrypts secrets with an age X25519 identity before handing
// them to another store.
package age

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"

	"github.com/bnema/poolrdp/internal/ports"
)

const (
	identityFileMode = 0o600
	identityDirMode  = 0o700
)

type Store struct {
	inner        ports.SecretStore
	identityPath string

	mu       sync.Mutex
	identity *age.X25519Identity
}

var _ ports.SecretStore = (*Store)(nil)

// NewStore seals values into inner. The identity at identityPath is created
// on first use.
func NewStore(inner ports.SecretStore, identityPath string) *Store {
	return &Store{inner: inner, identityPath: filepath.Clean(identityPath)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	identity, err := s.loadIdentity()
	if err != nil {
		return err
	}

	sealed, err := encrypt([]byte(value), identity.Recipient())
	if err != nil {
		return fmt.Errorf("seal secret %q: %w", key, err)
	}

	return s.inner.Put(ctx, key, sealed)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	identity, err := s.loadIdentity()
	if err != nil {
		return "", err
	}

	plaintext, err := decrypt(sealed, identity)
	if err != nil {
		return "", fmt.Errorf("open secret %q: %w", key, err)
	}

	return string(plaintext), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Store) loadIdentity() (*age.X25519Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity != nil {
		return s.identity, nil
	}

	data, err := os.ReadFile(s.identityPath)
	switch {
	case err == nil:
		identity, parseErr := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if parseErr != nil {
			return nil, fmt.Errorf("parse age identity %q: %w", s.identityPath, parseErr)
		}
		s.identity = identity
		return identity, nil
	case errors.Is(err, os.ErrNotExist):
		identity, genErr := s.createIdentity()
		if genErr != nil {
			return nil, genErr
		}
		s.identity = identity
		return identity, nil
	default:
		return nil, fmt.Errorf("read age identity %q: %w", s.identityPath, err)
	}
}

func (s *Store) createIdentity() (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generate age identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.identityPath), identityDirMode); err != nil {
		return nil, fmt.Errorf("create age identity directory: %w", err)
	}

	f, err := os.OpenFile(s.identityPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, identityFileMode)
	if err != nil {
		return nil, fmt.Errorf("create age identity %q: %w", s.identityPath, err)
	}
	if _, err := fmt.Fprintf(f, "# public key: %s\n%s\n", identity.Recipient(), identity); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write age identity: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close age identity: %w", err)
	}

	return identity, nil
}

func encrypt(plaintext []byte, recipient age.Recipient) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decrypt(sealed string, identity age.Identity) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sealed))
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	return io.ReadAll(r)
}

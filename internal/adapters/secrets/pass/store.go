// Package pass keeps secrets in the standard unix password manager.
package pass

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/poolrdp/internal/adapters/command"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

const (
	passBinary = "pass"
	notInStore = "is not in the password store"
)

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: func(ctx context.Context, input string, args ...string) (string, string, error) {
		return command.RunInput(ctx, input, passBinary, args...)
	}}
}

// Put overwrites the entry with value as its only line.
func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, stderr, err := s.run(ctx, value+"\n", "insert", "--multiline", "--force", key); err != nil {
		return command.FormatError("pass insert", key, err, stderr)
	}

	return nil
}

// Get returns the first line of the entry. Anything after it (pass users keep
// notes there) is ignored.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", key)
	switch {
	case err != nil && strings.Contains(stderr, notInStore):
		return "", fmt.Errorf("pass entry %q: %w", key, domain.ErrSecretNotFound)
	case err != nil:
		return "", command.FormatError("pass show", key, err, stderr)
	}

	line, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Delete treats a missing entry as already deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "--force", key)
	if err != nil && !strings.Contains(stderr, notInStore) {
		return command.FormatError("pass rm", key, err, stderr)
	}

	return nil
}

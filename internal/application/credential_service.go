package application

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strings"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

// CredentialService persists the single stored password of a user.
type CredentialService struct {
	store       ports.SecretStore
	currentUser func() (string, error)
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store, currentUser: osUsername}
}

func CredentialKey(username string) string {
	replacer := strings.NewReplacer("\\", "_", "/", "_", "..", "_")
	return "poolrdp/users/" + replacer.Replace(strings.ToLower(strings.TrimSpace(username))) + "/password"
}

func (s *CredentialService) Save(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", domain.ErrBadCredentials)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrBadCredentials)
	}

	if err := s.store.Put(ctx, CredentialKey(username), password); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	return nil
}

func (s *CredentialService) Load(ctx context.Context, username string) (string, error) {
	password, err := s.store.Get(ctx, CredentialKey(username))
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", fmt.Errorf("%w for %q", domain.ErrNoStoredCredential, username)
		}
		return "", fmt.Errorf("load credential: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("%w for %q", domain.ErrNoStoredCredential, username)
	}

	return password, nil
}

func (s *CredentialService) Forget(ctx context.Context, username string) error {
	if err := s.store.Delete(ctx, CredentialKey(username)); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	return nil
}

// CurrentUser returns the login name of the local account without any
// Windows domain prefix.
func (s *CredentialService) CurrentUser() (string, error) {
	name, err := s.currentUser()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}

	if i := strings.LastIndex(name, "\\"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", errors.New("resolve current user: empty user name")
	}

	return name, nil
}

func osUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}

	return u.Username, nil
}

package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

// SessionRequest is the immutable input of one acquisition attempt.
type SessionRequest struct {
	Username string
	Password string
	Domain   string
	PoolName string
}

func (r SessionRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrBadCredentials)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrBadCredentials)
	}
	if strings.TrimSpace(r.PoolName) == "" {
		return fmt.Errorf("%w: pool name is required", ErrInvalidRequest)
	}

	return nil
}

// LogValue keeps the password out of every log line.
func (r SessionRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", r.Username),
		slog.String("domain", r.Domain),
		slog.String("pool", r.PoolName),
	)
}

// SessionProfile describes the rendered connection document of one session.
type SessionProfile struct {
	EndpointFQDN     string
	SharedResourceID string
	DocumentPath     string
}

// CredentialScope is a host-scoped credential registration that lives only
// for the duration of one launch.
type CredentialScope struct {
	EndpointFQDN string
	Username     string
	Password     string
}

func (c CredentialScope) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", c.EndpointFQDN),
		slog.String("username", c.Username),
	)
}

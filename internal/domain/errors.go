package domain

import "errors"

var (
	ErrBadCredentials     = errors.New("bad credentials")
	ErrControlPlane       = errors.New("control plane unavailable")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrInvalidRequest     = errors.New("invalid session request")
	ErrRender             = errors.New("render session profile")
	ErrSecretNotFound     = errors.New("secret not found")
	ErrNoStoredCredential = errors.New("no stored credential")
	ErrSessionNotFound    = errors.New("session record not found")
	ErrToolUnavailable    = errors.New("command unavailable")
)

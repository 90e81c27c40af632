package domain

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fqdn   string
		domain string
		want   bool
	}{
		{name: "internal segment", fqdn: "vm17.internal.example.com", domain: "example.com", want: true},
		{name: "case insensitive", fqdn: "VM17.INTERNAL.EXAMPLE.COM", domain: "example.com", want: true},
		{name: "short marker", fqdn: "vm1.int.example.com", domain: "example.com", want: true},
		{name: "external segment", fqdn: "vm3.external.example.com", domain: "example.com", want: false},
		{name: "other domain", fqdn: "vm3.internal.example.org", domain: "example.com", want: false},
		{name: "domain dot is literal", fqdn: "vm3.internal.exampleXcom", domain: "example.com", want: false},
		{name: "empty fqdn", fqdn: "", domain: "example.com", want: false},
		{name: "empty domain", fqdn: "vm17.internal.example.com", domain: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEndpoint(tt.fqdn, tt.domain))
		})
	}
}

func TestOutcomeCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusSuccess, Success("vm17.internal.example.com").Code())
	assert.Equal(t, StatusBadCredentials, BadCredentials().Code())
	assert.Equal(t, StatusProblem, Transient().Code())
	assert.Equal(t, StatusProblem, Timeout().Code())
	assert.Equal(t, StatusProblem, Outcome{Kind: "unexpected"}.Code())
}

func TestStatusCodeMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Connection success", StatusSuccess.Message())
	assert.Contains(t, StatusBadCredentials.Message(), "password")
	assert.Equal(t, StatusProblem.Message(), StatusCode(42).Message())
}

func TestSessionRequestValidate(t *testing.T) {
	t.Parallel()

	valid := SessionRequest{Username: "alice", Password: "secret", Domain: "example.com", PoolName: "desktops"}
	require.NoError(t, valid.Validate())

	missingPassword := valid
	missingPassword.Password = ""
	assert.ErrorIs(t, missingPassword.Validate(), ErrBadCredentials)

	missingUser := valid
	missingUser.Username = "  "
	assert.ErrorIs(t, missingUser.Validate(), ErrBadCredentials)

	missingPool := valid
	missingPool.PoolName = ""
	assert.ErrorIs(t, missingPool.Validate(), ErrInvalidRequest)
}

func TestSessionRequestLogValueOmitsPassword(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("acquire", "request", SessionRequest{Username: "alice", Password: "hunter2", PoolName: "desktops"})
	logger.Info("register", "scope", CredentialScope{EndpointFQDN: "vm1", Username: "alice", Password: "hunter2"})

	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), "alice")
}

func TestLaunchResultErrKeepsStepOrder(t *testing.T) {
	t.Parallel()

	result := NewLaunchResult()
	require.NoError(t, result.Err())

	result.StepErrors[StepUnmapShare] = errors.New("busy")
	result.StepErrors[StepRunClient] = errors.New("exit status 1")

	err := result.Err()
	require.Error(t, err)
	assert.True(t, result.Failed(StepRunClient))
	assert.False(t, result.Failed(StepMapShare))
	assert.Less(t, bytes.Index([]byte(err.Error()), []byte("run_client")), bytes.Index([]byte(err.Error()), []byte("unmap_share")))
}

func TestSessionRecordDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 90*time.Second, SessionRecord{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}.Duration())
	assert.Zero(t, SessionRecord{StartedAt: start}.Duration())
	assert.Zero(t, SessionRecord{StartedAt: start, FinishedAt: start.Add(-time.Second)}.Duration())
}

package docker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	pingErr  error
	states   []containerState
	listArg  string
	created  []createSpec
	started  []string
	startErr error
	closed   int
}

func (f *fakeEngine) ping(context.Context) error { return f.pingErr }

func (f *fakeEngine) list(_ context.Context, label string) ([]containerState, error) {
	f.listArg = label
	return f.states, nil
}

func (f *fakeEngine) create(_ context.Context, spec createSpec) (string, error) {
	f.created = append(f.created, spec)
	return "ctr-new", nil
}

func (f *fakeEngine) start(_ context.Context, id string) error {
	f.started = append(f.started, id)
	return f.startErr
}

func (f *fakeEngine) close() error {
	f.closed++
	return nil
}

func newTestControlPlane(cfg Config, eng *fakeEngine) *ControlPlane {
	cp := NewControlPlane(cfg, nil)
	cp.dial = func(string) (engine, error) { return eng, nil }
	return cp
}

func TestListMembersMapsContainers(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{states: []containerState{
		{ID: "a", Hostname: "desk-1", Domainname: "internal.example.com", Status: "running"},
		{ID: "b", Hostname: "desk-2", Status: "exited"},
		{ID: "c", Status: "restarting"},
	}}
	session, err := newTestControlPlane(Config{}, eng).Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)

	members, err := session.ListMembers(context.Background(), "desk")
	require.NoError(t, err)

	assert.Equal(t, "poolrdp.pool=desk", eng.listArg)
	assert.Equal(t, []domain.PoolMember{
		{ID: "a", FQDN: "desk-1.internal.example.com", Status: domain.MemberUp},
		{ID: "b", FQDN: "desk-2", Status: domain.MemberDown},
		{ID: "c", FQDN: "", Status: domain.MemberOther},
	}, members)
}

func TestAllocateCreatesLabelledMember(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{}
	cfg := Config{Image: "poolrdp/desktop:latest", Domain: "internal.example.com", Memory: "2g", CPUs: 1.5, Network: "desks"}
	session, err := newTestControlPlane(cfg, eng).Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, session.Allocate(context.Background(), "desk"))
	require.Len(t, eng.created, 1)

	spec := eng.created[0]
	assert.Equal(t, "poolrdp/desktop:latest", spec.Image)
	assert.True(t, strings.HasPrefix(spec.Hostname, "desk-"))
	assert.Equal(t, "poolrdp-"+spec.Hostname, spec.Name)
	assert.Equal(t, "internal.example.com", spec.Domainname)
	assert.Equal(t, map[string]string{"poolrdp.pool": "desk"}, spec.Labels)
	assert.Equal(t, int64(2*1024*1024*1024), spec.Memory)
	assert.Equal(t, int64(1.5e9), spec.NanoCPUs)
	assert.Equal(t, "desks", spec.Network)
}

func TestAllocateWithoutImageReportsMissingPool(t *testing.T) {
	t.Parallel()

	session, err := newTestControlPlane(Config{}, &fakeEngine{}).Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)

	assert.ErrorIs(t, session.Allocate(context.Background(), "desk"), domain.ErrPoolNotFound)
}

func TestStartWrapsEngineErrors(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{startErr: errors.New("no such image")}
	session, err := newTestControlPlane(Config{}, eng).Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)

	err = session.Start(context.Background(), "ctr-1")
	assert.ErrorIs(t, err, domain.ErrControlPlane)
	assert.Equal(t, []string{"ctr-1"}, eng.started)

	require.NoError(t, session.Close())
	assert.Equal(t, 1, eng.closed)
}

func TestAuthenticateFailsWhenEngineUnreachable(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{pingErr: errors.New("dial unix /var/run/docker.sock: connect: no such file")}
	_, err := newTestControlPlane(Config{}, eng).Authenticate(context.Background(), "alice", "pw")

	assert.ErrorIs(t, err, domain.ErrControlPlane)
	assert.NotErrorIs(t, err, domain.ErrBadCredentials)
	assert.Equal(t, 1, eng.closed)
}

func TestAuthenticateRejectsBadMemory(t *testing.T) {
	t.Parallel()

	_, err := newTestControlPlane(Config{Memory: "lots"}, &fakeEngine{}).Authenticate(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, domain.ErrControlPlane)
	assert.ErrorContains(t, err, "parse member memory")
}

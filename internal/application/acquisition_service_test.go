package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAcquireConfig(maxIterations int) AcquireConfig {
	cfg := DefaultAcquireConfig()
	cfg.MaxIterations = maxIterations
	cfg.Domain = "example.com"
	return cfg
}

func TestAcquireAllocatesStartsAndSucceeds(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{},
		{{ID: "vm17", Status: domain.MemberDown}},
		{{ID: "vm17", FQDN: "vm17.internal.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeReachable}}
	clock := newFakeClock()
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, clock, testAcquireConfig(10), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.Success("vm17.internal.example.com"), outcome)
	assert.Equal(t, 1, session.allocateCalls)
	assert.Equal(t, []domain.MemberID{"vm17"}, session.started)
	assert.Equal(t, []string{"vm17.internal.example.com"}, prober.hosts)
	assert.Equal(t, 3, session.listCalls)
	assert.Equal(t, 1, session.closeCalls)
}

func TestAcquireTimesOutWhenEndpointNeverMatchesDomain(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{{ID: "vm3", FQDN: "vm3.external.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeReachable}}
	clock := newFakeClock()
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, clock, testAcquireConfig(5), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.Timeout(), outcome)
	assert.Empty(t, prober.hosts)
	assert.Equal(t, 5, session.listCalls)
	assert.Equal(t, 5, clock.sleeps())
	assert.Equal(t, 1, session.closeCalls)
}

func TestAcquireBadCredentialsRunsNoIterations(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{}
	controlPlane := &scriptedControlPlane{
		session: session,
		authErr: fmt.Errorf("sso login: %w", domain.ErrBadCredentials),
	}
	svc := NewAcquisitionService(controlPlane, &scriptedProber{}, newFakeClock(), testAcquireConfig(5), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.BadCredentials(), outcome)
	assert.Equal(t, domain.StatusBadCredentials, outcome.Code())
	assert.Zero(t, session.listCalls)
	assert.Zero(t, session.closeCalls)
}

func TestAcquireConnectionFailureIsTransient(t *testing.T) {
	t.Parallel()

	controlPlane := &scriptedControlPlane{authErr: fmt.Errorf("dial: %w", domain.ErrControlPlane)}
	svc := NewAcquisitionService(controlPlane, &scriptedProber{}, newFakeClock(), testAcquireConfig(5), nil)

	assert.Equal(t, domain.Transient(), svc.Acquire(context.Background(), testRequest()))
}

func TestAcquireTimesOutWhenProbeAlwaysTimesOut(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{{ID: "vm17", FQDN: "vm17.internal.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeTimedOut}, err: errors.New("i/o timeout")}
	clock := newFakeClock()
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, clock, testAcquireConfig(4), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.Timeout(), outcome)
	assert.Len(t, prober.hosts, 4)
	assert.Zero(t, clock.sleeps(), "probe timeout paces the loop")
	assert.Equal(t, 1, session.closeCalls)
}

func TestAcquireSleepsAfterProbeError(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{{ID: "vm17", FQDN: "vm17.internal.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{
		results: []ports.ProbeResult{ports.ProbeError, ports.ProbeError, ports.ProbeReachable},
		err:     errors.New("connection refused"),
	}
	clock := newFakeClock()
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, clock, testAcquireConfig(10), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, 2, clock.sleeps())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.slept)
}

func TestAcquireSucceedsOnFirstObservedReadyMember(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{
			{ID: "vm1", FQDN: "vm1.internal.example.com", Status: domain.MemberUp},
			{ID: "vm2", FQDN: "vm2.internal.example.com", Status: domain.MemberUp},
		},
	}}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeReachable}}
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, newFakeClock(), testAcquireConfig(10), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.Success("vm1.internal.example.com"), outcome)
	assert.Equal(t, 1, session.listCalls)
	assert.Empty(t, session.started)
}

func TestAcquireAbsorbsControlPlaneErrorsInsideLoop(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{
		listErrs:    []error{errors.New("502 bad gateway")},
		allocateErr: errors.New("allocation already in progress"),
		startErr:    errors.New("vm is locked"),
		snapshots: [][]domain.PoolMember{
			nil,
			{},
			{{ID: "vm9", FQDN: "vm9.internal.example.com", Status: domain.MemberDown}},
		},
	}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeReachable}}
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, newFakeClock(), testAcquireConfig(10), nil)

	outcome := svc.Acquire(context.Background(), testRequest())

	assert.Equal(t, domain.Success("vm9.internal.example.com"), outcome)
	assert.Equal(t, 1, session.allocateCalls)
	assert.Equal(t, []domain.MemberID{"vm9"}, session.started)
}

func TestAcquireFailsFastWhenPoolDoesNotExist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session *scriptedSession
	}{
		{
			name:    "allocate",
			session: &scriptedSession{allocateErr: fmt.Errorf("pool %q: %w", "desk", domain.ErrPoolNotFound)},
		},
		{
			name:    "list",
			session: &scriptedSession{listErrs: []error{fmt.Errorf("pool %q: %w", "desk", domain.ErrPoolNotFound)}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := newFakeClock()
			svc := NewAcquisitionService(&scriptedControlPlane{session: tt.session}, &scriptedProber{}, clock, testAcquireConfig(10), nil)

			outcome := svc.Acquire(context.Background(), testRequest())

			assert.Equal(t, domain.Transient(), outcome)
			assert.Equal(t, domain.StatusProblem, outcome.Code())
			assert.Equal(t, 1, tt.session.listCalls)
			assert.Zero(t, clock.sleeps())
			assert.Equal(t, 1, tt.session.closeCalls)
		})
	}
}

func TestAcquireObservesCancellationBetweenIterations(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{{ID: "vm17", FQDN: "vm17.internal.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{
		results: []ports.ProbeResult{ports.ProbeTimedOut},
		onProbe: func(int) { cancel() },
	}
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, newFakeClock(), testAcquireConfig(10), nil)

	outcome := svc.Acquire(ctx, testRequest())

	assert.Equal(t, domain.Transient(), outcome)
	assert.Len(t, prober.hosts, 1, "the in-flight probe completes, the next iteration never starts")
	assert.Equal(t, 1, session.closeCalls)
}

func TestAcquireRejectsMissingPasswordWithoutAuthenticating(t *testing.T) {
	t.Parallel()

	controlPlane := &scriptedControlPlane{session: &scriptedSession{}}
	svc := NewAcquisitionService(controlPlane, &scriptedProber{}, newFakeClock(), testAcquireConfig(5), nil)

	req := testRequest()
	req.Password = ""

	assert.Equal(t, domain.BadCredentials(), svc.Acquire(context.Background(), req))
	assert.Zero(t, controlPlane.authCalls)
}

func TestAcquireFallsBackToConfiguredDomain(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{snapshots: [][]domain.PoolMember{
		{{ID: "vm17", FQDN: "vm17.internal.example.com", Status: domain.MemberUp}},
	}}
	prober := &scriptedProber{results: []ports.ProbeResult{ports.ProbeReachable}}
	svc := NewAcquisitionService(&scriptedControlPlane{session: session}, prober, newFakeClock(), testAcquireConfig(3), nil)

	req := testRequest()
	req.Domain = ""

	outcome := svc.Acquire(context.Background(), req)
	require.Equal(t, domain.OutcomeSuccess, outcome.Kind)
}

package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slept)
}

type scriptedControlPlane struct {
	authErr   error
	session   *scriptedSession
	authCalls int
}

func (c *scriptedControlPlane) Authenticate(_ context.Context, _, _ string) (ports.PoolSession, error) {
	c.authCalls++
	if c.authErr != nil {
		return nil, c.authErr
	}
	return c.session, nil
}

// scriptedSession replays one member snapshot per ListMembers call and
// repeats the last one once the script runs out.
type scriptedSession struct {
	snapshots   [][]domain.PoolMember
	listErrs    []error
	allocateErr error
	startErr    error

	listCalls     int
	allocateCalls int
	started       []domain.MemberID
	closeCalls    int
}

func (s *scriptedSession) ListMembers(_ context.Context, _ string) ([]domain.PoolMember, error) {
	call := s.listCalls
	s.listCalls++

	if call < len(s.listErrs) && s.listErrs[call] != nil {
		return nil, s.listErrs[call]
	}
	if len(s.snapshots) == 0 {
		return nil, nil
	}
	if call >= len(s.snapshots) {
		call = len(s.snapshots) - 1
	}
	return s.snapshots[call], nil
}

func (s *scriptedSession) Allocate(_ context.Context, _ string) error {
	s.allocateCalls++
	return s.allocateErr
}

func (s *scriptedSession) Start(_ context.Context, id domain.MemberID) error {
	s.started = append(s.started, id)
	return s.startErr
}

func (s *scriptedSession) Close() error {
	s.closeCalls++
	return nil
}

type scriptedProber struct {
	results []ports.ProbeResult
	err     error
	hosts   []string
	onProbe func(call int)
}

func (p *scriptedProber) Probe(_ context.Context, host string, _ int, _ time.Duration) (ports.ProbeResult, error) {
	call := len(p.hosts)
	p.hosts = append(p.hosts, host)
	if p.onProbe != nil {
		p.onProbe(call)
	}

	result := ports.ProbeError
	if len(p.results) > 0 {
		idx := call
		if idx >= len(p.results) {
			idx = len(p.results) - 1
		}
		result = p.results[idx]
	}
	if result == ports.ProbeReachable {
		return result, nil
	}
	return result, p.err
}

type stubAcquirer struct {
	outcome domain.Outcome
	delay   time.Duration
	panics  bool
}

func (a stubAcquirer) Acquire(_ context.Context, _ domain.SessionRequest) domain.Outcome {
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.panics {
		panic("control plane exploded")
	}
	return a.outcome
}

type recordingLauncher struct {
	profiles []domain.SessionProfile
	scopes   []domain.CredentialScope
	result   domain.LaunchResult
}

func (l *recordingLauncher) Launch(_ context.Context, profile domain.SessionProfile, scope domain.CredentialScope) domain.LaunchResult {
	l.profiles = append(l.profiles, profile)
	l.scopes = append(l.scopes, scope)
	if l.result.StepErrors == nil {
		return domain.NewLaunchResult()
	}
	return l.result
}

type fakeRenderer struct {
	err      error
	rendered []string
	last     domain.SessionProfile
}

func (r *fakeRenderer) Render(_ context.Context, endpointFQDN, sharedResourceID string) (domain.SessionProfile, error) {
	if r.err != nil {
		return domain.SessionProfile{}, r.err
	}
	r.rendered = append(r.rendered, endpointFQDN)
	r.last = domain.SessionProfile{
		EndpointFQDN:     endpointFQDN,
		SharedResourceID: sharedResourceID,
		DocumentPath:     "/tmp/poolrdp/session.rdp",
	}
	return r.last, nil
}

func (r *fakeRenderer) Load(_ context.Context) (domain.SessionProfile, error) {
	if r.last.DocumentPath == "" {
		return domain.SessionProfile{}, domain.ErrRender
	}
	return r.last, nil
}

type memorySessions struct {
	mu     sync.Mutex
	record *domain.SessionRecord
	saves  int
}

func (m *memorySessions) Last(_ context.Context) (domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return *m.record, nil
}

func (m *memorySessions) Save(_ context.Context, record domain.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.record = &record
	return nil
}

type fakeSync struct {
	mu       sync.Mutex
	delay    time.Duration
	err      error
	finished bool
}

func (f *fakeSync) Sync(_ context.Context, _ domain.SessionRequest) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = true
	return f.err
}

func (f *fakeSync) done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

func testRequest() domain.SessionRequest {
	return domain.SessionRequest{
		Username: "alice",
		Password: "secret",
		Domain:   "example.com",
		PoolName: "desktops",
	}
}

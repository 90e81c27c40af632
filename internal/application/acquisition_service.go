package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AcquireConfig holds the timing budget of one acquisition.
type AcquireConfig struct {
	MaxIterations int
	Step          time.Duration
	ProbeTimeout  time.Duration
	Port          int
	Domain        string
}

func DefaultAcquireConfig() AcquireConfig {
	return AcquireConfig{
		MaxIterations: 120,
		Step:          time.Second,
		ProbeTimeout:  time.Second,
		Port:          3389,
	}
}

// AcquisitionService turns a pool name plus credentials into a reachable
// session endpoint.
type AcquisitionService struct {
	controlPlane ports.ControlPlane
	prober       ports.Prober
	clock        ports.Clock
	cfg          AcquireConfig
	logger       *slog.Logger
	tracer       trace.Tracer
	iterations   metric.Int64Counter
	outcomes     metric.Int64Counter
}

func NewAcquisitionService(controlPlane ports.ControlPlane, prober ports.Prober, clock ports.Clock, cfg AcquireConfig, logger *slog.Logger) *AcquisitionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &AcquisitionService{
		controlPlane: controlPlane,
		prober:       prober,
		clock:        clock,
		cfg:          cfg,
		logger:       loggerOrDiscard(logger),
		tracer:       otel.Tracer(instrumentationName),
		iterations:   counter("poolrdp.acquire.iterations", "Polling iterations run by acquisition"),
		outcomes:     counter("poolrdp.acquire.outcomes", "Terminal acquisition outcomes"),
	}
}

// Acquire runs the bounded polling loop and returns exactly one outcome.
// Cancellation of ctx is observed only between iterations. A probe or
// control-plane call already in flight always completes.
func (s *AcquisitionService) Acquire(ctx context.Context, req domain.SessionRequest) domain.Outcome {
	ctx, span := s.tracer.Start(ctx, "acquire", trace.WithAttributes(
		attribute.String("pool", req.PoolName),
		attribute.Int("max_iterations", s.cfg.MaxIterations),
	))
	defer span.End()

	outcome := s.acquire(ctx, req)

	span.SetAttributes(attribute.String("outcome", string(outcome.Kind)))
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome.Kind))))
	s.logger.Info("acquisition finished", "request", req, "outcome", outcome.Kind, "endpoint", outcome.Endpoint)

	return outcome
}

func (s *AcquisitionService) acquire(ctx context.Context, req domain.SessionRequest) domain.Outcome {
	if err := req.Validate(); err != nil {
		s.logger.Warn("rejecting session request", "request", req, "err", err)
		if errors.Is(err, domain.ErrBadCredentials) {
			return domain.BadCredentials()
		}
		return domain.Transient()
	}

	session, err := s.controlPlane.Authenticate(context.WithoutCancel(ctx), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			s.logger.Warn("control plane rejected credentials", "request", req, "err", err)
			return domain.BadCredentials()
		}
		s.logger.Error("control plane connection failed", "request", req, "err", err)
		return domain.Transient()
	}

	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("close control plane session", "err", err)
		}
	}()

	expectedDomain := req.Domain
	if expectedDomain == "" {
		expectedDomain = s.cfg.Domain
	}

	for iteration := 1; iteration <= s.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			s.logger.Info("acquisition cancelled", "iteration", iteration, "err", err)
			return domain.Transient()
		}

		s.iterations.Add(ctx, 1)
		trace.SpanFromContext(ctx).AddEvent("iteration", trace.WithAttributes(attribute.Int("iteration", iteration)))

		endpoint, err := s.poll(context.WithoutCancel(ctx), session, req.PoolName, expectedDomain, iteration)
		if err != nil {
			s.logger.Error("acquisition aborted", "pool", req.PoolName, "iteration", iteration, "err", err)
			return domain.Transient()
		}
		if endpoint != "" {
			return domain.Success(endpoint)
		}
	}

	s.logger.Warn("acquisition budget exhausted", "pool", req.PoolName, "iterations", s.cfg.MaxIterations)
	return domain.Timeout()
}

// poll runs one iteration and returns a reachable endpoint, or "" to try
// again. Control-plane errors are absorbed, except a pool that does not
// exist, which no amount of polling will fix.
func (s *AcquisitionService) poll(ctx context.Context, session ports.PoolSession, poolName, expectedDomain string, iteration int) (string, error) {
	logger := s.logger.With("iteration", iteration, "pool", poolName)

	members, err := session.ListMembers(ctx, poolName)
	if errors.Is(err, domain.ErrPoolNotFound) {
		return "", err
	}
	if err != nil {
		logger.Warn("list pool members", "err", err)
		s.clock.Sleep(s.cfg.Step)
		return "", nil
	}

	if len(members) == 0 {
		err := session.Allocate(ctx, poolName)
		if errors.Is(err, domain.ErrPoolNotFound) {
			return "", err
		}
		if err != nil {
			logger.Info("allocate pool member", "err", err)
		}
		s.clock.Sleep(s.cfg.Step)
		return "", nil
	}

	member := members[0]
	logger = logger.With("member_id", member.ID, "fqdn", member.FQDN, "status", member.Status)

	if member.Status == domain.MemberDown {
		if err := session.Start(ctx, member.ID); err != nil {
			logger.Info("start pool member", "err", err)
		}
	}

	if !domain.ValidEndpoint(member.FQDN, expectedDomain) {
		logger.Info("member endpoint not ready")
		s.clock.Sleep(s.cfg.Step)
		return "", nil
	}

	result, err := s.prober.Probe(ctx, member.FQDN, s.cfg.Port, s.cfg.ProbeTimeout)
	switch result {
	case ports.ProbeReachable:
		logger.Info("member reachable")
		return member.FQDN, nil
	case ports.ProbeTimedOut:
		logger.Debug("probe timed out")
		return "", nil
	default:
		logger.Info("probe failed", "err", err)
		s.clock.Sleep(s.cfg.Step)
		return "", nil
	}
}

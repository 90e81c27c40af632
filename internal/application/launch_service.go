package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// The mapped drive and the credential registry belong to the whole machine,
// so at most one launch may hold them.
var desktopMu sync.Mutex

type LaunchConfig struct {
	Drive  string
	Folder string
}

type LaunchService struct {
	desktop      ports.Desktop
	cfg          LaunchConfig
	logger       *slog.Logger
	newBackOff   func() backoff.BackOff
	stepFailures metric.Int64Counter
}

func NewLaunchService(desktop ports.Desktop, cfg LaunchConfig, logger *slog.Logger) *LaunchService {
	return &LaunchService{
		desktop:      desktop,
		cfg:          cfg,
		logger:       loggerOrDiscard(logger),
		newBackOff:   releaseBackOff,
		stepFailures: counter("poolrdp.launch.step_failures", "Failed launch steps"),
	}
}

func releaseBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return b
}

// Launch maps the share, registers the credential scope and blocks on the
// client. The scope is unregistered and the share unmapped on every exit
// path, including a failing or panicking client. Cancellation is honoured
// only before the client starts.
func (s *LaunchService) Launch(ctx context.Context, profile domain.SessionProfile, scope domain.CredentialScope) (result domain.LaunchResult) {
	desktopMu.Lock()
	defer desktopMu.Unlock()

	result = domain.NewLaunchResult()
	logger := s.logger.With("launch_id", uuid.NewString(), "scope", scope, "profile", profile.DocumentPath)
	release := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("launch step panicked", "panic", r, "stack", string(debug.Stack()))
			result.StepErrors[domain.StepRunClient] = fmt.Errorf("client panicked: %v", r)
		}
	}()

	s.acquire(ctx, logger, &result, domain.StepMapShare, func() error {
		return s.desktop.MapShare(release, s.cfg.Drive, s.cfg.Folder)
	})
	defer s.release(ctx, logger, &result, domain.StepUnmapShare, domain.StepMapShare, func() error {
		return s.desktop.UnmapShare(release, s.cfg.Drive)
	})

	s.acquire(ctx, logger, &result, domain.StepRegisterCredential, func() error {
		return s.desktop.RegisterCredential(release, scope)
	})
	defer s.release(ctx, logger, &result, domain.StepUnregisterCredential, domain.StepRegisterCredential, func() error {
		return s.desktop.UnregisterCredential(release, scope.EndpointFQDN)
	})

	if err := ctx.Err(); err != nil {
		logger.Info("launch cancelled before client start", "err", err)
		result.StepErrors[domain.StepRunClient] = fmt.Errorf("cancelled before client start: %w", err)
		return result
	}

	logger.Info("starting remote desktop client")
	if err := s.desktop.RunClient(release, profile.DocumentPath); err != nil {
		s.fail(ctx, logger, &result, domain.StepRunClient, err)
		return result
	}
	logger.Info("remote desktop client exited")

	return result
}

func (s *LaunchService) acquire(ctx context.Context, logger *slog.Logger, result *domain.LaunchResult, step domain.LaunchStep, fn func() error) {
	if err := guard(fn); err != nil {
		s.fail(ctx, logger, result, step, err)
		return
	}
	logger.Info("launch step done", "step", step)
}

// release runs a cleanup step with retries. It makes a single attempt when
// the paired acquire step failed or the binary is missing.
func (s *LaunchService) release(ctx context.Context, logger *slog.Logger, result *domain.LaunchResult, step, acquired domain.LaunchStep, fn func() error) {
	attempts := 0
	once := result.Failed(acquired)
	err := backoff.Retry(func() error {
		attempts++
		err := guard(fn)
		if err != nil && (once || errors.Is(err, domain.ErrToolUnavailable)) {
			return backoff.Permanent(err)
		}
		return err
	}, s.newBackOff())
	if err != nil {
		s.fail(ctx, logger, result, step, fmt.Errorf("after %d attempts: %w", attempts, err))
		return
	}
	logger.Info("launch step done", "step", step, "attempts", attempts)
}

func (s *LaunchService) fail(ctx context.Context, logger *slog.Logger, result *domain.LaunchResult, step domain.LaunchStep, err error) {
	logger.Error("launch step failed", "step", step, "err", err)
	result.StepErrors[step] = err
	s.stepFailures.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("step", string(step))))
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn()
}

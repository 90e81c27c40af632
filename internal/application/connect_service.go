package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Acquirer interface {
	Acquire(ctx context.Context, req domain.SessionRequest) domain.Outcome
}

type Launcher interface {
	Launch(ctx context.Context, profile domain.SessionProfile, scope domain.CredentialScope) domain.LaunchResult
}

type ConnectConfig struct {
	SharedResourceID string
}

type ConnectResult struct {
	Outcome domain.Outcome
	Profile domain.SessionProfile
	SyncErr error
	Record  domain.SessionRecord
}

func (r ConnectResult) Code() domain.StatusCode {
	return r.Outcome.Code()
}

// ConnectService joins acquisition with the sync step, renders the session
// profile and keeps the last-session ledger current.
type ConnectService struct {
	acquirer Acquirer
	launcher Launcher
	renderer ports.ProfileRenderer
	sessions ports.SessionRepository
	clock    ports.Clock
	cfg      ConnectConfig
	logger   *slog.Logger
}

func NewConnectService(acquirer Acquirer, launcher Launcher, renderer ports.ProfileRenderer, sessions ports.SessionRepository, clock ports.Clock, cfg ConnectConfig, logger *slog.Logger) *ConnectService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ConnectService{
		acquirer: acquirer,
		launcher: launcher,
		renderer: renderer,
		sessions: sessions,
		clock:    clock,
		cfg:      cfg,
		logger:   loggerOrDiscard(logger),
	}
}

// Connect runs acquisition and sync side by side and waits for both before
// deciding. Only the acquisition outcome decides the result; a failed sync is
// logged and reported in SyncErr.
func (s *ConnectService) Connect(ctx context.Context, req domain.SessionRequest, sync ports.SyncTask) ConnectResult {
	record := domain.SessionRecord{
		ID:        uuid.NewString(),
		PoolName:  req.PoolName,
		Username:  req.Username,
		StartedAt: s.clock.Now(),
	}

	outcome := domain.Transient()
	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("acquisition panicked", "panic", r, "stack", string(debug.Stack()))
			}
		}()
		outcome = s.acquirer.Acquire(ctx, req)
		return nil
	})
	if sync != nil {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("sync task panicked", "panic", r, "stack", string(debug.Stack()))
					err = fmt.Errorf("sync task panicked: %v", r)
				}
			}()
			return sync.Sync(ctx, req)
		})
	}
	syncErr := g.Wait()
	if syncErr != nil {
		s.logger.Warn("sync task failed", "err", syncErr)
	}

	result := ConnectResult{Outcome: outcome, SyncErr: syncErr}
	if outcome.Kind == domain.OutcomeSuccess {
		profile, err := s.renderer.Render(ctx, outcome.Endpoint, s.cfg.SharedResourceID)
		if err != nil {
			s.logger.Error("render session profile", "endpoint", outcome.Endpoint, "err", err)
			result.Outcome = domain.Transient()
		} else {
			result.Profile = profile
		}
	}

	record.Endpoint = outcome.Endpoint
	record.Outcome = result.Outcome.Kind
	record.Code = result.Code()
	record.FinishedAt = s.clock.Now()
	s.saveRecord(ctx, record)
	result.Record = record

	return result
}

// Start runs Connect on its own goroutine. The returned channel yields
// exactly one status code and is then closed.
func (s *ConnectService) Start(ctx context.Context, req domain.SessionRequest, sync ports.SyncTask) <-chan domain.StatusCode {
	done := make(chan domain.StatusCode, 1)

	go func() {
		defer close(done)
		code := domain.StatusProblem
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("connect worker panicked", "panic", r, "stack", string(debug.Stack()))
			}
			done <- code
		}()

		code = s.Connect(ctx, req, sync).Code()
	}()

	return done
}

// Launch starts the client against endpoint, or against the last rendered
// profile when endpoint is empty.
func (s *ConnectService) Launch(ctx context.Context, req domain.SessionRequest, endpoint string) (domain.LaunchResult, error) {
	var (
		profile domain.SessionProfile
		err     error
	)
	if endpoint == "" {
		profile, err = s.renderer.Load(ctx)
	} else {
		profile, err = s.renderer.Render(ctx, endpoint, s.cfg.SharedResourceID)
	}
	if err != nil {
		return domain.LaunchResult{}, fmt.Errorf("prepare session profile: %w", err)
	}

	launchedAt := s.clock.Now()
	result := s.launcher.Launch(ctx, profile, domain.CredentialScope{
		EndpointFQDN: profile.EndpointFQDN,
		Username:     req.Username,
		Password:     req.Password,
	})

	s.recordLaunch(ctx, req, profile.EndpointFQDN, launchedAt, result)

	return result, nil
}

func (s *ConnectService) recordLaunch(ctx context.Context, req domain.SessionRequest, endpoint string, launchedAt time.Time, result domain.LaunchResult) {
	if s.sessions == nil {
		return
	}

	record, err := s.sessions.Last(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn("load session record", "err", err)
	}
	if err != nil || record.Endpoint != endpoint {
		record = domain.SessionRecord{
			ID:        uuid.NewString(),
			PoolName:  req.PoolName,
			Username:  req.Username,
			Endpoint:  endpoint,
			Outcome:   domain.OutcomeSuccess,
			Code:      domain.StatusSuccess,
			StartedAt: launchedAt,
		}
	}

	record.LaunchedAt = launchedAt
	record.FinishedAt = s.clock.Now()
	record.LaunchError = ""
	if err := result.Err(); err != nil {
		record.LaunchError = err.Error()
	}

	s.saveRecord(ctx, record)
}

func (s *ConnectService) saveRecord(ctx context.Context, record domain.SessionRecord) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Warn("save session record", "id", record.ID, "err", err)
	}
}

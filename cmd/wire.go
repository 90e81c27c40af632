package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	dockerplane "github.com/bnema/poolrdp/internal/adapters/controlplane/docker"
	ovirtplane "github.com/bnema/poolrdp/internal/adapters/controlplane/ovirt"
	desktopadapter "github.com/bnema/poolrdp/internal/adapters/desktop"
	tcpprobe "github.com/bnema/poolrdp/internal/adapters/probe/tcp"
	rdprender "github.com/bnema/poolrdp/internal/adapters/render/rdp"
	statusadapter "github.com/bnema/poolrdp/internal/adapters/render/status"
	tomlrepo "github.com/bnema/poolrdp/internal/adapters/repo/toml"
	chainstore "github.com/bnema/poolrdp/internal/adapters/secrets/chain"
	"github.com/bnema/poolrdp/internal/adapters/workspace"
	"github.com/bnema/poolrdp/internal/application"
	"github.com/bnema/poolrdp/internal/config"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/logging"
	"github.com/bnema/poolrdp/internal/ports"
	"github.com/bnema/poolrdp/internal/telemetry"
	"github.com/bnema/poolrdp/internal/version"
)

type app struct {
	cfg            config.Config
	logger         *slog.Logger
	connect        *application.ConnectService
	credentials    *application.CredentialService
	renderer       *rdprender.Renderer
	sessions       ports.SessionRepository
	sync           ports.SyncTask
	statusRenderer func(*domain.SessionRecord, statusadapter.RenderOptions) (string, error)
	prompt         passwordPrompt
	now            func() time.Time

	closers []func(context.Context) error
}

// wireOptions replaces real adapters, mostly for tests. Nil fields fall back
// to the configured adapters.
type wireOptions struct {
	controlPlane ports.ControlPlane
	prober       ports.Prober
	desktop      ports.Desktop
	secretStore  ports.SecretStore
	clock        ports.Clock
	prompt       passwordPrompt
	stderr       io.Writer
}

type wireOption func(*wireOptions)

func wireApp(ctx context.Context, configPath, logLevel string, opts wireOptions) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, closeLog, err := logging.New(logging.Options{
		File:   cfg.Log.File,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Stderr: opts.stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return closeLog() })

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
	})
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("wire telemetry: %w", err)
	}
	a.closers = append([]func(context.Context) error{shutdown}, a.closers...)

	controlPlane := opts.controlPlane
	if controlPlane == nil {
		controlPlane = newControlPlane(cfg, logger)
	}

	var prober ports.Prober = tcpprobe.NewProber()
	if opts.prober != nil {
		prober = opts.prober
	}

	var desktop ports.Desktop = desktopadapter.NewDesktop(desktopadapter.Commands{
		MapShare:             cfg.Launch.MapShare,
		UnmapShare:           cfg.Launch.UnmapShare,
		RegisterCredential:   cfg.Launch.RegisterCredential,
		UnregisterCredential: cfg.Launch.UnregisterCredential,
		RunClient:            cfg.Launch.RunClient,
	}, logger)
	if opts.desktop != nil {
		desktop = opts.desktop
	}

	secretStore := opts.secretStore
	if secretStore == nil {
		secretStore, err = chainstore.Open(cfg.Secrets.Backend, cfg.Secrets.Dir, cfg.Secrets.Identity)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("wire secret store: %w", err)
		}
	}

	sessions, err := tomlrepo.NewRepository(cfg.Sessions.Path)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("wire session ledger: %w", err)
	}

	clock := opts.clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	renderer := rdprender.NewRenderer(cfg.Profile.Template, cfg.Profile.Destination)

	acquisition := application.NewAcquisitionService(controlPlane, prober, clock, application.AcquireConfig{
		MaxIterations: cfg.Acquire.MaxIterations,
		Step:          cfg.Acquire.Step,
		ProbeTimeout:  cfg.Acquire.ProbeTimeout,
		Port:          cfg.Acquire.Port,
		Domain:        cfg.Domain,
	}, logger)

	launcher := application.NewLaunchService(desktop, application.LaunchConfig{
		Drive:  cfg.Share.Drive,
		Folder: cfg.Share.Folder,
	}, logger)

	a.connect = application.NewConnectService(acquisition, launcher, renderer, sessions, clock, application.ConnectConfig{
		SharedResourceID: cfg.Share.Drive,
	}, logger)
	a.credentials = application.NewCredentialService(secretStore)
	a.renderer = renderer
	a.sessions = sessions
	a.sync = workspace.Tasks{
		workspace.NewFolders(append([]string{cfg.Share.Folder}, cfg.Folders...)...),
		workspace.NewCommand(cfg.Sync.Command, logger),
	}
	a.statusRenderer = statusadapter.Render
	a.prompt = opts.prompt
	if a.prompt == nil {
		a.prompt = terminalPrompt{}
	}
	a.now = clock.Now

	return a, nil
}

func newControlPlane(cfg config.Config, logger *slog.Logger) ports.ControlPlane {
	switch cfg.ControlPlane.Kind {
	case "docker":
		return dockerplane.NewControlPlane(dockerplane.Config{
			Host:    cfg.ControlPlane.Docker.Host,
			Image:   cfg.ControlPlane.Docker.Image,
			Network: cfg.ControlPlane.Docker.Network,
			Domain:  cfg.ControlPlane.Docker.Domain,
			Memory:  cfg.ControlPlane.Docker.Memory,
			CPUs:    cfg.ControlPlane.Docker.CPUs,
		}, logger)
	default:
		return ovirtplane.NewControlPlane(ovirtplane.Config{
			URL:      cfg.ControlPlane.URL,
			CAFile:   cfg.ControlPlane.CAFile,
			Insecure: cfg.ControlPlane.Insecure,
			Timeout:  cfg.ControlPlane.Timeout,
			Profile:  cfg.ControlPlane.Profile,
		}, logger)
	}
}

func (a *app) close(ctx context.Context) {
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil && a.logger != nil {
			a.logger.Warn("shutdown", "err", err)
		}
	}
	a.closers = nil
}

// request builds the session request for username against the configured pool.
func (a *app) request(username, password string) domain.SessionRequest {
	return domain.SessionRequest{
		Username: username,
		Password: password,
		Domain:   a.cfg.Domain,
		PoolName: a.cfg.PoolName,
	}
}

package desktop

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bnema/poolrdp/internal/adapters/command"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

// Commands holds one argv template per desktop operation. An empty template
// turns the operation into a no-op.
type Commands struct {
	MapShare             []string
	UnmapShare           []string
	RegisterCredential   []string
	UnregisterCredential []string
	RunClient            []string
}

// Fields available to the argv templates.
type commandData struct {
	Drive    string
	Folder   string
	Endpoint string
	Username string
	Password string
	Profile  string
}

type Desktop struct {
	commands Commands
	run      command.RunFunc
	logger   *slog.Logger
}

var _ ports.Desktop = (*Desktop)(nil)

func NewDesktop(commands Commands, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Desktop{commands: commands, run: command.Run, logger: logger}
}

func (d *Desktop) MapShare(ctx context.Context, drive, folder string) error {
	return d.exec(ctx, "map share", d.commands.MapShare, commandData{Drive: drive, Folder: folder})
}

func (d *Desktop) UnmapShare(ctx context.Context, drive string) error {
	return d.exec(ctx, "unmap share", d.commands.UnmapShare, commandData{Drive: drive})
}

func (d *Desktop) RegisterCredential(ctx context.Context, scope domain.CredentialScope) error {
	return d.exec(ctx, "register credential", d.commands.RegisterCredential, commandData{
		Endpoint: scope.EndpointFQDN,
		Username: scope.Username,
		Password: scope.Password,
	})
}

func (d *Desktop) UnregisterCredential(ctx context.Context, endpointFQDN string) error {
	return d.exec(ctx, "unregister credential", d.commands.UnregisterCredential, commandData{Endpoint: endpointFQDN})
}

func (d *Desktop) RunClient(ctx context.Context, profilePath string) error {
	return d.exec(ctx, "run client", d.commands.RunClient, commandData{Profile: profilePath})
}

// exec never logs arguments: the credential templates carry the password.
func (d *Desktop) exec(ctx context.Context, op string, argv []string, data commandData) error {
	if len(argv) == 0 {
		d.logger.Debug("desktop operation disabled", "op", op)
		return nil
	}

	args, err := command.Expand(argv, data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.logger.Debug("running desktop command", "op", op, "command", args[0])
	_, stderr, err := d.run(ctx, args[0], args[1:]...)
	if err != nil {
		return command.FormatError(op, args[0], err, stderr)
	}

	return nil
}

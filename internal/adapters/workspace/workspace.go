// Package workspace holds the preparation tasks that run beside endpoint
// acquisition.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bnema/poolrdp/internal/adapters/command"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

const folderMode = 0o700

// Folders makes sure every configured directory exists.
type Folders struct {
	paths []string
}

var _ ports.SyncTask = (*Folders)(nil)

func NewFolders(paths ...string) *Folders {
	return &Folders{paths: paths}
}

func (f *Folders) Sync(ctx context.Context, _ domain.SessionRequest) error {
	for _, path := range f.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, folderMode); err != nil {
			return fmt.Errorf("ensure folder %q: %w", path, err)
		}
	}

	return nil
}

// Command runs a user supplied command. Its argv templates see .Username,
// .Domain and .Pool but never the password.
type Command struct {
	argv   []string
	run    command.RunFunc
	logger *slog.Logger
}

var _ ports.SyncTask = (*Command)(nil)

func NewCommand(argv []string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Command{argv: argv, run: command.Run, logger: logger}
}

func (c *Command) Sync(ctx context.Context, req domain.SessionRequest) error {
	if len(c.argv) == 0 {
		return nil
	}

	args, err := command.Expand(c.argv, struct {
		Username string
		Domain   string
		Pool     string
	}{Username: req.Username, Domain: req.Domain, Pool: req.PoolName})
	if err != nil {
		return fmt.Errorf("sync command: %w", err)
	}

	c.logger.Debug("running sync command", "command", args[0])
	stdout, stderr, err := c.run(ctx, args[0], args[1:]...)
	if err != nil {
		return command.FormatError("sync", args[0], err, stderr)
	}
	if stdout != "" {
		c.logger.Debug("sync command output", "command", args[0], "bytes", len(stdout))
	}

	return nil
}

// Tasks runs every task in order and joins their failures.
type Tasks []ports.SyncTask

func (t Tasks) Sync(ctx context.Context, req domain.SessionRequest) error {
	var errs []error
	for _, task := range t {
		if task == nil {
			continue
		}
		if err := task.Sync(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

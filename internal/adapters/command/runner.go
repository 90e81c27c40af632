package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"text/template"

	"github.com/bnema/poolrdp/internal/domain"
)

// ErrUnavailable reports a binary missing from PATH.
var ErrUnavailable = domain.ErrToolUnavailable

// RunFunc runs one external command to completion.
type RunFunc func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

func Run(ctx context.Context, name string, args ...string) (string, string, error) {
	return RunInput(ctx, "", name, args...)
}

// RunInput is Run with input fed to the command's stdin.
func RunInput(ctx context.Context, input string, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		return "", "", fmt.Errorf("locate %s command: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

// Expand executes every argv element as a text/template against data.
func Expand(argv []string, data any) ([]string, error) {
	out := make([]string, 0, len(argv))
	for i, raw := range argv {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=error").Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse argument %d: %w", i, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("expand argument %d: %w", i, err)
		}
		out = append(out, buf.String())
	}

	if len(out) == 0 || strings.TrimSpace(out[0]) == "" {
		return nil, errors.New("command name is empty")
	}

	return out, nil
}

func FormatError(op string, name string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%s (%s): %w", op, name, err)
	}

	return fmt.Errorf("%s (%s): %w: %s", op, name, err, stderr)
}

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoPassword = errors.New("no password available")

type passwordPrompt interface {
	Interactive() bool
	ReadPassword(w io.Writer, label string) (string, error)
}

type terminalPrompt struct{}

func (terminalPrompt) Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (terminalPrompt) ReadPassword(w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: no terminal available for an interactive prompt (use --password-stdin)", errNoPassword)
	}

	_, _ = fmt.Fprint(w, label)
	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(password), nil
}

// readPasswordLine reads the first line of r without its line ending.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%w: stdin is empty", errNoPassword)
	}

	return line, nil
}

func resolveUser(a *app, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return strings.TrimSpace(flagValue), nil
	}

	return a.credentials.CurrentUser()
}

// resolvePassword prefers stdin when asked, then the stored credential, then
// an interactive prompt. stored reports whether the stored credential was used.
func resolvePassword(cmd *cobra.Command, a *app, username string, fromStdin bool) (password string, stored bool, err error) {
	if fromStdin {
		password, err = readPasswordLine(cmd.InOrStdin())
		return password, false, err
	}

	password, err = a.credentials.Load(cmd.Context(), username)
	if err == nil {
		return password, true, nil
	}
	if !errors.Is(err, domain.ErrNoStoredCredential) {
		a.logger.Warn("load stored credential", "user", username, "err", err)
	}

	if !a.prompt.Interactive() {
		return "", false, fmt.Errorf("%w for %q: store one with `poolrdp credentials save` or pass --password-stdin", errNoPassword, username)
	}

	password, err = a.prompt.ReadPassword(cmd.ErrOrStderr(), fmt.Sprintf("Password for %s: ", username))
	return password, false, err
}

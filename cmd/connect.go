package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/spf13/cobra"
)

// maxPasswordRetries bounds the re-prompts after a rejected password.
const maxPasswordRetries = 3

func newConnectCmd(c *cli) *cobra.Command {
	var (
		username      string
		passwordStdin bool
		noSave        bool
		noLaunch      bool
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Acquire a desktop and launch the remote desktop client",
		Long: "connect authenticates against the control plane, acquires a reachable desktop from the pool, " +
			"renders the connection profile and runs the remote desktop client until it exits.\n\n" +
			"A rejected password exits with 2 and any other connection problem exits with 3.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			user, err := resolveUser(a, username)
			if err != nil {
				return err
			}
			password, stored, err := resolvePassword(cmd, a, user, passwordStdin)
			if err != nil {
				return err
			}

			req := a.request(user, password)
			code, err := awaitConnect(cmd, a, req)
			if err != nil {
				return err
			}
			for retry := 0; code == domain.StatusBadCredentials && retry < maxPasswordRetries; retry++ {
				if passwordStdin || !a.prompt.Interactive() {
					break
				}
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), code.Message())

				password, err = a.prompt.ReadPassword(cmd.ErrOrStderr(), fmt.Sprintf("Password for %s: ", user))
				if err != nil {
					return err
				}
				stored = false
				req = a.request(user, password)
				if code, err = awaitConnect(cmd, a, req); err != nil {
					return err
				}
			}

			if code != domain.StatusSuccess {
				return statusErr(code)
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), code.Message())

			if !noSave && !stored {
				if err := a.credentials.Save(cmd.Context(), user, password); err != nil {
					a.logger.Warn("save credential", "user", user, "err", err)
				}
			}

			if noLaunch {
				return nil
			}

			return launchLast(cmd, a, req)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "User name (default: the current OS user)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the password after a successful connection")
	cmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Stop after the profile is rendered")

	return cmd
}

func awaitConnect(cmd *cobra.Command, a *app, req domain.SessionRequest) (domain.StatusCode, error) {
	code := domain.StatusProblem
	label := fmt.Sprintf("Acquiring a desktop from pool %s...", req.PoolName)
	err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
		code = <-a.connect.Start(ctx, req, a.sync)
		return nil
	})
	if err != nil {
		return domain.StatusProblem, fmt.Errorf("waiting for connection: %w", err)
	}

	return code, nil
}

// launchLast runs the client against the profile rendered by the last
// successful connection.
func launchLast(cmd *cobra.Command, a *app, req domain.SessionRequest) error {
	result, err := a.connect.Launch(cmd.Context(), req, "")
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLaunchCmd(c *cli) *cobra.Command {
	var (
		username      string
		passwordStdin bool
		fqdn          string
	)

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch the remote desktop client against the last profile or a given endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			user, err := resolveUser(a, username)
			if err != nil {
				return err
			}
			password, _, err := resolvePassword(cmd, a, user, passwordStdin)
			if err != nil {
				return err
			}

			result, err := a.connect.Launch(cmd.Context(), a.request(user, password), strings.TrimSpace(fqdn))
			if err != nil {
				return err
			}
			if err := result.Err(); err != nil {
				return fmt.Errorf("launch: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "User name (default: the current OS user)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	cmd.Flags().StringVar(&fqdn, "fqdn", "", "Render a fresh profile for this endpoint before launching")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCredentialsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage the stored password",
	}

	cmd.AddCommand(newCredentialsSaveCmd(c), newCredentialsForgetCmd(c))

	return cmd
}

func newCredentialsSaveCmd(c *cli) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store the password of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			user, err := resolveUser(a, username)
			if err != nil {
				return err
			}

			var password string
			if passwordStdin {
				password, err = readPasswordLine(cmd.InOrStdin())
			} else {
				password, err = a.prompt.ReadPassword(cmd.ErrOrStderr(), fmt.Sprintf("Password for %s: ", user))
			}
			if err != nil {
				return err
			}

			if err := a.credentials.Save(cmd.Context(), user, password); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved password for %s\n", user)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "User name (default: the current OS user)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")

	return cmd
}

func newCredentialsForgetCmd(c *cli) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored password of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			user, err := resolveUser(a, username)
			if err != nil {
				return err
			}

			if err := a.credentials.Forget(cmd.Context(), user); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "forgot password for %s\n", user)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "User name (default: the current OS user)")

	return cmd
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/poolrdp/internal/application"
	"github.com/spf13/cobra"
)

type acquireOutput struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Endpoint string `json:"endpoint,omitempty"`
	Profile  string `json:"profile,omitempty"`
	SyncErr  string `json:"sync_error,omitempty"`
}

func newAcquireCmd(c *cli) *cobra.Command {
	var (
		username      string
		passwordStdin bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire a desktop and render its profile without launching the client",
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

			req := a.request(user, password)
			var result application.ConnectResult
			label := fmt.Sprintf("Acquiring a desktop from pool %s...", req.PoolName)
			if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
				result = a.connect.Connect(ctx, req, a.sync)
				return nil
			}); err != nil {
				return fmt.Errorf("waiting for connection: %w", err)
			}

			code := result.Code()
			out := acquireOutput{
				Code:     int(code),
				Message:  code.Message(),
				Endpoint: result.Profile.EndpointFQDN,
				Profile:  result.Profile.DocumentPath,
			}
			if result.SyncErr != nil {
				out.SyncErr = result.SyncErr.Error()
			}

			if err := writeAcquireOutput(cmd, out, asJSON); err != nil {
				return err
			}

			return statusErr(code)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "User name (default: the current OS user)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func writeAcquireOutput(cmd *cobra.Command, out acquireOutput, asJSON bool) error {
	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if _, err := fmt.Fprintf(w, "status: %d %s\n", out.Code, out.Message); err != nil {
		return err
	}
	if out.Endpoint != "" {
		if _, err := fmt.Fprintf(w, "endpoint: %s\nprofile: %s\n", out.Endpoint, out.Profile); err != nil {
			return err
		}
	}
	if out.SyncErr != "" {
		if _, err := fmt.Fprintf(w, "sync: %s\n", out.SyncErr); err != nil {
			return err
		}
	}

	return nil
}

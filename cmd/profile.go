package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Render or show the RDP connection profile",
	}

	cmd.AddCommand(newProfileRenderCmd(c), newProfileShowCmd(c))

	return cmd
}

func newProfileRenderCmd(c *cli) *cobra.Command {
	var fqdn string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the profile for an endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			fqdn = strings.TrimSpace(fqdn)
			if !domain.ValidEndpoint(fqdn, a.cfg.Domain) {
				return fmt.Errorf("endpoint %q is not a host of domain %q", fqdn, a.cfg.Domain)
			}

			profile, err := a.renderer.Render(cmd.Context(), fqdn, a.cfg.Share.Drive)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), profile.DocumentPath)
			return err
		},
	}

	cmd.Flags().StringVar(&fqdn, "fqdn", "", "Endpoint FQDN written into the profile")
	_ = cmd.MarkFlagRequired("fqdn")

	return cmd
}

func newProfileShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the last rendered profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			if _, err := a.renderer.Load(cmd.Context()); err != nil {
				return err
			}

			data, err := os.ReadFile(a.renderer.Destination())
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const skipWireAnnotation = "poolrdp/skip-wire"

type cli struct {
	root *cobra.Command
	opts wireOptions
	app  *app

	configPath string
	logLevel   string
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newCLI()
	defer c.close()

	return c.root.ExecuteContext(ctx)
}

func newCLI(options ...wireOption) *cli {
	c := &cli{}
	for _, option := range options {
		option(&c.opts)
	}

	rootCmd := &cobra.Command{
		Use:   "poolrdp",
		Short: "Remote desktop sessions from a VM pool",
		Long: "poolrdp acquires a reachable desktop from a virtualization pool, renders an RDP profile for it " +
			"and launches the remote desktop client with a mapped share and a scoped credential.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipWireAnnotation] != "" {
				return nil
			}
			return c.wire(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default: $POOLRDP_CONFIG or ~/.poolrdp/config.toml)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConnectCmd(c),
		newAcquireCmd(c),
		newLaunchCmd(c),
		newProfileCmd(c),
		newCredentialsCmd(c),
		newStatusCmd(c),
	)

	c.root = rootCmd
	return c
}

func (c *cli) wire(cmd *cobra.Command) error {
	if c.app != nil {
		return nil
	}

	opts := c.opts
	if opts.stderr == nil {
		opts.stderr = cmd.ErrOrStderr()
	}

	a, err := wireApp(cmd.Context(), c.configPath, c.logLevel, opts)
	if err != nil {
		return err
	}

	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}

	c.app.close(context.Background())
	c.app = nil
}

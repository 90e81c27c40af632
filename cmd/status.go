package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	statusadapter "github.com/bnema/poolrdp/internal/adapters/render/status"
	"github.com/bnema/poolrdp/internal/domain"
	"github.com/spf13/cobra"
)

const defaultStaleAfter = 12 * time.Hour

type statusOutput struct {
	ID          string    `json:"id"`
	Pool        string    `json:"pool"`
	User        string    `json:"user"`
	Endpoint    string    `json:"endpoint,omitempty"`
	Outcome     string    `json:"outcome"`
	Code        int       `json:"code"`
	Message     string    `json:"message"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	LaunchedAt  time.Time `json:"launched_at,omitzero"`
	LaunchError string    `json:"launch_error,omitempty"`
}

func newStatusCmd(c *cli) *cobra.Command {
	var (
		asJSON     bool
		staleAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			var last *domain.SessionRecord
			record, err := a.sessions.Last(cmd.Context())
			switch {
			case err == nil:
				last = &record
			case errors.Is(err, domain.ErrSessionNotFound):
			default:
				return fmt.Errorf("load last session: %w", err)
			}

			return writeStatusOutput(cmd, a, last, staleAfter, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Mark sessions older than this as stale")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, a *app, record *domain.SessionRecord, staleAfter time.Duration, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if record == nil {
			return enc.Encode(nil)
		}
		return enc.Encode(statusOutput{
			ID:          record.ID,
			Pool:        record.PoolName,
			User:        record.Username,
			Endpoint:    record.Endpoint,
			Outcome:     string(record.Outcome),
			Code:        int(record.Code),
			Message:     record.Code.Message(),
			StartedAt:   record.StartedAt,
			FinishedAt:  record.FinishedAt,
			LaunchedAt:  record.LaunchedAt,
			LaunchError: record.LaunchError,
		})
	}

	rendered, err := a.statusRenderer(record, statusadapter.RenderOptions{
		Now:        a.now(),
		StaleAfter: staleAfter,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checkHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long until the server is up")

	return cmd
}

// checkHealth polls the health endpoint until it answers or wait runs out
func checkHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)
	for {
		var result HealthResult
		err := client.Get(ctx, "/api/v1/health", &result)
		if err == nil || !time.Now().Before(deadline) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("waiting for server: %w", ctx.Err())
		case <-time.After(healthPollInterval):
		}
	}
}

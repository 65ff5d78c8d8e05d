// Package run implements the run command: one full discovery cycle.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/common"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/pipeline"
)

// Command returns the run command.
func Command(configPath func() string) *cobra.Command {
	var (
		query string
		mode  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a research run and drive it to publish",
		Long: `Starts a new research run, polls it to completion, validates the
extracted candidates, and publishes a new dataset version. Blocks until
the run publishes, yields nothing, or exhausts its finalize budget.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.Build(ctx, configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			params := deps.Params()
			if query != "" {
				params.Query = query
			}
			if mode != "" {
				if mode != string(domain.ModeStrict) && mode != string(domain.ModeSpeculative) {
					return fmt.Errorf("mode must be strict or speculative, got %q", mode)
				}
				params.Mode = domain.RunMode(mode)
			}

			out, err := deps.Runner.Execute(ctx, params, pipeline.ExecuteOptions{
				Lock:         deps.Lock,
				AttemptDelay: deps.Config.Scheduler.AttemptDelay,
			})
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "override the configured research query")
	cmd.Flags().StringVar(&mode, "mode", "", "acceptance mode: strict or speculative")
	return cmd
}

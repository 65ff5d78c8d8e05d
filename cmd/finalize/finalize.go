// Package finalize implements the finalize command: spend one finalize
// attempt on an existing run.
package finalize

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/common"
)

// Command returns the finalize command.
func Command(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <run-id>",
		Short: "Spend one finalize attempt on a run",
		Long: `Polls the run's stages and, if all are terminal, extracts, validates
and publishes. A run that is still pending stays resumable; one that has
spent its attempt budget is reported as blocked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.Build(ctx, configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			out, err := deps.Runner.FinalizeRun(ctx, args[0])
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
}

// Package scheduler implements the scheduler command: the cron daemon
// that triggers discovery cycles.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/common"
	schedpkg "github.com/VENTURE-AI-LABS/agent-profit-ai/internal/scheduler"
)

// Command returns the scheduler command.
func Command(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run discovery cycles on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.Build(ctx, configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			sched := schedpkg.New(
				deps.Runner,
				deps.Params(),
				deps.Lock,
				deps.Config.Scheduler.Cron,
				deps.Config.Scheduler.AttemptDelay,
				deps.Logger,
			)
			if err := sched.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
}

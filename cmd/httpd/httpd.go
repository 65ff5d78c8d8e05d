// Package httpd implements the httpd command: the operator HTTP API.
package httpd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/common"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/api"
)

// Command returns the httpd command.
func Command(configPath func() string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "httpd",
		Short: "Serve the operator HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.Build(ctx, configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			handler := api.NewHandler(
				deps.Runner,
				deps.Engine,
				deps.Publisher,
				deps.Params(),
				deps.Logger,
			)
			server := api.NewServer(handler, api.ServerConfig{
				Port:         deps.Config.Server.Port,
				ReadTimeout:  deps.Config.Server.ReadTimeout,
				WriteTimeout: deps.Config.Server.WriteTimeout,
				Debug:        debug,
			}, deps.Logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			deps.Logger.Info("shutting down api server")
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(), deps.Config.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				deps.Logger.Error("shutdown failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable gin debug mode")
	return cmd
}

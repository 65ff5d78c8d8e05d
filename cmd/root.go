// Package cmd implements the command-line interface for the discovery
// pipeline.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cmdconfig "github.com/VENTURE-AI-LABS/agent-profit-ai/internal/config"

	datasetcmd "github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/dataset"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/finalize"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/httpd"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/run"
	schedulercmd "github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/scheduler"
)

const version = "1.0.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "agent-profit",
		Short: "Discovers and publishes case studies of AI agents earning money",
		Long: `agent-profit runs scheduled research jobs that search for reports of
AI agents autonomously earning money, validates the findings against a
tiered trust policy, and publishes a versioned dataset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so env overrides are visible to every command.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yml, or CONFIG_PATH)",
	)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("agent-profit version %s\n", version)
		},
	})

	rootCmd.AddCommand(run.Command(configPath))
	rootCmd.AddCommand(finalize.Command(configPath))
	rootCmd.AddCommand(httpd.Command(configPath))
	rootCmd.AddCommand(schedulercmd.Command(configPath))
	rootCmd.AddCommand(datasetcmd.Command(configPath))
}

// configPath resolves the config file path at command run time so the
// flag has been parsed. A missing default file is fine; everything can
// come from the environment.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	path := cmdconfig.GetConfigPath("config.yml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

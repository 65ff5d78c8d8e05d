// Package dataset implements the dataset command for inspecting the
// published dataset.
package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/cmd/common"
)

// Command returns the dataset command group.
func Command(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect the published dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(listCommand(configPath))
	cmd.AddCommand(showCommand(configPath))
	return cmd
}

func listCommand(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the latest published case studies",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build(cmd.Context(), configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			ds, manifest, err := deps.Publisher.LoadLatest(cmd.Context())
			if err != nil {
				return err
			}
			if manifest.Version == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dataset published yet.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Date", "Status", "Title", "Sources"})
			for _, cs := range ds {
				t.AppendRow(table.Row{
					cs.ID,
					cs.Date,
					cs.Status,
					cs.Title,
					len(cs.ProofSources),
				})
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(),
				"\nVersion %d, updated %s, %d case studies (run %s)\n",
				manifest.Version,
				manifest.UpdatedAt.Format("2006-01-02 15:04"),
				manifest.Count,
				manifest.RunID,
			)
			return nil
		},
	}
}

func showCommand(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-study-id>",
		Short: "Print one case study as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Build(cmd.Context(), configPath())
			if err != nil {
				return err
			}
			defer deps.Close()

			ds, _, err := deps.Publisher.LoadLatest(cmd.Context())
			if err != nil {
				return err
			}

			for _, cs := range ds {
				if cs.ID == args[0] {
					encoded, encErr := json.MarshalIndent(cs, "", "  ")
					if encErr != nil {
						return encErr
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
					return nil
				}
			}
			return fmt.Errorf("case study not found: %s", args[0])
		},
	}
}

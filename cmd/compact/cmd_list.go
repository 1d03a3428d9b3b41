package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
)

var listOutputDir string

func init() {
	listCmd.Flags().StringVar(&listOutputDir, "output-dir", "", "directory to list (overrides output_dir)")
	rootCmd.AddCommand(listCmd, transcriptsCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List exported visualizations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		dir := cfg.OutputDir
		if listOutputDir != "" {
			dir = listOutputDir
		}
		files, err := export.NewExporter(dir).List()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No visualizations found.")
			return nil
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "List Claude Code JSONL transcripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		files := export.ListTranscripts(cfg.TranscriptsDir)
		if len(files) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No transcripts under %s.\n", cfg.TranscriptsDir)
			return nil
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

var (
	compactJSON     bool
	compactMessages bool
)

func init() {
	compactCmd.Flags().BoolVar(&compactJSON, "json", false, "print the full result as JSON")
	compactCmd.Flags().BoolVar(&compactMessages, "messages", false, "include parsed messages in JSON output")
	rootCmd.AddCommand(compactCmd)
}

var compactCmd = &cobra.Command{
	Use:   "compact <transcript|->",
	Short: "Summarize a JSONL transcript or pasted Human:/Assistant: conversation",
	Long: "Summarize a conversation. The argument is a transcript path, or - to read the\n" +
		"conversation from stdin. JSONL and plain text are detected automatically.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		var raw, sourceType string
		if args[0] == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			raw, sourceType = string(data), "content"
		} else {
			content, err := export.ReadTranscript(args[0])
			if err != nil {
				return err
			}
			raw, sourceType = content, "file"
		}

		result := newExtractor(cfg).Compact(raw)
		result.SourceType = sourceType
		result.RawContent = ""
		if !compactMessages {
			result.Messages = nil
		}

		out := cmd.OutOrStdout()
		if compactJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printSummary(out, result.Summary)
		return nil
	},
}

func printSummary(w io.Writer, s types.ConversationSummary) {
	fmt.Fprintf(w, "Topic:    %s\n", s.Topic)
	fmt.Fprintf(w, "Messages: %d\n", s.MessageCount)
	if s.TokenCount > 0 {
		fmt.Fprintf(w, "Tokens:   %d\n", s.TokenCount)
	}
	if len(s.ToolsUsed) > 0 {
		fmt.Fprintf(w, "Tools:    %s\n", strings.Join(s.ToolsUsed, ", "))
	}
	printList(w, "Key points", s.KeyPoints)
	printList(w, "Entities", s.Entities)
	printList(w, "Actions", s.Actions)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/publish"
	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

var (
	pushMeta        map[string]string
	pushStrict      bool
	pushConcurrency int
)

func init() {
	pushCmd.Flags().StringToStringVar(&pushMeta, "meta", nil, "thread metadata as key=value (repeatable)")
	pushCmd.Flags().BoolVar(&pushStrict, "strict", false, "validate every document against its schema before pushing")
	pushCmd.Flags().IntVar(&pushConcurrency, "concurrency", 0, "concurrent publishes (overrides publish.concurrency)")
	rootCmd.AddCommand(pushCmd, authCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push <document.json>...",
	Short: "Publish visualization documents to new Navigate Chat threads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		client, err := newNavigateClient(cfg)
		if err != nil {
			return err
		}

		metadata := make(map[string]any, len(pushMeta))
		for k, v := range pushMeta {
			metadata[k] = v
		}

		items := make([]publish.Item, 0, len(args))
		for _, path := range args {
			doc, err := readDocument(cmd, path)
			if err != nil {
				return err
			}
			if pushStrict {
				t, err := resolveType("", doc)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := visualization.Validate(t, doc); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			items = append(items, publish.Item{Name: filepath.Base(path), Document: doc, Metadata: metadata})
		}

		concurrency := cfg.Publish.Concurrency
		if pushConcurrency > 0 {
			concurrency = pushConcurrency
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		outcomes := publish.NewBatch(client, concurrency, nil).Run(ctx, items)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOCUMENT\tSTATUS\tTHREAD")
		for _, o := range outcomes {
			switch {
			case o.Err != nil:
				fmt.Fprintf(w, "%s\tfailed\t%s\n", o.Name, o.Error)
			case o.Succeeded:
				fmt.Fprintf(w, "%s\tok\t%s\n", o.Name, client.ThreadURL(o.ThreadID))
			default:
				fmt.Fprintf(w, "%s\tincomplete\t%s\n", o.Name, client.ThreadURL(o.ThreadID))
			}
		}
		w.Flush()

		if s := publish.Summarize(outcomes); s.Failed > 0 || s.Incomplete > 0 {
			return fmt.Errorf("%d of %d documents not fully published", s.Failed+s.Incomplete, len(outcomes))
		}
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check the Navigate Chat credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		client, err := newNavigateClient(cfg)
		if err != nil {
			return err
		}
		cred, err := client.Authenticate(cmd.Context())
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		out := json.NewEncoder(cmd.OutOrStdout())
		return out.Encode(map[string]any{
			"authenticated": true,
			"token_type":    cred.TokenType,
			"expires_at":    cred.ExpiresAt,
		})
	},
}

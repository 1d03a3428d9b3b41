package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

var (
	exportType      string
	exportFilename  string
	exportOutputDir string
	exportStrict    bool
)

func init() {
	exportCmd.Flags().StringVar(&exportType, "type", "", "visualization type (mindmap, sequence, knowledge_graph, timeline); detected when omitted")
	exportCmd.Flags().StringVar(&exportFilename, "filename", "", "output filename (generated when omitted)")
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "output directory (overrides output_dir)")
	exportCmd.Flags().BoolVar(&exportStrict, "strict", false, "reject documents that do not match the schema")
	rootCmd.AddCommand(exportCmd, validateCmd)
}

// readDocument reads a JSON document from path, or stdin for "-".
func readDocument(cmd *cobra.Command, path string) (json.RawMessage, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: invalid JSON", path)
	}
	return json.RawMessage(data), nil
}

// resolveType parses name, or detects the type from doc when name is empty.
func resolveType(name string, doc json.RawMessage) (visualization.Type, error) {
	if name != "" {
		return visualization.ParseType(name)
	}
	if t, ok := visualization.DetectType(doc); ok {
		return t, nil
	}
	return "", fmt.Errorf("cannot detect visualization type; pass --type")
}

var exportCmd = &cobra.Command{
	Use:   "export <document.json|->",
	Short: "Save a visualization document to the output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		t, err := resolveType(exportType, doc)
		if err != nil {
			return err
		}
		if exportStrict {
			if err := visualization.Validate(t, doc); err != nil {
				return err
			}
		}

		dir := cfg.OutputDir
		if exportOutputDir != "" {
			dir = exportOutputDir
		}
		path, err := export.NewExporter(dir).Export(doc, t, exportFilename)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var validateType string

func init() {
	validateCmd.Flags().StringVar(&validateType, "type", "", "visualization type; detected when omitted")
}

var validateCmd = &cobra.Command{
	Use:   "validate <document.json|->",
	Short: "Check a visualization document against its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		t, err := resolveType(validateType, doc)
		if err != nil {
			return err
		}
		if err := visualization.Validate(t, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "valid %s\n", t)
		return nil
	},
}

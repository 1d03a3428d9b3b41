package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupFields are prompted in order. Values come from the config file only,
// so environment overrides are never written back.
var setupFields = []struct {
	key   string
	label string
}{
	{"navigate.base_url", "Navigate Chat API URL"},
	{"navigate.email", "Navigate Chat email"},
	{"navigate.password", "Navigate Chat password"},
	{"output_dir", "Visualization output directory"},
	{"http.listen", "HTTP listen address"},
	{"http.token", "HTTP bearer token (optional)"},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())

		fmt.Fprintln(out, "claude-code-compact setup")
		fmt.Fprintln(out, "Press Enter to accept the default value shown in brackets.")
		fmt.Fprintln(out)

		for _, f := range setupFields {
			current, err := config.GetValue(cfgPath, f.key)
			if err != nil {
				return err
			}
			cur := ""
			if current != nil {
				cur = fmt.Sprint(current)
			}
			shown := cur
			if config.IsSecretKey(f.key) {
				shown = config.Mask(cur)
			}
			input := prompt(out, scanner, f.label, shown)
			if input == shown || input == cur {
				continue
			}
			if err := config.SetValue(cfgPath, f.key, input); err != nil {
				return fmt.Errorf("save %s: %w", f.key, err)
			}
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(w io.Writer, scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	stopWait    bool
	stopTimeout time.Duration
)

func init() {
	stopCmd.Flags().BoolVar(&stopWait, "wait", false, "wait for the server to exit")
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 15*time.Second, "how long --wait waits")
	rootCmd.AddCommand(stopCmd, restartCmd)
}

var errNotRunning = errors.New("no running server")

// runningServer returns the process named in the PID file, checked with
// signal 0.
func runningServer() (*os.Process, error) {
	cfg := loadConfig()
	data, err := os.ReadFile(filepath.Join(cfg.DataDir, pidFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (PID file not found)", errNotRunning)
	}
	if err != nil {
		return nil, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid PID file content: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("find process %d: %w", pid, err)
	}
	if !alive(proc) {
		return nil, fmt.Errorf("%w (process %d not found)", errNotRunning, pid)
	}
	return proc, nil
}

func alive(proc *os.Process) bool {
	return proc.Signal(syscall.Signal(0)) == nil
}

// sendSignal delivers sig to the running server.
func sendSignal(cmd *cobra.Command, sig syscall.Signal, what string) (*os.Process, error) {
	proc, err := runningServer()
	if err != nil {
		return nil, err
	}
	if err := proc.Signal(sig); err != nil {
		return nil, fmt.Errorf("send %v: %w", sig, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %v to server (PID %d) to %s.\n", sig, proc.Pid, what)
	return proc, nil
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running tool server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		proc, err := sendSignal(cmd, syscall.SIGTERM, "stop")
		if err != nil || !stopWait {
			return err
		}
		deadline := time.Now().Add(stopTimeout)
		for alive(proc) {
			if time.Now().After(deadline) {
				return fmt.Errorf("server (PID %d) still running after %s", proc.Pid, stopTimeout)
			}
			time.Sleep(100 * time.Millisecond)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Server stopped.")
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the running tool server in place",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := sendSignal(cmd, syscall.SIGHUP, "restart")
		return err
	},
}

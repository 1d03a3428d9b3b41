package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/server"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

const pidFileName = "compact.pid"

var serveListen string

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides http.listen)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, pidFileName)
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if proc, err := runningServer(); err == nil && proc.Pid != os.Getpid() {
		return fmt.Errorf("server already running (PID %d)", proc.Pid)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	listen := cfg.HTTP.Listen
	if serveListen != "" {
		listen = serveListen
	}

	opts := server.Options{
		Token:       cfg.HTTP.Token,
		Concurrency: cfg.Publish.Concurrency,
		Logger:      slog.Default(),
	}
	var publisher types.Publisher
	if client, err := newNavigateClient(cfg); err == nil {
		publisher = client
	} else {
		slog.Warn("navigate publishing disabled", "error", err)
	}
	opts.Publisher = publisher

	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.NewServer(newRegistry(cfg), opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("tool server started",
			"listen", listen,
			"output_dir", cfg.OutputDir,
			"navigate", publisher != nil,
			"auth", cfg.HTTP.Token != "",
			"pid_file", pidPath,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				slog.Info("received SIGHUP, restarting")
				execPath, err := os.Executable()
				if err != nil {
					slog.Error("failed to get executable path", "error", err)
					continue
				}
				shutdown(httpServer)
				os.Remove(pidPath)
				if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
					return fmt.Errorf("re-exec: %w", err)
				}
			}
			slog.Info("shutting down", "signal", sig)
			shutdown(httpServer)
			return nil
		}
	}
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
}

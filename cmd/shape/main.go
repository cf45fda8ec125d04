package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/cobra"

	"github.com/vito/shape/pkg/ioctx"
	"github.com/vito/shape/pkg/lsp"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	DebugAddr  string
	LSP        bool
	LSPLogFile string
}

func main() {
	ctx := context.Background()
	ctx = ioctx.StdinToContext(ctx, os.Stdin)
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)

	// Use fang for styled execution with enhanced features
	if err := fang.Execute(ctx, rootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Width-aware source formatter",
		Long: `Shape reformats JavaScript source into a canonical layout that fits
within a configured line width, keeping every comment.`,
		Example: `  # Format a file in place
  shape fmt -w app.js

  # Check a directory in CI
  shape fmt --check ./src

  # Run as a language server
  shape --lsp`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				// runLSP sets up its own logging.
				return nil
			}
			setupLogging(ioctx.StderrFromContext(cmd.Context()), cfg.Debug)
			if cfg.DebugAddr != "" {
				_, err := serveDebug(cfg.DebugAddr)
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				return runLSP(cmd.Context(), cfg)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfg.DebugAddr, "debug-addr", "", "Serve pprof and expvar handlers on this address")
	cmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	cmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")

	cmd.AddCommand(fmtCmd(), configCmd(), debugCmd())
	return cmd
}

func setupLogging(w io.Writer, debug bool) {
	// Set up slog with appropriate level
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func runLSP(ctx context.Context, cfg Config) error {
	// Set up logging
	var logDest io.Writer
	if cfg.LSPLogFile != "" {
		logFile, err := os.Create(cfg.LSPLogFile)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}
	setupLogging(logDest, cfg.Debug)
	logger := slog.Default()

	logger.InfoContext(ctx, "starting LSP server")

	handler := lsp.NewHandler(ctx)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler for callbacks
	handler.SetServer(srv)

	// Start handling requests
	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

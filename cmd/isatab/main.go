// Package main provides the isatab binary entry point.
// Isatab converts YAML investigation documents into ISA-Tab investigation
// files and can keep them up to date while the documents change.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/isatab/config"
	"github.com/c360studio/isatab/publish"
	"github.com/c360studio/isatab/storage"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "isatab"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// outputFlags override the output section of the loaded config.
type outputFlags struct {
	dir        string
	encoding   string
	dateLayout string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "ISA-Tab investigation file writer",
		Long: `Isatab writes ISA-Tab investigation files (i_*.txt) from YAML
investigation documents.

It provides:
- One-shot conversion of documents, directories and glob patterns
- A watch mode that re-exports documents when they change
- Optional Prometheus metrics and NATS publishing of written files`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(writeCmd(&g), watchCmd(&g), historyCmd(&g), configCmd(&g))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func writeCmd(g *globalFlags) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "write <document|dir|glob>...",
		Short: "Write investigation files for the given documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := loadConfig(g.configPath, out, logger)
			if err != nil {
				return err
			}

			sources, err := resolveSources(args, cfg.Watch.Extensions)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown(5 * time.Second)

			results, err := app.ExportAll(ctx, sources)
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.Output)
			}
			return err
		},
	}

	addOutputFlags(cmd, &out)
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "watch <document|dir>...",
		Short: "Re-write investigation files whenever their documents change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := loadConfig(g.configPath, out, logger)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}

			// Setup signal handling
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown(5 * time.Second)

			logger.Info("Isatab watching", "version", Version, "paths", args)
			if err := app.Watch(ctx, args); err != nil {
				return err
			}
			logger.Info("Isatab shutdown complete")
			return nil
		},
	}

	addOutputFlags(cmd, &out)
	return cmd
}

func historyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history [identifier]",
		Short: "List recorded exports from the NATS history bucket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := loadConfig(g.configPath, outputFlags{}, logger)
			if err != nil {
				return err
			}
			if cfg.Publish.NATSURL == "" {
				return fmt.Errorf("publish.nats_url is not configured")
			}

			p, err := publish.Connect(cfg.Publish.NATSURL, cfg.Publish.Subject, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := cmd.Context()
			store, err := openStore(ctx, p, cfg.Publish.HistoryBucket)
			if err != nil {
				return err
			}

			var records []*storage.Record
			if len(args) == 1 {
				records, err = store.History(ctx, args[0])
			} else {
				records, err = store.List(ctx)
			}
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func printRecords(w io.Writer, records []*storage.Record) {
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d lines\t%d bytes\t%s\t%s\n",
			r.CreatedAt.Format(time.RFC3339), r.Identifier, r.Lines, r.Bytes, r.Output, status)
	}
}

func configCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			cfg, err := loadConfig(g.configPath, outputFlags{}, logger)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			return config.NewLoader(logger).EnsureUserConfig()
		},
	})

	return cmd
}

func addOutputFlags(cmd *cobra.Command, out *outputFlags) {
	cmd.Flags().StringVarP(&out.dir, "out-dir", "o", "", "Output directory (default: next to each document)")
	cmd.Flags().StringVar(&out.encoding, "encoding", "", "Output character encoding (e.g. utf-8, iso-8859-1)")
	cmd.Flags().StringVar(&out.dateLayout, "date-layout", "", "Go time layout for dates")
}

// loadConfig loads the layered config and applies the command line overrides.
func loadConfig(path string, out outputFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Merge(&config.Config{Output: config.OutputConfig{
		Dir:        out.dir,
		Encoding:   out.encoding,
		DateLayout: out.dateLayout,
	}})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	// Configure logging
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

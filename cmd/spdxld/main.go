// Package main provides the spdxld binary entry point.
// spdxld expands, compacts and graphs SPDX 3 element documents.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/spdxld/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "spdxld"
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

// globals holds the persistent flags and what the root command derives
// from them before any subcommand runs.
type globals struct {
	configPath string
	logLevel   string

	logger *slog.Logger
	cfg    *config.Config
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "SPDX 3 element document tool",
		Long: `spdxld expands compact SPDX 3 element documents to absolute IRIs,
compacts them back, and renders them as Graphviz, Turtle, N-Triples or
JSON-LD.

Documents are JSON or YAML. The check command processes every document
under the configured input directory and can keep watching it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML, replaces spdxld.yaml discovery)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		expandCmd(g),
		compactCmd(g),
		graphCmd(g),
		exportCmd(g),
		checkCmd(g),
		translateCmd(g),
		storeCmd(g),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging and loads the layered configuration.
func (g *globals) setup(stderr io.Writer) error {
	g.logger = newLogger(stderr, g.logLevel)
	slog.SetDefault(g.logger)

	loader := config.NewLoader(g.logger)
	loader.ExplicitPath = g.configPath
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	g.cfg = cfg
	return nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Command csharp-ls is a C# language server speaking LSP over stdio.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrianCArnold/csharp-language-server/internal/config"
	"github.com/BrianCArnold/csharp-language-server/internal/server"
	"github.com/BrianCArnold/csharp-language-server/internal/transport"
)

// exitStartupCrash is the exit code when the server dies during startup.
const exitStartupCrash = 3

var (
	flagConfig   string
	flagLogLevel string
	flagTCP      string
	flagWS       string
	flagStdio    bool
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "csharp-ls: fatal: %v\n", r)
			os.Exit(exitStartupCrash)
		}
	}()

	root := &cobra.Command{
		Use:   "csharp-ls [solution]",
		Short: "C# language server over LSP",
		Long: `csharp-ls loads a C# solution and serves Language Server Protocol
requests over stdio. With no solution argument the current working
directory is scanned for a .sln file, then for projects.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVar(&flagConfig, "config", "", "path to csharp-ls.toml")
	root.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.Flags().StringVar(&flagTCP, "tcp", "", "listen on a TCP address instead of stdio (e.g. :9257)")
	root.Flags().StringVar(&flagWS, "ws", "", "listen for a WebSocket connection instead of stdio")
	root.Flags().BoolVar(&flagStdio, "stdio", true, "serve over stdin/stdout (default)")

	if err := root.Execute(); err != nil {
		os.Exit(exitStartupCrash)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultFileName
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Logs go to stderr; stdout belongs to the protocol.
	level := new(slog.LevelVar)
	level.Set(cfg.Level())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Hot-reload the log level while the server runs.
	if w, werr := config.NewWatcher(cfgPath, logger, func() {
		if reloaded, rerr := config.Load(cfgPath); rerr == nil {
			level.Set(reloaded.Level())
			logger.Info("log level reloaded", "level", reloaded.LogLevel)
		}
	}); werr == nil {
		defer w.Close()
	}

	solutionPath := cfg.Solution
	if len(args) > 0 {
		solutionPath = args[0]
	}

	t, err := openTransport()
	if err != nil {
		return fmt.Errorf("opening transport: %w", err)
	}
	defer t.Close()

	srv := server.New(server.Options{
		SolutionPath:            solutionPath,
		DiagnosticsInitialDelay: time.Duration(cfg.Diagnostics.InitialDelayMS) * time.Millisecond,
		DiagnosticsInterval:     time.Duration(cfg.Diagnostics.IntervalMS) * time.Millisecond,
		Logger:                  logger,
	})
	return srv.Serve(context.Background(), t)
}

func openTransport() (transport.Transport, error) {
	switch {
	case flagTCP != "":
		return transport.ListenTCP(flagTCP)
	case flagWS != "":
		return transport.ListenWebSocket(flagWS)
	}
	return transport.Stdio(), nil
}

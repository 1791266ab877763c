// intent-mcp: intent dependency graph MCP server
//
// Exposes a project's intents (structured specifications with objectives,
// outcomes, constraints and dependency relations) to AI coding tools, from
// local .intents files or from the intents API.
//
// Usage:
//
//	intent-mcp serve [flags]     # Start MCP server (stdio transport)
//	intent-mcp analyze [flags]   # Print a graph analysis as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HendryAvila/intent-mcp/internal/config"
	"github.com/HendryAvila/intent-mcp/internal/graph"
	"github.com/HendryAvila/intent-mcp/internal/logging"
	intentserver "github.com/HendryAvila/intent-mcp/internal/server"
	"github.com/HendryAvila/intent-mcp/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		exitOnError(runServe(os.Args[2:]))
	case "analyze":
		exitOnError(runAnalyze(os.Args[2:]))
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("intent-mcp v%s\n", intentserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup parses args into a config and builds the logger.
func setup(name string, args []string, extra func(*pflag.FlagSet)) (config.Config, *zap.Logger, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func runServe(args []string) error {
	cfg, log, err := setup("serve", args, nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, cleanup, err := intentserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Runs in the background and reports on stderr only: stdout is the
	// stdio transport.
	if cfg.Update.Check && updater.Releasable(intentserver.Version) {
		go checkForUpdates(ctx, cfg.Update.Repo, log)
	}

	stdio := server.NewStdioServer(s)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

// checkForUpdates prints a notice to stderr if a newer release exists.
// Failures are logged at debug level only.
func checkForUpdates(ctx context.Context, repo string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	result, err := updater.CheckVersion(ctx, repo, intentserver.Version)
	if err != nil {
		log.Debug("version check failed", zap.Error(err))
		return
	}
	if notice := result.Notice(); notice != "" {
		fmt.Fprintf(os.Stderr, "\n  %s\n\n", notice)
	}
}

func runAnalyze(args []string) error {
	var kindFlag string
	cfg, log, err := setup("analyze", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&kindFlag, "kind", string(graph.KindFull), "analysis: full, critical-path, risks, status")
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	kind, err := graph.ParseKind(kindFlag)
	if err != nil {
		return err
	}
	ws := cfg.DefaultWorkspace()
	if ws == "" {
		return errors.New("no workspace given: pass --workspace")
	}

	src, cleanup, err := intentserver.NewSource(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := graph.Run(ctx, src, ws, kind)
	if errors.Is(err, graph.ErrNoIntents) {
		return fmt.Errorf("no intents found in workspace %q", ws)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `intent-mcp v%s: intent dependency graph MCP server

Usage:
  intent-mcp serve [flags]     Start the MCP server (stdio transport)
  intent-mcp analyze [flags]   Print a graph analysis as JSON
  intent-mcp version           Print the version

Flags:
  --mode local|cloud      Intent source (default: local)
  --dir PATH              Local intents directory (default: .intents)
  --workspace ID          Default workspace
  --api-url URL           Intents API base URL (cloud mode)
  --api-key KEY           Intents API key (cloud mode)
  --api-timeout DURATION  Intents API request timeout (default: 15s)
  --config FILE           YAML config file (default: ./.intent-mcp.yaml if present)
  --log-level LEVEL       debug, info, warn, error (default: info)
  --log-format FORMAT     console or json (default: console)
  --no-update-check       Skip the background release check (serve)
  --kind KIND             full, critical-path, risks, status (analyze)

Every setting can also come from the environment as INTENT_MCP_<KEY>,
for example INTENT_MCP_MODE=cloud or INTENT_MCP_API_KEY=....

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "intents": {
        "command": "intent-mcp",
        "args": ["serve"]
      }
    }
  }
`, intentserver.Version)
}

// Command yahoo-mail-mcp runs the Yahoo Mail MCP server over stdio.
// Logs go to stderr; stdout carries the MCP transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/config"
	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/tools"
)

const version = "1.0.0"

func main() {
	var (
		configPath  string
		verbose     bool
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file (optional; env vars suffice)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("yahoo-mail-mcp v%s\n", version)
		os.Exit(0)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "yahoo-mail",
		Version: version,
	}, nil)
	tools.New(cfg, log).Register(server)

	log.Info().Str("account", cfg.Email).Str("imap", cfg.IMAP.Host).Msg("starting MCP server on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server terminated")
	}
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftlog/internal/config"
	lmcp "github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/splitparse"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// liftlog-mcp serves the MCP tools over stdio, reading data from a remote
// LiftLog server. Suggestions and split parsing run locally.
func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	configPath := flag.String("config", "", "optional config file for oracle settings")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-mcp -server <URL> [-config config.yaml]\n")
		os.Exit(1)
	}

	var settings oracle.Settings
	var orc oracle.Oracle = oracle.Unavailable{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		settings = cfg.Oracle.Settings()
		orc = oracle.New(cfg.Oracle.Client(), log)
	}

	s := lmcp.New(lmcp.Deps{
		Data:     lmcp.NewHTTPClient(*serverURL),
		Advisor:  progression.NewAdvisor(orc, log),
		Parser:   splitparse.NewParser(orc, log),
		Settings: settings,
		Log:      log,
	}, Version)

	log.Info("liftlog-mcp serving stdio", "server", *serverURL, "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/simplestrength/internal/config"
	"github.com/claude/simplestrength/internal/mcp"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// The MCP server speaks the protocol on stdout, so all logging goes to
// stderr. Remote mode (-url) proxies the REST API, typically over Tailscale;
// direct mode (-config) opens the database itself.
func main() {
	baseURL := flag.String("url", "", "SimpleStrength server base URL (remote mode)")
	apiKey := flag.String("api-key", "", "API key for remote mode (optional)")
	configPath := flag.String("config", "", "config file for direct database mode")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	switch {
	case *baseURL != "":
		ds = mcp.NewHTTPClient(*baseURL, *apiKey)
	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
	default:
		fmt.Fprintln(os.Stderr, "usage: simplestrength-mcp -url <base-url> | -config <path>")
		os.Exit(2)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

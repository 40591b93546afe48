package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"retort-go/packages/retort/src/config"
)

func usage() {
	fmt.Println(`retort - markup parser and renderer
Usage: retort <command> [args]

Commands:
  tokens <file>          Print the token stream of a markup or component file
  parse [component]      Print the resolved virtual node tree as YAML
  render [component]     Render a component to HTML
  help                   Show help

Without a component argument the entry from retort.yaml is used.`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Resolve(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)
	if cfg.Module != "" {
		logger.Debug("project", "module", cfg.Module, "root", cfg.RootDir())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "help":
		usage()
	case "tokens":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		exitOn(logger, cmd, tokens(os.Stdout, os.Args[2]))
	case "parse":
		exitOn(logger, cmd, parse(ctx, os.Stdout, cfg, logger, argOr(cfg.EntryPath())))
	case "render":
		exitOn(logger, cmd, renderHTML(ctx, os.Stdout, cfg, logger, argOr(cfg.EntryPath())))
	default:
		usage()
		os.Exit(1)
	}
}

func argOr(fallback string) string {
	if len(os.Args) >= 3 {
		return os.Args[2]
	}
	return fallback
}

func exitOn(logger *slog.Logger, cmd string, err error) {
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"retort-go/packages/retort/src/component"
	"retort-go/packages/retort/src/config"
	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/render"
)

// tokens prints one line per token. Component files are reduced to the
// markup of their presenter first.
func tokens(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	source := string(data)
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		var file component.File
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		presenter, err := component.ParsePresenter(file.Presenter)
		if err != nil {
			return err
		}
		source = presenter.Markup
	}

	toks, err := markup.Tokenize(source, path)
	for _, tok := range toks {
		var start string
		if tok.SourceSpan != nil && tok.SourceSpan.Start != nil {
			start = fmt.Sprintf("%d:%d", tok.SourceSpan.Start.Line, tok.SourceSpan.Start.Col)
		}
		if len(tok.Parts) == 0 {
			fmt.Fprintf(w, "%-8s %s\n", start, tok.Type)
		} else {
			fmt.Fprintf(w, "%-8s %s %s\n", start, tok.Type, strings.Join(quoteAll(tok.Parts), " "))
		}
	}
	return err
}

func quoteAll(parts []string) []string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return quoted
}

func load(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) (*markup.ComponentDefinition, error) {
	logger.Debug("loading entry component", "path", path)
	return component.Load(ctx, path, cfg.ResolverOptions(logger)...)
}

func parse(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, path string) error {
	def, err := load(ctx, cfg, logger, path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dumpDefinition(def)); err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return enc.Close()
}

func renderHTML(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, path string) error {
	def, err := load(ctx, cfg, logger, path)
	if err != nil {
		return err
	}
	r := render.NewRenderer(render.WithLogger(logger))
	if err := r.HTML(w, def); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

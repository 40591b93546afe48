package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/util"
)

// File is the YAML layout of a component file.
type File struct {
	Name      string         `yaml:"name,omitempty"`
	State     map[string]any `yaml:"state,omitempty"`
	Props     map[string]any `yaml:"props,omitempty"`
	Presenter string         `yaml:"presenter"`
}

// FileResolver loads component files from disk. Import paths are relative
// to the importing file; paths given to Resolve are relative to the root
// directory. Each file is read and parsed once, and imported components are
// resolved one at a time in declaration order.
type FileResolver struct {
	root    string
	logger  *slog.Logger
	lenient bool
	timeout time.Duration

	mu    sync.Mutex
	cache map[string]*markup.ComponentDefinition
}

// ResolverOption configures a FileResolver
type ResolverOption func(*FileResolver)

// WithLogger sets the logger used for load tracing
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *FileResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLenientCloseTags parses presenters with markup.WithLenientCloseTags.
func WithLenientCloseTags(lenient bool) ResolverOption {
	return func(r *FileResolver) {
		r.lenient = lenient
	}
}

// WithResolveTimeout bounds every nested resolve call; zero means no bound.
func WithResolveTimeout(d time.Duration) ResolverOption {
	return func(r *FileResolver) {
		r.timeout = d
	}
}

// NewFileResolver creates a resolver rooted at dir.
func NewFileResolver(dir string, opts ...ResolverOption) *FileResolver {
	r := &FileResolver{
		root:   dir,
		logger: slog.New(slog.DiscardHandler),
		cache:  map[string]*markup.ComponentDefinition{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements markup.Resolver.
func (r *FileResolver) Resolve(ctx context.Context, path string) (*markup.ComponentDefinition, error) {
	return r.load(ctx, r.root, path, nil)
}

// Load reads the component file at path and everything it imports.
func Load(ctx context.Context, path string, opts ...ResolverOption) (*markup.ComponentDefinition, error) {
	return NewFileResolver(filepath.Dir(path), opts...).Resolve(ctx, filepath.Base(path))
}

// load resolves path against dir. chain holds the files currently being
// loaded, outermost first.
func (r *FileResolver) load(ctx context.Context, dir, path string, chain []string) (*markup.ComponentDefinition, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, util.Wrap(util.KindResolve, nil, err, fmt.Sprintf("failed to locate component %s", path))
	}
	if i := slices.Index(chain, abs); i >= 0 {
		cycle := append(slices.Clone(chain[i:]), abs)
		return nil, util.Errorf(util.KindResolve, "import cycle: %s", strings.Join(cycle, " -> "))
	}

	r.mu.Lock()
	def, ok := r.cache[abs]
	r.mu.Unlock()
	if ok {
		return def, nil
	}

	r.logger.Debug("loading component", "path", abs)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, util.Wrap(util.KindResolve, nil, err, fmt.Sprintf("failed to read component %s", abs))
	}
	def, err = r.decode(ctx, abs, data, append(slices.Clip(chain), abs))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if cached, ok := r.cache[abs]; ok {
		def = cached
	} else {
		r.cache[abs] = def
	}
	r.mu.Unlock()
	return def, nil
}

func (r *FileResolver) decode(ctx context.Context, abs string, data []byte, chain []string) (*markup.ComponentDefinition, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, util.Wrap(util.KindParsing, nil, err, fmt.Sprintf("failed to parse component %s", abs))
	}
	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}

	presenter, err := ParsePresenter(file.Presenter)
	if err != nil {
		return nil, err
	}
	var resolver markup.Resolver = markup.ResolverFunc(func(ctx context.Context, path string) (*markup.ComponentDefinition, error) {
		return r.load(ctx, filepath.Dir(abs), path, chain)
	})
	if r.timeout > 0 {
		resolver = TimeoutResolver(resolver, r.timeout)
	}
	parser := markup.NewParser(
		markup.WithResolver(resolver),
		markup.WithLogger(r.logger),
		markup.WithLenientCloseTags(r.lenient),
	)
	root, err := parser.ParseFile(ctx, util.NewParseSourceFile(presenter.Markup, abs), presenter.Imports)
	if err != nil {
		return nil, err
	}
	return &markup.ComponentDefinition{
		Name:      name,
		Path:      abs,
		State:     file.State,
		Props:     file.Props,
		Presenter: file.Presenter,
		Root:      root,
	}, nil
}

// MapResolver resolves paths from an in-memory table.
type MapResolver map[string]*markup.ComponentDefinition

// Resolve implements markup.Resolver.
func (m MapResolver) Resolve(ctx context.Context, path string) (*markup.ComponentDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	def, ok := m[path]
	if !ok {
		return nil, util.Errorf(util.KindResolve, "no component is registered at %q", path)
	}
	return def, nil
}

// TimeoutResolver bounds each call to r by d. A call that outlives d fails
// with context.DeadlineExceeded even if r ignores its context.
func TimeoutResolver(r markup.Resolver, d time.Duration) markup.Resolver {
	type result struct {
		def *markup.ComponentDefinition
		err error
	}
	return markup.ResolverFunc(func(ctx context.Context, path string) (*markup.ComponentDefinition, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		done := make(chan result, 1)
		go func() {
			def, err := r.Resolve(ctx, path)
			done <- result{def, err}
		}()
		select {
		case res := <-done:
			if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("resolving %q timed out after %s: %w", path, d, res.err)
			}
			return res.def, res.err
		case <-ctx.Done():
			return nil, fmt.Errorf("resolving %q timed out after %s: %w", path, d, ctx.Err())
		}
	})
}

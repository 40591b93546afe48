package markup

import (
	"context"
	"fmt"
	"log/slog"

	"retort-go/packages/retort/src/util"
)

// Parser builds virtual node trees from markup.
type Parser struct {
	resolver         Resolver
	logger           *slog.Logger
	lenientCloseTags bool
}

// Option configures a Parser
type Option func(*Parser)

// WithResolver sets the resolver used for component references
func WithResolver(resolver Resolver) Option {
	return func(p *Parser) {
		p.resolver = resolver
	}
}

// WithLogger sets the logger used for resolution tracing
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLenientCloseTags accepts closing tags whose name differs from the
// element being closed; only the nesting structure is checked.
func WithLenientCloseTags(lenient bool) Option {
	return func(p *Parser) {
		p.lenientCloseTags = lenient
	}
}

// NewParser creates a new Parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses source into a single root node. Component references are
// looked up in imports and resolved one at a time, in the order they appear.
func (p *Parser) Parse(ctx context.Context, source, url string, imports ImportTable) (*VirtualNode, error) {
	return p.ParseFile(ctx, util.NewParseSourceFile(source, url), imports)
}

// ParseFile is Parse over an existing source file.
func (p *Parser) ParseFile(ctx context.Context, file *util.ParseSourceFile, imports ImportTable) (*VirtualNode, error) {
	tb := &TreeBuilder{
		parser:    p,
		ctx:       ctx,
		imports:   imports,
		tokenizer: NewTokenizer(file),
	}
	return tb.Build()
}

// TreeBuilder drives the tokenizer for one parse and owns the stack of open
// nodes. A node belongs to the stack until it is popped, then to its parent.
type TreeBuilder struct {
	parser    *Parser
	ctx       context.Context
	imports   ImportTable
	tokenizer *Tokenizer

	stack []*VirtualNode
	root  *VirtualNode
	// closing is set between a closing name and its `>`.
	closing *Token
}

// Build consumes tokens until EndOfInput or the first error.
func (tb *TreeBuilder) Build() (*VirtualNode, error) {
	for {
		tok := tb.tokenizer.Next()
		var err error
		switch tok.Type {
		case TokenTypeOPEN_ANGLE, TokenTypeCLOSE_TAG_START:
			if tb.root != nil {
				err = tb.multipleRoots(tok)
			}
		case TokenTypeTAG_NAME_OPEN:
			tb.pushContainer(NewTag(tok.Name(), tok.SourceSpan))
		case TokenTypeCOMPONENT_REF:
			node := NewComponentRef(tok.Name(), tok.SourceSpan)
			tb.pushContainer(node)
			err = tb.resolveComponent(node, tok)
		case TokenTypeATTRIBUTE:
			err = tb.consumeAttribute(tok)
		case TokenTypeTAG_NAME_CLOSE, TokenTypeCOMPONENT_CLOSE:
			err = tb.consumeEndTag(tok)
		case TokenTypeCLOSE_ANGLE:
			if tb.closing != nil {
				tb.closing = nil
				err = tb.popContainer()
			}
		case TokenTypeSELF_CLOSE:
			err = tb.popContainer()
		case TokenTypeTEXT:
			err = tb.addToParent(NewText(tok.Text(), tok.SourceSpan))
		case TokenTypeEOF:
			return tb.finish(tok)
		case TokenTypeLEX_ERROR:
			return nil, util.Wrap(util.KindParsing, tok.SourceSpan, tok.Err, "could not tokenize markup")
		}
		if err != nil {
			return nil, err
		}
	}
}

func (tb *TreeBuilder) pushContainer(node *VirtualNode) {
	tb.stack = append(tb.stack, node)
}

// popContainer moves the top node to its parent, or makes it the root.
func (tb *TreeBuilder) popContainer() error {
	if len(tb.stack) == 0 {
		return util.NewParseError(util.KindParsing, nil, "nothing to close")
	}
	node := tb.stack[len(tb.stack)-1]
	tb.stack[len(tb.stack)-1] = nil
	tb.stack = tb.stack[:len(tb.stack)-1]
	return tb.addToParent(node)
}

func (tb *TreeBuilder) addToParent(node *VirtualNode) error {
	if len(tb.stack) == 0 {
		if tb.root != nil {
			return util.NewParseError(util.KindParsing, node.SourceSpan,
				"presenter must have exactly one wrapping root")
		}
		tb.root = node
		return nil
	}
	parent := tb.stack[len(tb.stack)-1]
	if parent.Kind == KindComponent {
		return util.NewParseError(util.KindParsing, node.SourceSpan,
			fmt.Sprintf("component `%s` cannot wrap children; use `<%s/>`", parent.Name, parent.Name))
	}
	parent.Children = append(parent.Children, node)
	return nil
}

func (tb *TreeBuilder) consumeAttribute(tok Token) error {
	if len(tb.stack) == 0 {
		return util.NewParseError(util.KindParsing, tok.SourceSpan,
			fmt.Sprintf("attribute `%s` does not belong to any tag", tok.Key()))
	}
	owner := tb.stack[len(tb.stack)-1]
	if _, exists := owner.Attributes[tok.Key()]; exists {
		return util.NewParseError(util.KindParsing, tok.SourceSpan,
			fmt.Sprintf("duplicate attribute `%s` on `%s`", tok.Key(), owner.Name))
	}
	owner.Attributes[tok.Key()] = tok.Value()
	return nil
}

func (tb *TreeBuilder) consumeEndTag(tok Token) error {
	name := tok.Name()
	if len(tb.stack) == 0 {
		return util.NewParseError(util.KindParsing, tok.SourceSpan,
			fmt.Sprintf("unexpected closing tag `%s`: no element is open", name))
	}
	if !tb.parser.lenientCloseTags {
		top := tb.stack[len(tb.stack)-1]
		wantKind := KindTag
		if tok.Type == TokenTypeCOMPONENT_CLOSE {
			wantKind = KindComponent
		}
		if top.Kind != wantKind || top.Name != name {
			return util.NewParseError(util.KindParsing, tok.SourceSpan,
				fmt.Sprintf("unexpected closing tag `%s`, expected `</%s>`", name, top.Name))
		}
	}
	tb.closing = &tok
	return nil
}

func (tb *TreeBuilder) resolveComponent(node *VirtualNode, tok Token) error {
	name := tok.Name()
	path, ok := tb.imports[name]
	if !ok {
		return util.NewParseError(util.KindReference, tok.SourceSpan,
			fmt.Sprintf("an import statement for `%s` was supposed to exist, but it didn't", name))
	}
	resolver := tb.parser.resolver
	if resolver == nil {
		return util.NewParseError(util.KindResolve, tok.SourceSpan,
			fmt.Sprintf("no resolver configured to load `%s` from %q", name, path))
	}
	if err := tb.ctx.Err(); err != nil {
		return util.Wrap(util.KindResolve, tok.SourceSpan, err, fmt.Sprintf("could not resolve `%s`", name))
	}

	tb.parser.logger.Debug("resolving component", "name", name, "path", path)
	def, err := resolver.Resolve(tb.ctx, path)
	if err != nil {
		return util.Wrap(util.KindResolve, tok.SourceSpan, err,
			fmt.Sprintf("could not resolve `%s` from %q", name, path))
	}
	if def == nil {
		return util.NewParseError(util.KindResolve, tok.SourceSpan,
			fmt.Sprintf("resolver returned no definition for `%s` from %q", name, path))
	}
	node.Component = def
	return nil
}

func (tb *TreeBuilder) multipleRoots(tok Token) error {
	return util.NewParseError(util.KindParsing, tok.SourceSpan,
		"presenter must have exactly one wrapping root")
}

func (tb *TreeBuilder) finish(eof Token) (*VirtualNode, error) {
	if len(tb.stack) > 0 {
		open := tb.stack[len(tb.stack)-1]
		return nil, util.NewParseError(util.KindParsing, eof.SourceSpan,
			fmt.Sprintf("unexpected end of input: `%s` is never closed", open.Name))
	}
	if tb.root == nil {
		return nil, util.NewParseError(util.KindParsing, eof.SourceSpan,
			"presenter must have exactly one wrapping root, found none")
	}
	return tb.root, nil
}

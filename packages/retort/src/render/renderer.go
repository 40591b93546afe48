// Package render materializes resolved component trees into HTML.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"maragu.dev/gomponents"

	"retort-go/packages/retort/src/expression"
	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/util"
)

// maxComponentDepth bounds component nesting while rendering.
const maxComponentDepth = 64

// Renderer turns component definitions into DOM trees. Conditional
// attributes are applied at every sibling level; attribute values and text
// are evaluated against the state and props of the component they appear in.
type Renderer struct {
	evaluator expression.Evaluator
	logger    *slog.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithEvaluator sets the expression evaluator
func WithEvaluator(e expression.Evaluator) Option {
	return func(r *Renderer) {
		if e != nil {
			r.evaluator = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a Renderer evaluating expressions with expr-lang
// unless WithEvaluator says otherwise.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		evaluator: expression.NewExprEvaluator(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// scope is the component whose state and props expressions see.
type scope struct {
	name  string
	state map[string]any
	props map[string]any
	depth int
}

// DOM builds a document node holding the rendered root of def.
func (r *Renderer) DOM(def *markup.ComponentDefinition) (*html.Node, error) {
	if def == nil || def.Root == nil {
		return nil, util.Errorf(util.KindResolve, "component has no parsed presenter to render")
	}
	doc := &html.Node{Type: html.DocumentNode}
	sc := &scope{name: def.Name, state: copyMap(def.State), props: copyMap(def.Props)}
	if err := r.appendChildren(doc, []*markup.VirtualNode{def.Root}, sc); err != nil {
		return nil, err
	}
	return doc, nil
}

// HTML renders def and writes its HTML serialization to w.
func (r *Renderer) HTML(w io.Writer, def *markup.ComponentDefinition) error {
	doc, err := r.DOM(def)
	if err != nil {
		return err
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to write html: %w", err)
	}
	return nil
}

// Gomponents renders def as a gomponents node.
func (r *Renderer) Gomponents(def *markup.ComponentDefinition) (gomponents.Node, error) {
	doc, err := r.DOM(def)
	if err != nil {
		return nil, err
	}
	return toGomponents(doc), nil
}

func (r *Renderer) appendChildren(parent *html.Node, siblings []*markup.VirtualNode, sc *scope) error {
	included, err := MaterializeWith(siblings, r.predicate(sc))
	if err != nil {
		return err
	}
	for _, node := range included {
		switch node.Kind {
		case markup.KindText:
			text, err := r.text(node, sc)
			if err != nil {
				return err
			}
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		case markup.KindComponent:
			if err := r.appendComponent(parent, node, sc); err != nil {
				return err
			}
		default:
			el := &html.Node{
				Type:     html.ElementNode,
				Data:     node.Name,
				DataAtom: atom.Lookup([]byte(node.Name)),
			}
			for _, key := range node.AttributeKeys() {
				if IsConditionalAttribute(key) {
					continue
				}
				val, err := r.attribute(node, key, sc)
				if err != nil {
					return err
				}
				el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
			}
			parent.AppendChild(el)
			if err := r.appendChildren(el, node.Children, sc); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendComponent renders the root of a referenced component. Its props are
// the definition's defaults overlaid with the reference's attributes,
// evaluated in the referencing scope.
func (r *Renderer) appendComponent(parent *html.Node, node *markup.VirtualNode, sc *scope) error {
	def := node.Component
	if def == nil || def.Root == nil {
		return util.NewParseError(util.KindResolve, node.SourceSpan,
			fmt.Sprintf("component `%s` was not resolved to a parsed presenter", node.Name))
	}
	if sc.depth+1 > maxComponentDepth {
		return util.NewParseError(util.KindResolve, node.SourceSpan,
			fmt.Sprintf("component `%s` is nested more than %d levels deep", node.Name, maxComponentDepth))
	}

	props := copyMap(def.Props)
	for _, key := range node.AttributeKeys() {
		if IsConditionalAttribute(key) {
			continue
		}
		info, err := ClassifyValue(node.Attributes[key])
		if err != nil {
			return withSpan(err, node.SourceSpan)
		}
		value, err := info.Evaluate(r.evaluator, sc.state, sc.props)
		if err != nil {
			return withSpan(err, node.SourceSpan)
		}
		props[key] = value
	}

	r.logger.Debug("rendering component", "name", node.Name, "path", def.Path, "depth", sc.depth+1)
	child := &scope{name: node.Name, state: copyMap(def.State), props: props, depth: sc.depth + 1}
	return r.appendChildren(parent, []*markup.VirtualNode{def.Root}, child)
}

func (r *Renderer) attribute(node *markup.VirtualNode, key string, sc *scope) (string, error) {
	raw := node.Attributes[key]
	if raw == "" {
		return "", nil
	}
	info, err := ClassifyValue(raw)
	if err != nil {
		return "", withSpan(err, node.SourceSpan)
	}
	val, err := info.Text(r.evaluator, sc.state, sc.props)
	if err != nil {
		return "", withSpan(err, node.SourceSpan)
	}
	return val, nil
}

func (r *Renderer) text(node *markup.VirtualNode, sc *scope) (string, error) {
	if !expression.HasExpression(node.Content) {
		return node.Content, nil
	}
	text, err := expression.Interpolate(node.Content, r.evaluator, sc.state, sc.props)
	if err != nil {
		return "", withSpan(err, node.SourceSpan)
	}
	return text, nil
}

// predicate evaluates conditions in sc. Boolean literals are taken as they
// are; anything else goes through the evaluator and must produce a bool.
func (r *Renderer) predicate(sc *scope) Predicate {
	return func(node *markup.VirtualNode, raw string) (bool, error) {
		switch unwrapBraces(raw) {
		case "", "true":
			return true, nil
		case "false":
			return false, nil
		}
		info, err := ClassifyValue(raw)
		if err != nil {
			return false, withSpan(err, node.SourceSpan)
		}
		value, err := info.Evaluate(r.evaluator, sc.state, sc.props)
		if err != nil {
			return false, withSpan(err, node.SourceSpan)
		}
		ok, isBool := value.(bool)
		if !isBool {
			return false, util.NewParseError(util.KindType, node.SourceSpan,
				fmt.Sprintf("condition %s on `%s` evaluated to %T, not a boolean", raw, node.Name, value))
		}
		return ok, nil
	}
}

func toGomponents(n *html.Node) gomponents.Node {
	var children []gomponents.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, toGomponents(c))
	}
	switch n.Type {
	case html.TextNode:
		return gomponents.Text(n.Data)
	case html.ElementNode:
		nodes := make([]gomponents.Node, 0, len(n.Attr)+len(children))
		for _, a := range n.Attr {
			if a.Val == "" {
				nodes = append(nodes, gomponents.Attr(a.Key))
			} else {
				nodes = append(nodes, gomponents.Attr(a.Key, a.Val))
			}
		}
		return gomponents.El(n.Data, append(nodes, children...)...)
	default:
		return gomponents.Group(children)
	}
}

// withSpan attaches span to a ParseError that was created without one.
func withSpan(err error, span *util.ParseSourceSpan) error {
	var pe *util.ParseError
	if errors.As(err, &pe) && pe.Span == nil {
		pe.Span = span
	}
	return err
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	maps.Copy(out, m)
	return out
}

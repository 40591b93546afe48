package markup

import (
	"context"
	"fmt"
	"sort"

	"retort-go/packages/retort/src/util"
)

// NodeKind is the closed set of virtual node variants.
type NodeKind int

const (
	KindTag NodeKind = iota
	KindText
	KindComponent
)

func (k NodeKind) String() string {
	switch k {
	case KindTag:
		return "Tag"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// VirtualNode is a node of the parsed markup tree.
//
// Name is the tag or component name, Content the literal text of a text
// node. Attributes hold raw, unevaluated values. Component is the resolved
// definition of a component node.
type VirtualNode struct {
	Kind       NodeKind
	Name       string
	Content    string
	Component  *ComponentDefinition
	Attributes map[string]string
	Children   []*VirtualNode
	SourceSpan *util.ParseSourceSpan
}

// NewTag creates an empty tag node
func NewTag(name string, span *util.ParseSourceSpan) *VirtualNode {
	return &VirtualNode{Kind: KindTag, Name: name, Attributes: map[string]string{}, SourceSpan: span}
}

// NewText creates a text node
func NewText(content string, span *util.ParseSourceSpan) *VirtualNode {
	return &VirtualNode{Kind: KindText, Content: content, SourceSpan: span}
}

// NewComponentRef creates an unresolved component node
func NewComponentRef(name string, span *util.ParseSourceSpan) *VirtualNode {
	return &VirtualNode{Kind: KindComponent, Name: name, Attributes: map[string]string{}, SourceSpan: span}
}

// Attribute returns the raw value of key and whether it is present.
func (n *VirtualNode) Attribute(key string) (string, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

// AttributeKeys returns the attribute names in sorted order.
func (n *VirtualNode) AttributeKeys() []string {
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Visit dispatches to the visitor method for the node kind.
func (n *VirtualNode) Visit(visitor Visitor, context interface{}) interface{} {
	switch n.Kind {
	case KindText:
		return visitor.VisitText(n, context)
	case KindComponent:
		return visitor.VisitComponent(n, context)
	default:
		return visitor.VisitTag(n, context)
	}
}

// Visitor walks virtual nodes.
type Visitor interface {
	VisitTag(node *VirtualNode, context interface{}) interface{}
	VisitText(node *VirtualNode, context interface{}) interface{}
	VisitComponent(node *VirtualNode, context interface{}) interface{}
}

// VisitAll visits all nodes with a visitor, collecting non-nil results.
func VisitAll(visitor Visitor, nodes []*VirtualNode, context interface{}) []interface{} {
	var result []interface{}
	for _, node := range nodes {
		if r := node.Visit(visitor, context); r != nil {
			result = append(result, r)
		}
	}
	return result
}

// ComponentDefinition is a resolved sub-component.
type ComponentDefinition struct {
	Name string
	// Path is where the resolver found the component.
	Path      string
	State     map[string]any
	Props     map[string]any
	Presenter string
	// Root is the component's own parsed markup, nil if the resolver does not
	// parse presenters.
	Root *VirtualNode
}

// ImportTable maps component names used in markup to resolver paths.
type ImportTable map[string]string

// Resolver produces the component definition stored at path.
type Resolver interface {
	Resolve(ctx context.Context, path string) (*ComponentDefinition, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, path string) (*ComponentDefinition, error)

// Resolve calls f(ctx, path).
func (f ResolverFunc) Resolve(ctx context.Context, path string) (*ComponentDefinition, error) {
	return f(ctx, path)
}

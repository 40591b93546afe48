package main

import (
	"retort-go/packages/retort/src/markup"
)

// treeNode is the YAML shape printed by `retort parse`.
type treeNode struct {
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name,omitempty"`
	Content    string            `yaml:"content,omitempty"`
	Path       string            `yaml:"path,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Children   []*treeNode       `yaml:"children,omitempty"`
	Renders    *treeNode         `yaml:"renders,omitempty"`
}

type treeDefinition struct {
	Name  string         `yaml:"name"`
	Path  string         `yaml:"path"`
	State map[string]any `yaml:"state,omitempty"`
	Props map[string]any `yaml:"props,omitempty"`
	Root  *treeNode      `yaml:"root"`
}

func dumpDefinition(def *markup.ComponentDefinition) *treeDefinition {
	d := &dumper{seen: map[*markup.ComponentDefinition]bool{def: true}}
	return &treeDefinition{
		Name:  def.Name,
		Path:  def.Path,
		State: def.State,
		Props: def.Props,
		Root:  d.node(def.Root),
	}
}

// dumper converts virtual nodes to treeNodes. A component already being
// dumped further up is printed without its tree.
type dumper struct {
	seen map[*markup.ComponentDefinition]bool
}

func (d *dumper) node(n *markup.VirtualNode) *treeNode {
	if n == nil {
		return nil
	}
	return n.Visit(d, nil).(*treeNode)
}

func (d *dumper) VisitTag(node *markup.VirtualNode, context interface{}) interface{} {
	t := &treeNode{Kind: node.Kind.String(), Name: node.Name, Attributes: attributes(node)}
	for _, r := range markup.VisitAll(d, node.Children, context) {
		t.Children = append(t.Children, r.(*treeNode))
	}
	return t
}

func (d *dumper) VisitText(node *markup.VirtualNode, context interface{}) interface{} {
	return &treeNode{Kind: node.Kind.String(), Content: node.Content}
}

func (d *dumper) VisitComponent(node *markup.VirtualNode, context interface{}) interface{} {
	t := &treeNode{Kind: node.Kind.String(), Name: node.Name, Attributes: attributes(node)}
	if def := node.Component; def != nil {
		t.Path = def.Path
		if !d.seen[def] {
			d.seen[def] = true
			t.Renders = d.node(def.Root)
			delete(d.seen, def)
		}
	}
	return t
}

func attributes(node *markup.VirtualNode) map[string]string {
	if len(node.Attributes) == 0 {
		return nil
	}
	return node.Attributes
}

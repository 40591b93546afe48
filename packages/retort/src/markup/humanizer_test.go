package markup_test

import (
	"retort-go/packages/retort/src/markup"
)

func HumanizeTree(root *markup.VirtualNode) []interface{} {
	humanizer := NewHumanizer()
	markup.VisitAll(humanizer, []*markup.VirtualNode{root}, nil)
	return humanizer.Result
}

type Humanizer struct {
	Result  []interface{}
	elDepth int
}

func NewHumanizer() *Humanizer {
	return &Humanizer{Result: []interface{}{}}
}

func (h *Humanizer) VisitTag(node *markup.VirtualNode, context interface{}) interface{} {
	h.Result = append(h.Result, []interface{}{"Tag", node.Name, h.elDepth})
	h.visitAttributes(node)
	h.elDepth++
	markup.VisitAll(h, node.Children, context)
	h.elDepth--
	return nil
}

func (h *Humanizer) VisitText(node *markup.VirtualNode, context interface{}) interface{} {
	h.Result = append(h.Result, []interface{}{"Text", node.Content, h.elDepth})
	return nil
}

func (h *Humanizer) VisitComponent(node *markup.VirtualNode, context interface{}) interface{} {
	path := ""
	if node.Component != nil {
		path = node.Component.Path
	}
	h.Result = append(h.Result, []interface{}{"Component", node.Name, h.elDepth, path})
	h.visitAttributes(node)
	return nil
}

func (h *Humanizer) visitAttributes(node *markup.VirtualNode) {
	for _, key := range node.AttributeKeys() {
		h.Result = append(h.Result, []interface{}{"Attr", key, node.Attributes[key]})
	}
}

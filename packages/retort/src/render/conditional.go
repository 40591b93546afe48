package render

import (
	"fmt"
	"strings"

	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/util"
)

// Reserved attributes controlling conditional inclusion of siblings.
const (
	AttrRenderIf     = "render-if"
	AttrRenderElseIf = "render-else-if"
	AttrRenderElse   = "render-else"
)

// IsConditionalAttribute reports whether key is one of the reserved
// conditional attributes.
func IsConditionalAttribute(key string) bool {
	return key == AttrRenderIf || key == AttrRenderElseIf || key == AttrRenderElse
}

// ConditionalState tracks an if/else-if/else chain within one sibling list.
type ConditionalState int

const (
	NotReached ConditionalState = iota
	MatchedTrue
	MatchedFalse
)

func (s ConditionalState) String() string {
	switch s {
	case NotReached:
		return "NotReached"
	case MatchedTrue:
		return "MatchedTrue"
	case MatchedFalse:
		return "MatchedFalse"
	default:
		return fmt.Sprintf("ConditionalState(%d)", int(s))
	}
}

// Predicate decides the raw value of a render-if or render-else-if attribute.
type Predicate func(node *markup.VirtualNode, raw string) (bool, error)

// LiteralPredicate is true when raw, without its wrapping braces and
// surrounding whitespace, is exactly `true`. A bare attribute is true.
func LiteralPredicate(node *markup.VirtualNode, raw string) (bool, error) {
	if raw == "" {
		return true, nil
	}
	return unwrapBraces(raw) == "true", nil
}

// Materialize returns the siblings that are included, using LiteralPredicate.
func Materialize(siblings []*markup.VirtualNode) ([]*markup.VirtualNode, error) {
	return MaterializeWith(siblings, LiteralPredicate)
}

// MaterializeWith returns the siblings that are included, in order.
//
// The chain state starts at NotReached for every call and only covers the
// direct children given; nested lists are materialized separately. Siblings
// without a conditional attribute are always included and leave the state
// as it is.
func MaterializeWith(siblings []*markup.VirtualNode, predicate Predicate) ([]*markup.VirtualNode, error) {
	state := NotReached
	included := make([]*markup.VirtualNode, 0, len(siblings))
	for _, node := range siblings {
		key, raw, err := conditionalAttribute(node)
		if err != nil {
			return nil, err
		}

		switch key {
		case "":
			included = append(included, node)

		case AttrRenderIf:
			ok, err := predicate(node, raw)
			if err != nil {
				return nil, err
			}
			state = matched(ok)
			if ok {
				included = append(included, node)
			}

		case AttrRenderElseIf:
			switch state {
			case NotReached:
				return nil, util.NewParseError(util.KindParsing, node.SourceSpan, "else-if with no preceding if")
			case MatchedTrue:
				continue
			}
			ok, err := predicate(node, raw)
			if err != nil {
				return nil, err
			}
			state = matched(ok)
			if ok {
				included = append(included, node)
			}

		case AttrRenderElse:
			switch state {
			case NotReached:
				return nil, util.NewParseError(util.KindParsing, node.SourceSpan, "else with no preceding if")
			case MatchedFalse:
				included = append(included, node)
			}
			state = NotReached
		}
	}
	return included, nil
}

func matched(ok bool) ConditionalState {
	if ok {
		return MatchedTrue
	}
	return MatchedFalse
}

// conditionalAttribute returns the single conditional attribute of node, or
// an empty key when it has none.
func conditionalAttribute(node *markup.VirtualNode) (string, string, error) {
	if node.Kind == markup.KindText {
		return "", "", nil
	}
	var found []string
	for _, key := range []string{AttrRenderIf, AttrRenderElseIf, AttrRenderElse} {
		if _, ok := node.Attributes[key]; ok {
			found = append(found, key)
		}
	}
	switch len(found) {
	case 0:
		return "", "", nil
	case 1:
		return found[0], node.Attributes[found[0]], nil
	default:
		return "", "", util.NewParseError(util.KindParsing, node.SourceSpan,
			fmt.Sprintf("`%s` combines %s; use one conditional attribute per element",
				node.Name, strings.Join(found, " and ")))
	}
}

func unwrapBraces(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "{") && strings.HasSuffix(v, "}") {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

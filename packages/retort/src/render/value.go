package render

import (
	"fmt"
	"strconv"
	"strings"

	"retort-go/packages/retort/src/core"
	"retort-go/packages/retort/src/expression"
	"retort-go/packages/retort/src/util"
)

// ValueKind classifies a raw attribute value.
type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueBoolean
	ValueString
	// ValueInterpolated is a quoted string holding `{expr}` parts.
	ValueInterpolated
	ValueExpression
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "Number"
	case ValueBoolean:
		return "Boolean"
	case ValueString:
		return "String"
	case ValueInterpolated:
		return "Interpolated"
	case ValueExpression:
		return "Expression"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// ValueInfo is a classified attribute value. Value is the literal for
// numbers and booleans, the unquoted text for strings, and the expression
// source without braces for expressions.
type ValueInfo struct {
	Kind  ValueKind
	Value string
}

// ClassifyValue decides how the raw value of an attribute is evaluated.
// Values must be wrapped in braces; an empty value is a bare boolean
// attribute and reads as true.
func ClassifyValue(raw string) (ValueInfo, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ValueInfo{Kind: ValueBoolean, Value: "true"}, nil
	}
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return ValueInfo{}, util.Errorf(util.KindParsing,
			"attribute value %s is not wrapped in curly braces", strconv.Quote(raw))
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	switch {
	case isNumber(inner):
		return ValueInfo{Kind: ValueNumber, Value: inner}, nil
	case inner == "true" || inner == "false":
		return ValueInfo{Kind: ValueBoolean, Value: inner}, nil
	case isQuoted(inner):
		text := inner[1 : len(inner)-1]
		if expression.HasExpression(text) {
			return ValueInfo{Kind: ValueInterpolated, Value: text}, nil
		}
		return ValueInfo{Kind: ValueString, Value: text}, nil
	case inner == "":
		return ValueInfo{}, util.Errorf(util.KindParsing, "attribute value %s is an empty expression", strconv.Quote(raw))
	default:
		return ValueInfo{Kind: ValueExpression, Value: inner}, nil
	}
}

// Evaluate returns the typed value: float64 or int for numbers, bool for
// booleans, string for strings and interpolations, and the evaluator result
// for expressions.
func (v ValueInfo) Evaluate(e expression.Evaluator, state, props any) (any, error) {
	switch v.Kind {
	case ValueNumber:
		if i, err := strconv.Atoi(v.Value); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(v.Value, 64)
	case ValueBoolean:
		return v.Value == "true", nil
	case ValueString:
		return v.Value, nil
	case ValueInterpolated:
		return expression.Interpolate(v.Value, e, state, props)
	default:
		return e.Evaluate(v.Value, state, props)
	}
}

// Text evaluates the value and stringifies the result.
func (v ValueInfo) Text(e expression.Evaluator, state, props any) (string, error) {
	switch v.Kind {
	case ValueNumber, ValueBoolean, ValueString:
		return v.Value, nil
	}
	value, err := v.Evaluate(e, state, props)
	if err != nil {
		return "", err
	}
	return expression.Stringify(value, v.Value)
}

func isNumber(s string) bool {
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return !core.IsDigit(r) && !strings.ContainsRune("+-.eE", r) }) >= 0 {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '"' || q == '\'') && s[len(s)-1] == q
}

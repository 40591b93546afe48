package expression

import (
	"fmt"
	"strconv"
	"strings"

	"retort-go/packages/retort/src/util"
)

// HasExpression reports whether text holds a `{` followed later by a `}`.
func HasExpression(text string) bool {
	open := strings.IndexByte(text, '{')
	return open >= 0 && strings.IndexByte(text[open:], '}') > 0
}

// Interpolate replaces every top-level `{expr}` in text with its evaluated,
// stringified value. Braces nested inside an expression belong to it.
func Interpolate(text string, e Evaluator, state, props any) (string, error) {
	var out, current strings.Builder
	depth := 0
	for _, ch := range text {
		switch {
		case ch == '{':
			if depth > 0 {
				current.WriteRune(ch)
			}
			depth++
		case ch == '}':
			if depth == 0 {
				return "", util.Errorf(util.KindParsing,
					"unexpected `}` while parsing the following text: %s", text)
			}
			depth--
			if depth > 0 {
				current.WriteRune(ch)
				continue
			}
			source := strings.TrimSpace(current.String())
			current.Reset()
			value, err := e.Evaluate(source, state, props)
			if err != nil {
				return "", err
			}
			s, err := Stringify(value, source)
			if err != nil {
				return "", err
			}
			out.WriteString(s)
		case depth > 0:
			current.WriteRune(ch)
		default:
			out.WriteRune(ch)
		}
	}
	if depth > 0 {
		return "", util.Errorf(util.KindParsing,
			"unterminated expression while parsing the following text: %s", text)
	}
	return out.String(), nil
}

// Stringify converts an evaluated value to text. Strings, numbers, booleans
// and nil are supported; nil reads as `null`.
func Stringify(value any, source string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", util.Errorf(util.KindEvaluation,
			"the value of `%s` is %T; only string, number, boolean and null values can be rendered", source, value)
	}
}

package markup

import (
	"fmt"

	"retort-go/packages/retort/src/util"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeOPEN_ANGLE TokenType = iota
	TokenTypeCLOSE_ANGLE
	TokenTypeSELF_CLOSE
	TokenTypeCLOSE_TAG_START
	TokenTypeTAG_NAME_OPEN
	TokenTypeTAG_NAME_CLOSE
	TokenTypeCOMPONENT_REF
	TokenTypeCOMPONENT_CLOSE
	TokenTypeATTRIBUTE
	TokenTypeTEXT
	TokenTypeEOF
	TokenTypeLEX_ERROR
)

var tokenTypeNames = [...]string{
	TokenTypeOPEN_ANGLE:      "OpenAngle",
	TokenTypeCLOSE_ANGLE:     "CloseAngle",
	TokenTypeSELF_CLOSE:      "SelfClose",
	TokenTypeCLOSE_TAG_START: "CloseTagStart",
	TokenTypeTAG_NAME_OPEN:   "TagNameOpen",
	TokenTypeTAG_NAME_CLOSE:  "TagNameClose",
	TokenTypeCOMPONENT_REF:   "ComponentRef",
	TokenTypeCOMPONENT_CLOSE: "ComponentClose",
	TokenTypeATTRIBUTE:       "Attribute",
	TokenTypeTEXT:            "Text",
	TokenTypeEOF:             "EndOfInput",
	TokenTypeLEX_ERROR:       "LexError",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a single lexer step result.
//
// Parts depend on the type: names for TAG_NAME_*/COMPONENT_*, [key, rawValue]
// for ATTRIBUTE, [content] for TEXT and [reason] for LEX_ERROR. Err is set only
// on LEX_ERROR tokens.
type Token struct {
	Type       TokenType
	Parts      []string
	SourceSpan *util.ParseSourceSpan
	Err        *util.ParseError
}

// Name returns the tag or component name of a name token.
func (t Token) Name() string {
	if len(t.Parts) == 0 {
		return ""
	}
	return t.Parts[0]
}

// Key returns the attribute key of an ATTRIBUTE token.
func (t Token) Key() string {
	return t.Name()
}

// Value returns the raw attribute value of an ATTRIBUTE token.
func (t Token) Value() string {
	if len(t.Parts) < 2 {
		return ""
	}
	return t.Parts[1]
}

// Text returns the content of a TEXT token.
func (t Token) Text() string {
	return t.Name()
}

func (t Token) String() string {
	if len(t.Parts) == 0 {
		return t.Type.String()
	}
	return fmt.Sprintf("%s%q", t.Type, t.Parts)
}

func newToken(tokenType TokenType, span *util.ParseSourceSpan, parts ...string) Token {
	return Token{Type: tokenType, Parts: parts, SourceSpan: span}
}

func newLexErrorToken(span *util.ParseSourceSpan, reason string) Token {
	return Token{
		Type:       TokenTypeLEX_ERROR,
		Parts:      []string{reason},
		SourceSpan: span,
		Err:        util.NewParseError(util.KindLex, span, reason),
	}
}

package markup

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"retort-go/packages/retort/src/core"
	"retort-go/packages/retort/src/util"
)

// LexerState is the scanning mode the next lexer step starts in.
type LexerState int

const (
	// StateBetweenTags covers the start of input and everything after `>`,
	// `/>` or a text run.
	StateBetweenTags LexerState = iota
	StateAfterOpenAngle
	StateAfterCloseTagStart
	// StateInTagHeader follows an opening name or an attribute.
	StateInTagHeader
	// StateAfterCloseName follows the name of a closing tag; only `>` may come next.
	StateAfterCloseName
	StateEnd
	StateFailed
)

func (s LexerState) String() string {
	switch s {
	case StateBetweenTags:
		return "BetweenTags"
	case StateAfterOpenAngle:
		return "AfterOpenAngle"
	case StateAfterCloseTagStart:
		return "AfterCloseTagStart"
	case StateInTagHeader:
		return "InTagHeader"
	case StateAfterCloseName:
		return "AfterCloseName"
	case StateEnd:
		return "End"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("LexerState(%d)", int(s))
	}
}

// Cursor is the complete lexer position: a byte offset into the input and
// the state the next step starts in. The zero value starts at the beginning.
type Cursor struct {
	Offset int
	State  LexerState

	err *util.ParseError
}

// Lexer scans markup one token at a time. It keeps no position of its own;
// Next is a function of the input and the cursor it is given.
type Lexer struct {
	file  *util.ParseSourceFile
	input string
}

// NewLexer creates a lexer over file.
func NewLexer(file *util.ParseSourceFile) *Lexer {
	return &Lexer{file: file, input: file.Content}
}

// Next scans the token at cursor and returns it with the cursor for the
// following step. Once EndOfInput or a LexError is returned, further calls
// with the returned cursor keep returning the same token.
func (l *Lexer) Next(c Cursor) (Token, Cursor) {
	switch c.State {
	case StateBetweenTags:
		return l.consumeBetweenTags(c)
	case StateAfterOpenAngle, StateAfterCloseTagStart:
		return l.consumeName(c)
	case StateInTagHeader:
		return l.consumeTagHeader(c)
	case StateAfterCloseName:
		return l.consumeCloseTagEnd(c)
	case StateEnd:
		return newToken(TokenTypeEOF, l.file.Span(len(l.input), len(l.input))), c
	case StateFailed:
		if c.err == nil {
			return l.fail(c, c.Offset, c.Offset, "lexer resumed from a failed cursor")
		}
		return Token{
			Type:       TokenTypeLEX_ERROR,
			Parts:      []string{c.err.Msg},
			SourceSpan: c.err.Span,
			Err:        c.err,
		}, c
	default:
		return l.fail(c, c.Offset, c.Offset, fmt.Sprintf("unknown lexer state %s", c.State))
	}
}

func (l *Lexer) consumeBetweenTags(c Cursor) (Token, Cursor) {
	start := l.skipWhitespace(c.Offset)
	if start >= len(l.input) {
		end := len(l.input)
		return newToken(TokenTypeEOF, l.file.Span(end, end)), Cursor{Offset: end, State: StateEnd}
	}
	if l.peek(start) != core.CharLT {
		return l.consumeText(start)
	}
	// Look past `<` for a `/`; when there is none, the cursor is rolled back to
	// just after `<` so the name step reads the full tag name.
	after := start + 1
	lookahead := l.skipWhitespace(after)
	if l.peek(lookahead) == core.CharSLASH {
		end := lookahead + 1
		return newToken(TokenTypeCLOSE_TAG_START, l.file.Span(start, end)),
			Cursor{Offset: end, State: StateAfterCloseTagStart}
	}
	return newToken(TokenTypeOPEN_ANGLE, l.file.Span(start, after)),
		Cursor{Offset: after, State: StateAfterOpenAngle}
}

func (l *Lexer) consumeText(start int) (Token, Cursor) {
	depth := 0
	offset := start
scan:
	for offset < len(l.input) {
		ch, size := l.peekSize(offset)
		switch ch {
		case core.CharLBRACE:
			depth++
		case core.CharRBRACE:
			if depth == 0 {
				return l.fail(Cursor{Offset: offset}, offset, offset+size, "unexpected `}` without a matching `{`")
			}
			depth--
		case core.CharLT:
			if depth == 0 {
				break scan
			}
		}
		offset += size
	}
	if depth > 0 {
		return l.fail(Cursor{Offset: start}, start, offset, "unterminated expression: expected `}` before end of input")
	}
	return newToken(TokenTypeTEXT, l.file.Span(start, offset), l.input[start:offset]),
		Cursor{Offset: offset, State: StateBetweenTags}
}

func (l *Lexer) consumeName(c Cursor) (Token, Cursor) {
	closing := c.State == StateAfterCloseTagStart
	start := l.skipWhitespace(c.Offset)
	end := start
	for {
		ch, size := l.peekSize(end)
		if core.IsNameEnd(ch) {
			break
		}
		end += size
	}
	name := l.input[start:end]
	if name == "" {
		bracket := "<"
		if closing {
			bracket = "</"
		}
		return l.fail(c, start, start, fmt.Sprintf("no tag name was found after `%s`", bracket))
	}
	if strings.IndexFunc(name, func(r rune) bool { return !core.IsNameChar(r) }) >= 0 {
		return l.fail(c, start, end, fmt.Sprintf("tag name `%s` contains invalid characters", name))
	}

	span := l.file.Span(start, end)
	first, _ := utf8.DecodeRuneInString(name)
	isComponent := unicode.IsUpper(first)
	switch {
	case closing && isComponent:
		return newToken(TokenTypeCOMPONENT_CLOSE, span, name), Cursor{Offset: end, State: StateAfterCloseName}
	case closing:
		return newToken(TokenTypeTAG_NAME_CLOSE, span, name), Cursor{Offset: end, State: StateAfterCloseName}
	case isComponent:
		return newToken(TokenTypeCOMPONENT_REF, span, name), Cursor{Offset: end, State: StateInTagHeader}
	default:
		return newToken(TokenTypeTAG_NAME_OPEN, span, name), Cursor{Offset: end, State: StateInTagHeader}
	}
}

func (l *Lexer) consumeTagHeader(c Cursor) (Token, Cursor) {
	offset := l.skipWhitespace(c.Offset)
	switch l.peek(offset) {
	case core.CharEOF:
		return l.fail(c, offset, offset, "unexpected end of input inside a tag")
	case core.CharGT:
		return newToken(TokenTypeCLOSE_ANGLE, l.file.Span(offset, offset+1)),
			Cursor{Offset: offset + 1, State: StateBetweenTags}
	case core.CharSLASH:
		lookahead := l.skipWhitespace(offset + 1)
		if l.peek(lookahead) != core.CharGT {
			return l.fail(c, offset, lookahead, "expected closing angle bracket after `/`")
		}
		end := lookahead + 1
		return newToken(TokenTypeSELF_CLOSE, l.file.Span(offset, end)),
			Cursor{Offset: end, State: StateBetweenTags}
	default:
		return l.consumeAttribute(c, offset)
	}
}

// consumeAttribute reads `key={value}` or a bare `key`. Whitespace around
// `=` is dropped from the key; the value keeps its wrapping braces.
func (l *Lexer) consumeAttribute(c Cursor, start int) (Token, Cursor) {
	offset := start
	hasValue := false
	var key strings.Builder
readKey:
	for {
		ch, size := l.peekSize(offset)
		switch {
		case ch == core.CharEQ:
			offset += size
			hasValue = true
			break readKey
		case ch == core.CharEOF || ch == core.CharGT || ch == core.CharSLASH:
			break readKey
		case core.IsWhitespace(ch):
			next := l.skipWhitespace(offset)
			if l.peek(next) != core.CharEQ {
				offset = next
				break readKey
			}
			offset = next
		case ch == core.CharLT || ch == core.CharLBRACE || ch == core.CharRBRACE || core.IsQuote(ch):
			return l.fail(c, offset, offset+size, fmt.Sprintf("unexpected `%c` in attribute name", ch))
		default:
			key.WriteRune(ch)
			offset += size
		}
	}
	name := key.String()
	if name == "" {
		return l.fail(c, start, offset, "attribute is missing a name before `=`")
	}
	if !hasValue {
		return newToken(TokenTypeATTRIBUTE, l.file.Span(start, offset), name, ""),
			Cursor{Offset: offset, State: StateInTagHeader}
	}

	valueStart := l.skipWhitespace(offset)
	if l.peek(valueStart) != core.CharLBRACE {
		return l.fail(c, valueStart, valueStart, fmt.Sprintf("value of attribute `%s` must be wrapped in curly braces", name))
	}
	depth := 0
	end := valueStart
	for end < len(l.input) {
		ch, size := l.peekSize(end)
		end += size
		if ch == core.CharLBRACE {
			depth++
		} else if ch == core.CharRBRACE {
			depth--
			if depth == 0 {
				return newToken(TokenTypeATTRIBUTE, l.file.Span(start, end), name, l.input[valueStart:end]),
					Cursor{Offset: end, State: StateInTagHeader}
			}
		}
	}
	return l.fail(c, valueStart, end, fmt.Sprintf("unterminated value for attribute `%s`: expected `}`", name))
}

func (l *Lexer) consumeCloseTagEnd(c Cursor) (Token, Cursor) {
	offset := l.skipWhitespace(c.Offset)
	if l.peek(offset) != core.CharGT {
		return l.fail(c, offset, offset, "expected `>` to end the closing tag")
	}
	return newToken(TokenTypeCLOSE_ANGLE, l.file.Span(offset, offset+1)),
		Cursor{Offset: offset + 1, State: StateBetweenTags}
}

func (l *Lexer) fail(c Cursor, start, end int, reason string) (Token, Cursor) {
	tok := newLexErrorToken(l.file.Span(start, end), reason)
	return tok, Cursor{Offset: c.Offset, State: StateFailed, err: tok.Err}
}

func (l *Lexer) peek(offset int) rune {
	ch, _ := l.peekSize(offset)
	return ch
}

func (l *Lexer) peekSize(offset int) (rune, int) {
	if offset >= len(l.input) {
		return core.CharEOF, 0
	}
	return utf8.DecodeRuneInString(l.input[offset:])
}

func (l *Lexer) skipWhitespace(offset int) int {
	for offset < len(l.input) {
		ch, size := l.peekSize(offset)
		if !core.IsWhitespace(ch) {
			break
		}
		offset += size
	}
	return offset
}

// Tokenizer pulls tokens from a Lexer, owning the cursor between calls.
type Tokenizer struct {
	lexer  *Lexer
	cursor Cursor
}

// NewTokenizer creates a tokenizer positioned at the start of file.
func NewTokenizer(file *util.ParseSourceFile) *Tokenizer {
	return &Tokenizer{lexer: NewLexer(file)}
}

// Next returns the next token and advances.
func (t *Tokenizer) Next() Token {
	var tok Token
	tok, t.cursor = t.lexer.Next(t.cursor)
	return tok
}

// Cursor returns the position of the next step.
func (t *Tokenizer) Cursor() Cursor {
	return t.cursor
}

// Tokenize tokenizes source up to and including EndOfInput.
func Tokenize(source, url string) ([]Token, error) {
	tokenizer := NewTokenizer(util.NewParseSourceFile(source, url))
	var tokens []Token
	for {
		tok := tokenizer.Next()
		if tok.Type == TokenTypeLEX_ERROR {
			return tokens, tok.Err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenTypeEOF {
			return tokens, nil
		}
	}
}

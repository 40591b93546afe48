package markup_test

import (
	"fmt"
	"strings"
	"testing"

	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/util"

	"github.com/google/go-cmp/cmp"
)

func tokenizeAndHumanizeParts(input string) []interface{} {
	tokenizer := markup.NewTokenizer(util.NewParseSourceFile(input, "test.rtx"))
	result := []interface{}{}
	for i := 0; i < 100; i++ {
		tok := tokenizer.Next()
		row := []interface{}{tok.Type}
		for _, p := range tok.Parts {
			row = append(row, p)
		}
		result = append(result, row)
		if tok.Type == markup.TokenTypeEOF || tok.Type == markup.TokenTypeLEX_ERROR {
			break
		}
	}
	return result
}

func tokenizeAndHumanizeSourceSpans(input string) []interface{} {
	tokens, err := markup.Tokenize(input, "test.rtx")
	if err != nil {
		panic(fmt.Errorf("unexpected lex error: %w", err))
	}
	result := []interface{}{}
	for _, tok := range tokens {
		result = append(result, []interface{}{tok.Type, tok.SourceSpan.String()})
	}
	return result
}

func tokenizeAndHumanizeLineColumn(input string) []interface{} {
	tokens, err := markup.Tokenize(input, "test.rtx")
	if err != nil {
		panic(fmt.Errorf("unexpected lex error: %w", err))
	}
	result := []interface{}{}
	for _, tok := range tokens {
		start := tok.SourceSpan.Start
		result = append(result, []interface{}{tok.Type, fmt.Sprintf("%d:%d", start.Line, start.Col)})
	}
	return result
}

func tokenizeAndHumanizeErrors(input string) []interface{} {
	_, err := markup.Tokenize(input, "test.rtx")
	if err == nil {
		return nil
	}
	pe := err.(*util.ParseError)
	return []interface{}{pe.Kind, pe.Msg, fmt.Sprintf("%d:%d", pe.Span.Start.Line, pe.Span.Start.Col)}
}

func TestLexer_Tags(t *testing.T) {
	t.Run("should parse an element with text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "div"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeTEXT, "hello"},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "div"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<div>hello</div>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse self closing tags", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "span"},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<span/>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should allow whitespace around brackets and slashes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "p"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "br"},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "p"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("  < p >\n\t< br / >< / p >  ")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should classify names by the case of the first character", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeCOMPONENT_REF, "Foo"},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		if diff := cmp.Diff(expected, tokenizeAndHumanizeParts("<Foo/>")); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}

		expected = []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "fOO"},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		if diff := cmp.Diff(expected, tokenizeAndHumanizeParts("<fOO/>")); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should emit component close tokens for uppercase closing names", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeCOMPONENT_REF, "Card"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeCOMPONENT_CLOSE, "Card"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<Card></Card>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should accept unicode letters and digits in names", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "h1"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeTEXT, "héllo"},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "h1"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<h1>héllo</h1>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Attributes(t *testing.T) {
	t.Run("should keep the wrapping braces of raw values", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "div"},
			[]interface{}{markup.TokenTypeATTRIBUTE, "id", `{"x"}`},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`<div id={"x"}/>`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should trim whitespace around the separator", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "img"},
			[]interface{}{markup.TokenTypeATTRIBUTE, "alt", `{ "a picture" }`},
			[]interface{}{markup.TokenTypeATTRIBUTE, "data-id", `{4}`},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`<img alt = { "a picture" }  data-id=  {4} />`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should balance nested braces in values", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "div"},
			[]interface{}{markup.TokenTypeATTRIBUTE, "style", `{{color: state.c}}`},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "div"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`<div style={{color: state.c}}></div>`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse bare attributes with an empty value", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "p"},
			[]interface{}{markup.TokenTypeATTRIBUTE, "render-else", ""},
			[]interface{}{markup.TokenTypeATTRIBUTE, "class", `{"x"}`},
			[]interface{}{markup.TokenTypeATTRIBUTE, "hidden", ""},
			[]interface{}{markup.TokenTypeSELF_CLOSE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`<p render-else class={"x"} hidden/>`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Text(t *testing.T) {
	t.Run("should keep angle brackets inside expressions", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "p"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeTEXT, "count: {state.n < 3 ? 'few' : 'many'}"},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "p"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<p>count: {state.n < 3 ? 'few' : 'many'}</p>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse root level text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeTEXT, "just text"},
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("   just text")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return end of input for blank markup", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(" \n\t ")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_SourceSpans(t *testing.T) {
	t.Run("should record the source of every token", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE, "<"},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "a"},
			[]interface{}{markup.TokenTypeATTRIBUTE, "href={url}"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE, ">"},
			[]interface{}{markup.TokenTypeTEXT, "go"},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START, "</"},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "a"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE, ">"},
			[]interface{}{markup.TokenTypeEOF, ""},
		}
		result := tokenizeAndHumanizeSourceSpans("<a href={url}>go</a>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeSourceSpans() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should work with newlines", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{markup.TokenTypeOPEN_ANGLE, "0:0"},
			[]interface{}{markup.TokenTypeTAG_NAME_OPEN, "0:1"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE, "1:0"},
			[]interface{}{markup.TokenTypeTEXT, "2:0"},
			[]interface{}{markup.TokenTypeCLOSE_TAG_START, "2:1"},
			[]interface{}{markup.TokenTypeTAG_NAME_CLOSE, "2:3"},
			[]interface{}{markup.TokenTypeCLOSE_ANGLE, "2:4"},
			[]interface{}{markup.TokenTypeEOF, "2:5"},
		}
		result := tokenizeAndHumanizeLineColumn("<t\n>\na</t>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeLineColumn() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Errors(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []interface{}
	}{
		{
			name:     "should report an unmatched closing brace in text",
			input:    "<p>a}</p>",
			expected: []interface{}{util.KindLex, "unexpected `}` without a matching `{`", "0:4"},
		},
		{
			name:     "should report an unterminated expression in text",
			input:    "<p>{state.a</p>",
			expected: []interface{}{util.KindLex, "unterminated expression: expected `}` before end of input", "0:3"},
		},
		{
			name:     "should report invalid characters in tag names",
			input:    "<my-tag/>",
			expected: []interface{}{util.KindLex, "tag name `my-tag` contains invalid characters", "0:1"},
		},
		{
			name:     "should report a missing tag name",
			input:    "< >",
			expected: []interface{}{util.KindLex, "no tag name was found after `<`", "0:2"},
		},
		{
			name:     "should report a slash without closing angle bracket",
			input:    "<br / x>",
			expected: []interface{}{util.KindLex, "expected closing angle bracket after `/`", "0:4"},
		},
		{
			name:     "should report values without braces",
			input:    `<a href="x"/>`,
			expected: []interface{}{util.KindLex, "value of attribute `href` must be wrapped in curly braces", "0:8"},
		},
		{
			name:     "should report unterminated attribute values",
			input:    "<a href={x/>",
			expected: []interface{}{util.KindLex, "unterminated value for attribute `href`: expected `}`", "0:8"},
		},
		{
			name:     "should report attributes without a name",
			input:    "<a ={x}/>",
			expected: []interface{}{util.KindLex, "attribute is missing a name before `=`", "0:3"},
		},
		{
			name:     "should report input ending inside a tag",
			input:    "<a",
			expected: []interface{}{util.KindLex, "unexpected end of input inside a tag", "0:2"},
		},
		{
			name:     "should report attributes on closing tags",
			input:    "<a></a x={1}>",
			expected: []interface{}{util.KindLex, "expected `>` to end the closing tag", "0:7"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, tokenizeAndHumanizeErrors(c.input)); diff != "" {
				t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexer_Cursor(t *testing.T) {
	t.Run("should keep returning end of input once reached", func(t *testing.T) {
		lexer := markup.NewLexer(util.NewParseSourceFile("<a/>", "test.rtx"))
		var cursor markup.Cursor
		var tok markup.Token
		for i := 0; i < 4; i++ {
			tok, cursor = lexer.Next(cursor)
		}
		if tok.Type != markup.TokenTypeEOF {
			t.Fatalf("token = %s, want EndOfInput", tok)
		}
		for i := 0; i < 3; i++ {
			again, next := lexer.Next(cursor)
			if again.Type != markup.TokenTypeEOF || next != cursor {
				t.Errorf("Next() after end = %s at %+v, want EndOfInput at %+v", again, next, cursor)
			}
		}
		if cursor.Offset != 4 {
			t.Errorf("cursor.Offset = %d, want 4", cursor.Offset)
		}
	})

	t.Run("should keep returning the same error once failed", func(t *testing.T) {
		tokenizer := markup.NewTokenizer(util.NewParseSourceFile("<a-b>", "test.rtx"))
		tokenizer.Next()
		first := tokenizer.Next()
		second := tokenizer.Next()
		if first.Type != markup.TokenTypeLEX_ERROR || second.Type != markup.TokenTypeLEX_ERROR {
			t.Fatalf("tokens = %s, %s, want two LexErrors", first, second)
		}
		if first.Err != second.Err {
			t.Errorf("errors differ: %v vs %v", first.Err, second.Err)
		}
	})

	t.Run("should be a pure function of cursor and input", func(t *testing.T) {
		lexer := markup.NewLexer(util.NewParseSourceFile(`<section id={"main"}>x</section>`, "test.rtx"))
		var cursor markup.Cursor
		for {
			tok, next := lexer.Next(cursor)
			replay, replayNext := lexer.Next(cursor)
			if diff := cmp.Diff(tok.Parts, replay.Parts); diff != "" || tok.Type != replay.Type || next != replayNext {
				t.Fatalf("replay at %+v differs: %s vs %s", cursor, tok, replay)
			}
			if tok.Type == markup.TokenTypeEOF {
				break
			}
			cursor = next
		}
	})

	t.Run("should roll back the lookahead after an open angle", func(t *testing.T) {
		lexer := markup.NewLexer(util.NewParseSourceFile("<  div>", "test.rtx"))
		tok, cursor := lexer.Next(markup.Cursor{})
		if tok.Type != markup.TokenTypeOPEN_ANGLE || cursor.Offset != 1 || cursor.State != markup.StateAfterOpenAngle {
			t.Fatalf("Next() = %s at %+v, want OpenAngle at offset 1", tok, cursor)
		}
		name, _ := lexer.Next(cursor)
		if name.Name() != "div" {
			t.Errorf("name = %q, want div", name.Name())
		}
	})
}

func TestTokenize(t *testing.T) {
	t.Run("should return the tokens read before an error", func(t *testing.T) {
		tokens, err := markup.Tokenize("<div>}", "test.rtx")
		if err == nil || !util.IsKind(err, util.KindLex) {
			t.Fatalf("Tokenize() error = %v, want lex error", err)
		}
		if len(tokens) != 3 {
			t.Errorf("len(tokens) = %d, want 3", len(tokens))
		}
		if !strings.Contains(err.Error(), "test.rtx@0:5") {
			t.Errorf("error %q does not carry its location", err)
		}
	})
}

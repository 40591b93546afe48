package util

import (
	"fmt"
	"sort"
	"strings"

	"retort-go/packages/retort/src/core"
)

// ParseSourceFile represents a markup source
type ParseSourceFile struct {
	Content string
	URL     string

	lineStarts []int
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &ParseSourceFile{
		Content:    content,
		URL:        url,
		lineStarts: starts,
	}
}

// Location returns the location of the byte offset in the file.
// Offsets past the end are clamped.
func (f *ParseSourceFile) Location(offset int) *ParseLocation {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return NewParseLocation(f, offset, line, offset-f.lineStarts[line])
}

// Span returns the span covering [start, end).
func (f *ParseSourceFile) Span(start, end int) *ParseSourceSpan {
	return NewParseSourceSpan(f.Location(start), f.Location(end))
}

// ParseLocation represents a location in the source file
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line, p.Col)
}

// GetContext returns the source context around the location
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	content := p.File.Content
	if len(content) == 0 {
		return &Context{}
	}
	startOffset := p.Offset
	if startOffset > len(content)-1 {
		startOffset = len(content) - 1
	}
	endOffset := startOffset

	ctxChars, ctxLines := 0, 0
	for ctxChars < maxChars && startOffset > 0 {
		startOffset--
		ctxChars++
		if content[startOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	ctxChars, ctxLines = 0, 0
	for ctxChars < maxChars && endOffset < len(content)-1 {
		endOffset++
		ctxChars++
		if content[endOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	offset := p.Offset
	if offset > len(content) {
		offset = len(content)
	}
	after := ""
	if offset < len(content) {
		after = content[offset : endOffset+1]
	}
	return &Context{
		Before: content[startOffset:offset],
		After:  after,
	}
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start *ParseLocation
	End   *ParseLocation
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation) *ParseSourceSpan {
	return &ParseSourceSpan{Start: start, End: end}
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// contextual renders msg followed by the excerpt around the span start.
func contextual(span *ParseSourceSpan, msg string) string {
	if span == nil || span.Start == nil {
		return msg
	}
	ctx := span.Start.GetContext(40, 1)
	before := strings.Map(flattenLine, ctx.Before)
	after := strings.Map(flattenLine, ctx.After)
	return fmt.Sprintf(`%s ("%s[ERROR ->]%s")`, msg, before, after)
}

func flattenLine(ch rune) rune {
	if core.IsNewLine(ch) {
		return core.CharSPACE
	}
	return ch
}

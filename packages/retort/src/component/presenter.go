// Package component loads component definitions and resolves the
// components their markup references.
package component

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"retort-go/packages/retort/src/markup"
	"retort-go/packages/retort/src/util"
)

// Presenter is a component's presenter split into its import statements
// and its markup.
type Presenter struct {
	Imports markup.ImportTable
	// Markup keeps one empty line per import line, so spans in it report the
	// same line numbers as the full presenter.
	Markup string
}

var importPattern = regexp.MustCompile(`^import\s+(\S+)\s+from\s+(?:"([^"]*)"|'([^']*)')\s*;?$`)

// ParsePresenter reads the leading `import Name from "path"` lines of
// source. The first line that is neither blank nor an import starts the
// markup.
func ParsePresenter(source string) (*Presenter, error) {
	file := util.NewParseSourceFile(source, "presenter")
	p := &Presenter{Imports: markup.ImportTable{}}
	var out strings.Builder
	offset := 0
	for offset < len(source) {
		end := strings.IndexByte(source[offset:], '\n')
		next := len(source)
		if end >= 0 {
			next = offset + end + 1
		}
		line := strings.TrimSpace(source[offset:next])
		if line != "" && !isImportLine(line) {
			break
		}
		if line != "" {
			if err := p.addImport(line, file.Span(offset, next)); err != nil {
				return nil, err
			}
		}
		if end >= 0 {
			out.WriteByte('\n')
		}
		offset = next
	}
	out.WriteString(source[offset:])
	p.Markup = out.String()
	return p, nil
}

func isImportLine(line string) bool {
	return line == "import" || strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import\t")
}

func (p *Presenter) addImport(line string, span *util.ParseSourceSpan) error {
	m := importPattern.FindStringSubmatch(line)
	if m == nil {
		return util.NewParseError(util.KindParsing, span,
			"malformed import statement; expected `import Name from \"path\"`")
	}
	name, path := m[1], m[2]+m[3]
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) || strings.IndexFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) >= 0 {
		return util.NewParseError(util.KindParsing, span,
			fmt.Sprintf("imported name `%s` must be alphanumeric and start with an uppercase letter", name))
	}
	if path == "" {
		return util.NewParseError(util.KindParsing, span, fmt.Sprintf("import of `%s` has an empty path", name))
	}
	if _, exists := p.Imports[name]; exists {
		return util.NewParseError(util.KindParsing, span, fmt.Sprintf("`%s` is imported more than once", name))
	}
	p.Imports[name] = path
	return nil
}

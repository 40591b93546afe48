package core

import "unicode"

// Character constants used by the markup scanner
const (
	CharEOF   rune = -1
	CharTAB   rune = '\t'
	CharLF    rune = '\n'
	CharCR    rune = '\r'
	CharSPACE rune = ' '
	CharDQ    rune = '"'
	CharSQ    rune = '\''
	CharBT    rune = '`'
	CharSLASH rune = '/'
	CharLT    rune = '<'
	CharEQ    rune = '='
	CharGT    rune = '>'

	CharLBRACE rune = '{'
	CharRBRACE rune = '}'
	CharNBSP   rune = 0xA0
)

// IsWhitespace checks if a character represents whitespace
func IsWhitespace(ch rune) bool {
	return unicode.IsSpace(ch) || ch == CharNBSP
}

// IsDigit checks if a character represents an ASCII digit
func IsDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// IsNameChar reports whether ch may appear in a tag or component name.
func IsNameChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// IsNameEnd reports whether ch terminates a tag or component name.
func IsNameEnd(ch rune) bool {
	return ch == CharEOF || ch == CharGT || ch == CharSLASH || IsWhitespace(ch)
}

// IsNewLine checks if a character represents a newline
func IsNewLine(ch rune) bool {
	return ch == CharLF || ch == CharCR
}

// IsQuote checks if a character represents a quote character
func IsQuote(ch rune) bool {
	return ch == CharSQ || ch == CharDQ || ch == CharBT
}

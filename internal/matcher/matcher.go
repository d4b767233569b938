// Package matcher finds credential-shaped assignments in source text.
package matcher

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords that introduce a candidate credential. They are matched as plain
// substrings, so "api_key" and "mytoken" qualify as well.
var Keywords = []string{"password", "passwd", "pwd", "secret", "token", "key"}

// space matches every Unicode whitespace rune. RE2's \s is ASCII only.
const space = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

// Pattern captures the keyword in group 1 and the candidate value in group 2.
var Pattern = regexp.MustCompile(`(?i)(` + strings.Join(Keywords, "|") + `)[` + space + `]*[:=][` + space + `]*['"]?([^` + space + `'"&;]+)['"]?`)

// Match is the first credential-shaped assignment found on a line.
type Match struct {
	Candidate string
	FullLine  string
}

// LineMatch is a Match together with its 1-based line number.
type LineMatch struct {
	Match
	Line int
}

// ScanLine applies Pattern to a single line and reports the first match only.
// A second assignment later on the same line is not reported.
func ScanLine(line string) (Match, bool) {
	if line == "" {
		return Match{}, false
	}
	groups := Pattern.FindStringSubmatch(line)
	if len(groups) < 3 || groups[2] == "" {
		return Match{}, false
	}
	return Match{Candidate: groups[2], FullLine: strings.TrimFunc(line, isSpace)}, true
}

// ScanContent decodes content as UTF-8, dropping invalid byte sequences, and
// runs ScanLine over every line.
func ScanContent(content []byte) []LineMatch {
	var matches []LineMatch
	for i, line := range SplitLines(Decode(content)) {
		if m, ok := ScanLine(line); ok {
			matches = append(matches, LineMatch{Match: m, Line: i + 1})
		}
	}
	return matches
}

// Decode converts raw file bytes to text. Invalid UTF-8 is dropped, not fatal.
func Decode(content []byte) string {
	return strings.ToValidUTF8(string(content), "")
}

// SplitLines splits text on every line boundary: \n, \r\n, \r, \v, \f, the
// file/group/record separators, NEL and the Unicode line and paragraph
// separators. A trailing line break does not produce an extra empty line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

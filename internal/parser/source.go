package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Source is a decoded source file with a line-indexed view for slicing.
// It is immutable once built; skeleton generation copies the line view
// rather than editing it in place.
type Source struct {
	Path  string
	Bytes []byte

	// lines preserves line terminators so that joined slices reproduce
	// the input byte for byte.
	lines []string
}

// NewSource decodes raw file content. UTF-8 is attempted first; invalid
// UTF-8 falls back to Latin-1 so that no file fails on encoding alone.
func NewSource(path string, raw []byte) (*Source, error) {
	decoded := raw
	if !utf8.Valid(raw) {
		var err error
		decoded, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return &Source{
		Path:  path,
		Bytes: decoded,
		lines: splitLines(decoded),
	}, nil
}

// NumLines returns the number of source lines.
func (s *Source) NumLines() int {
	return len(s.lines)
}

// Slice returns the source text from startLine through endLine, 1-based
// and inclusive, exactly as it appears in the file.
func (s *Source) Slice(startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(s.lines) {
		endLine = len(s.lines)
	}
	if startLine > endLine {
		return ""
	}
	return strings.Join(s.lines[startLine-1:endLine], "")
}

// lineView returns a copy of the line slice for skeleton edits.
func (s *Source) lineView() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// line returns the 0-based row, or "" when the row is out of range.
func (s *Source) line(row int) string {
	if row < 0 || row >= len(s.lines) {
		return ""
	}
	return s.lines[row]
}

// splitLines splits content into lines keeping the terminators, so both
// "\n" and "\r\n" files round-trip unchanged.
func splitLines(content []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

// leadingWhitespace returns the run of spaces and tabs opening a line.
func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

package parser

import sitter "github.com/smacker/go-tree-sitter"

// bodyStubMarker replaces the interior of an elided brace body.
const bodyStubMarker = "/* ... */"

// rowRange is a 0-based inclusive span of already-stubbed rows. Nested
// constructs inside a stubbed body are skipped rather than re-edited.
type rowRange struct {
	start, end int
}

func withinRanges(ranges []rowRange, row int) bool {
	for _, r := range ranges {
		if row >= r.start && row <= r.end {
			return true
		}
	}
	return false
}

// stubBraceBody elides a multi-line { ... } block in place: the opening
// and closing lines are left untouched, interior lines are blanked, and a
// single marker comment takes the first interior line. Single-line bodies
// are not worth eliding and are returned unchanged.
func stubBraceBody(block *sitter.Node, src *Source, lines []string, stubbed *[]rowRange) {
	startRow := int(block.StartPoint().Row)
	endRow := int(block.EndPoint().Row)

	if startRow == endRow {
		return
	}

	*stubbed = append(*stubbed, rowRange{start: startRow, end: endRow})

	if endRow-startRow < 2 {
		// Opening and closing braces on adjacent lines; no interior.
		return
	}

	indent := leadingWhitespace(src.line(startRow + 1))
	if indent == "" {
		indent = "  "
	}
	lines[startRow+1] = indent + bodyStubMarker + "\n"
	for row := startRow + 2; row < endRow; row++ {
		lines[row] = ""
	}
}

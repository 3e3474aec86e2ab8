package align

import "github.com/cognicore/standoff/pkg/standoff/bio"

// FindClosingBracket returns the index of the first non-blank line at or
// after from whose token is "]". Some abstracts carry bracketed editorial
// insertions, e.g. "[published erratum appears in ...]", that the tagged
// data tokenizes but the reference text spells differently or omits.
func FindClosingBracket(lines []string, from, tokenIdx int) (int, bool) {
	for line := from; line < len(lines); line++ {
		if bio.IsBlank(lines[line]) {
			continue
		}
		if bio.TokenText(lines[line], tokenIdx) == "]" {
			return line, true
		}
	}
	return 0, false
}

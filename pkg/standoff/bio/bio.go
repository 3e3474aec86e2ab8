// Package bio reads token-per-line BIO tagged data: one token per line,
// tab-separated fields, blank lines between sentences.
package bio

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

// Tag is the B/I/O marker of a tagged token.
type Tag string

const (
	Begin   Tag = "B"
	Inside  Tag = "I"
	Outside Tag = "O"
)

// InEntity reports whether the tag marks a token inside some entity.
func (t Tag) InEntity() bool {
	return t == Begin || t == Inside
}

// Token is one parsed BIO line
type Token struct {
	Text string
	Tag  Tag
	Type string // empty iff Tag is Outside
	Line int    // 1-based line number in the BIO data
}

var tagPattern = regexp.MustCompile(`^([BIO])((?:-[A-Za-z0-9_-]+)?)$`)

// NormalizeNewlines turns CRLF and lone CR line endings into LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SplitLines splits BIO data into lines. A trailing newline yields a final
// empty line, which callers treat as a sentence boundary.
func SplitLines(data string) []string {
	return strings.Split(NormalizeNewlines(data), "\n")
}

// IsBlank reports whether a line is empty or whitespace only.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Field returns fields[idx], counting from the end for negative indices.
func Field(fields []string, idx int) (string, bool) {
	if idx < 0 {
		idx += len(fields)
	}
	if idx < 0 || idx >= len(fields) {
		return "", false
	}
	return fields[idx], true
}

// TokenText returns the token field of a line, or "" when the line has no
// such field.
func TokenText(line string, tokenIdx int) string {
	text, _ := Field(strings.Split(line, "\t"), tokenIdx)
	return text
}

// ParseTag splits a tag such as "B-protein" into its marker and type.
func ParseTag(s string) (Tag, string, error) {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", internalerr.NewAlignmentError(internalerr.KindFieldParse, 0,
			"failed to parse tag %q", s)
	}
	tag := Tag(m[1])
	typ := strings.TrimPrefix(m[2], "-")

	if (typ == "") != (tag == Outside) {
		return "", "", internalerr.NewAlignmentError(internalerr.KindFieldParse, 0,
			"tag/type mismatch %q", s)
	}
	return tag, typ, nil
}

// ParseLine parses a non-blank BIO line. tokenIdx and tagIdx select the
// token and tag fields; negative values count from the last field.
func ParseLine(line string, lineNo, tokenIdx, tagIdx int) (Token, error) {
	fields := strings.Split(line, "\t")

	text, ok := Field(fields, tokenIdx)
	if !ok {
		return Token{}, internalerr.NewAlignmentError(internalerr.KindFieldParse, lineNo,
			"failed to get token text (field %d) on line: %s", tokenIdx, line)
	}
	rawTag, ok := Field(fields, tagIdx)
	if !ok {
		return Token{}, internalerr.NewAlignmentError(internalerr.KindFieldParse, lineNo,
			"failed to get tag (field %d) on line: %s", tagIdx, line)
	}

	tag, typ, err := ParseTag(rawTag)
	if err != nil {
		var aerr *internalerr.AlignmentError
		if errors.As(err, &aerr) {
			aerr.Line = lineNo
		}
		return Token{}, err
	}

	return Token{Text: text, Tag: tag, Type: typ, Line: lineNo}, nil
}

package align

import (
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/cognicore/standoff/pkg/standoff/bio"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

// Token is a BIO token resolved to the half-open range [Start, End) of the
// reference text. Text is the resolved (possibly unescaped or respaced)
// token and always equals ref[Start:End].
type Token struct {
	Start int
	End   int
	Tag   bio.Tag
	Type  string
	Text  string
	Line  int
}

// Document aligns every BIO line against ref. Blank lines are sentence
// boundaries and consume no reference text. Bracketed insertions missing
// from the reference are skipped. Leftover reference text or BIO tokens
// after the pass are tolerated only when free of letters and digits.
func (a *Aligner) Document(ref []rune, lines []string, tokenIdx, tagIdx int) ([]Token, error) {
	var tokens []Token

	ri, bi := 0, 0
	for ri < len(ref) {
		if bi >= len(lines) {
			a.log.Debug("Warning: received BIO didn't cover given text")
			break
		}

		line := lines[bi]
		if bio.IsBlank(line) {
			bi++
			continue
		}

		parsed, err := bio.ParseLine(line, bi+1, tokenIdx, tagIdx)
		if err != nil {
			return nil, err
		}

		ri = a.FindOffset(ref, ri, parsed.Text)
		text := a.Align(ref, ri, parsed.Text)

		if text == "[" && (ri >= len(ref) || ref[ri] != '[') {
			closing, ok := FindClosingBracket(lines, bi, tokenIdx)
			if !ok {
				return nil, internalerr.NewAlignmentError(internalerr.KindUnclosedBracket, bi+1,
					"no closing bracket after %q", line)
			}
			a.log.Debugf("Skip bracketed: %q", joinTokens(lines[bi:closing+1], tokenIdx))
			bi = closing + 1
			continue
		}

		n := len([]rune(text))
		if !matchAt(ref, ri, []rune(text)) {
			return nil, internalerr.NewAlignmentError(internalerr.KindMismatch, bi+1,
				"reference %q tagged %q", window(ref, ri, n), text)
		}

		tokens = append(tokens, Token{
			Start: ri,
			End:   ri + n,
			Tag:   parsed.Tag,
			Type:  parsed.Type,
			Text:  text,
			Line:  parsed.Line,
		})

		ri += n
		bi++

		for ri < len(ref) && unicode.IsSpace(ref[ri]) {
			ri++
		}
	}

	if err := a.checkLeftovers(ref, ri, lines, bi, tokenIdx); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (a *Aligner) checkLeftovers(ref []rune, ri int, lines []string, bi, tokenIdx int) error {
	if ri < len(ref) {
		extra := ref[ri:]
		if lo.SomeBy(extra, func(r rune) bool { return !unicode.IsSpace(r) }) {
			a.log.Debugf("Leftover text in reference: %q", string(extra))
			if lo.SomeBy(extra, isAlnum) {
				return internalerr.NewAlignmentError(internalerr.KindLeftover, 0,
					"extra text in reference: %q", string(extra))
			}
		}
	}

	if bi < len(lines) {
		rest := lines[bi:]
		if lo.SomeBy(rest, func(l string) bool { return !bio.IsBlank(l) }) {
			extra := joinTokens(rest, tokenIdx)
			a.log.Debugf("Leftover text in tagged: %q", extra)
			if lo.SomeBy([]rune(extra), isAlnum) {
				return internalerr.NewAlignmentError(internalerr.KindLeftover, bi+1,
					"extra text in tagged data: %q", extra)
			}
		}
	}
	return nil
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func joinTokens(lines []string, tokenIdx int) string {
	parts := lo.Map(lines, func(l string, _ int) string { return bio.TokenText(l, tokenIdx) })
	return strings.Join(parts, " ")
}

// Package align recovers the character offsets of tokenized BIO data in the
// untokenized reference text it was produced from.
//
// Offsets are counted in characters (Unicode code points), not bytes, so
// they can be used directly as standoff annotation offsets.
package align

import (
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/standoff/internal/logger"
)

// Aligner matches tokens against a reference text. It holds no per-document
// state and can be reused across documents.
type Aligner struct {
	rules []Rule
	log   logrus.FieldLogger
}

// New creates an aligner. A nil rules slice selects DefaultRules; a nil
// logger discards diagnostics.
func New(rules []Rule, log logrus.FieldLogger) *Aligner {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Aligner{
		rules: append([]Rule(nil), rules...),
		log:   logger.OrDiscard(log),
	}
}

// Rules returns a copy of the unescape table in evaluation order.
func (a *Aligner) Rules() []Rule {
	return append([]Rule(nil), a.rules...)
}

// FindOffset returns the offset of token in ref at or after offset.
// Leading whitespace is skipped. When the token only occurs further on, the
// material in between may consist of whitespace and '.' only; otherwise the
// (whitespace-skipped) offset is returned unchanged and the caller's exact
// match check fails.
func (a *Aligner) FindOffset(ref []rune, offset int, token string) int {
	for offset < len(ref) && unicode.IsSpace(ref[offset]) {
		offset++
	}

	tok := []rune(token)
	if matchAt(ref, offset, tok) {
		return offset
	}

	o := indexFrom(ref, offset, tok)
	if o == -1 {
		return offset
	}

	skip := ref[offset:o]
	for _, r := range skip {
		if !unicode.IsSpace(r) && r != '.' {
			return offset
		}
	}
	a.log.Debugf("Skip: %q", string(skip))
	return o
}

// Align returns the form of token that matches ref at offset: the token
// itself, an unescaped variant, or a respaced (and possibly unescaped)
// variant. When nothing matches the original token is returned.
func (a *Aligner) Align(ref []rune, offset int, token string) string {
	tok := []rune(token)
	if matchAt(ref, offset, tok) {
		return token
	}

	a.log.Debugf("Mismatch: %q vs. %q", window(ref, offset, len(tok)), token)

	if unescaped, ok := a.unescape(ref, offset, token); ok {
		return unescaped
	}

	// resolve possible space deletions in token
	respaced := respace(ref, offset, tok)
	if respaced != token {
		a.log.Debugf("Note: respaced %q to %q", token, respaced)
		token = respaced
	}

	if unescaped, ok := a.unescape(ref, offset, token); ok {
		return unescaped
	}
	return token
}

func (a *Aligner) unescape(ref []rune, offset int, token string) (string, bool) {
	for _, r := range a.rules {
		candidate, ok := r.Apply(token)
		if !ok {
			continue
		}
		if matchAt(ref, offset, []rune(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// respace walks ref and tok in lockstep, copying into the token every
// whitespace character of ref that the token lacks.
func respace(ref []rune, offset int, tok []rune) string {
	out := make([]rune, 0, len(tok))
	i, o := 0, offset
	for i < len(tok) {
		if o < len(ref) && unicode.IsSpace(ref[o]) && !unicode.IsSpace(tok[i]) {
			out = append(out, ref[o])
		} else {
			out = append(out, tok[i])
			i++
		}
		o++
	}
	return string(out)
}

func matchAt(ref []rune, offset int, tok []rune) bool {
	if len(tok) == 0 {
		return true
	}
	if offset < 0 || offset+len(tok) > len(ref) {
		return false
	}
	for i, r := range tok {
		if ref[offset+i] != r {
			return false
		}
	}
	return true
}

// indexFrom returns the first position at or after offset where tok occurs.
func indexFrom(ref []rune, offset int, tok []rune) int {
	for i := offset; i+len(tok) <= len(ref); i++ {
		if matchAt(ref, i, tok) {
			return i
		}
	}
	return -1
}

func window(ref []rune, offset, n int) string {
	if offset >= len(ref) {
		return ""
	}
	end := offset + n
	if end > len(ref) {
		end = len(ref)
	}
	return string(ref[offset:end])
}

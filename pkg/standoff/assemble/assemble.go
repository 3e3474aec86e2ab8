// Package assemble merges aligned BIO tokens into standoff entities.
package assemble

import (
	"github.com/sirupsen/logrus"

	"github.com/cognicore/standoff/internal/logger"
	"github.com/cognicore/standoff/pkg/standoff/align"
	"github.com/cognicore/standoff/pkg/standoff/bio"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

// Assembler turns an aligned token stream into entities.
type Assembler struct {
	log logrus.FieldLogger
}

// New creates an assembler. A nil logger discards correction notes.
func New(log logrus.FieldLogger) *Assembler {
	return &Assembler{log: logger.OrDiscard(log)}
}

// FixOrphanInside rewrites an "I" tag that follows an "O" tag, or opens
// the sequence, to "B". It returns the revised tokens and the number of
// rewrites; the input slice is not modified.
func FixOrphanInside(tokens []align.Token, log logrus.FieldLogger) ([]align.Token, int) {
	log = logger.OrDiscard(log)
	revised := make([]align.Token, len(tokens))
	fixed := 0

	prev := bio.Outside
	for i, tok := range tokens {
		if prev == bio.Outside && tok.Tag == bio.Inside {
			log.WithField("line", tok.Line).Warn(`Note: rewriting "I" -> "B" after "O"`)
			tok.Tag = bio.Begin
			fixed++
		}
		revised[i] = tok
		prev = tok.Tag
	}
	return revised, fixed
}

// FixTypeSwitch rewrites an "I" tag to "B" when the preceding token is in
// an entity of a different type.
func FixTypeSwitch(tokens []align.Token, log logrus.FieldLogger) ([]align.Token, int) {
	log = logger.OrDiscard(log)
	revised := make([]align.Token, len(tokens))
	fixed := 0

	var prevTag bio.Tag
	var prevType string
	for i, tok := range tokens {
		if prevTag.InEntity() && tok.Tag == bio.Inside && prevType != tok.Type {
			log.WithField("line", tok.Line).Warn(`Note: rewriting "I" -> "B" at type switch`)
			tok.Tag = bio.Begin
			fixed++
		}
		revised[i] = tok
		prevTag, prevType = tok.Tag, tok.Type
	}
	return revised, fixed
}

// Assemble applies both correction passes and merges the result.
func (a *Assembler) Assemble(tokens []align.Token, ref []rune, counter *Counter) ([]Entity, error) {
	tokens, _ = FixOrphanInside(tokens, a.log)
	tokens, _ = FixTypeSwitch(tokens, a.log)
	return a.Merge(tokens, ref, counter)
}

// Merge collapses contiguous B/I runs of already corrected tokens into
// entities spanning ref, numbering them from counter (a fresh counter
// starting at 1 when nil). Adjacent runs with no "O" between them stay
// separate entities.
func (a *Assembler) Merge(tokens []align.Token, ref []rune, counter *Counter) ([]Entity, error) {
	if counter == nil {
		counter = NewCounter(1)
	}
	var entities []Entity
	emit := func(typ string, start, end int) {
		entities = append(entities, Entity{
			ID:    counter.Next(),
			Type:  typ,
			Start: start,
			End:   end,
			Text:  string(ref[start:end]),
		})
	}

	prevTag, prevEnd := bio.Outside, 0
	currType, currStart := "", 0
	for _, tok := range tokens {
		switch {
		case prevTag != bio.Outside && tok.Tag != bio.Inside:
			emit(currType, currStart, prevEnd)
			currType, currStart = "", 0
		case prevTag != bio.Outside && currType != tok.Type:
			return nil, internalerr.NewAlignmentError(internalerr.KindTypeContinuation, tok.Line,
				"entity of type %q continues as type %q", currType, tok.Type)
		case prevTag == bio.Outside && tok.Tag == bio.Inside:
			return nil, internalerr.NewAlignmentError(internalerr.KindTypeContinuation, tok.Line,
				"entity of type %q continues without a beginning", tok.Type)
		}

		if tok.Tag == bio.Begin {
			currType, currStart = tok.Type, tok.Start
		}
		prevTag, prevEnd = tok.Tag, tok.End
	}

	if prevTag != bio.Outside {
		emit(currType, currStart, prevEnd)
	}

	for _, e := range entities {
		if err := e.Check(); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

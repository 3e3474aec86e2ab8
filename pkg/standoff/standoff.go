// Package standoff converts token-per-line BIO tagged data into standoff
// annotations anchored to the original document text.
package standoff

import (
	"bufio"
	"context"
	"crypto/rand"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/standoff/internal/logger"
	"github.com/cognicore/standoff/pkg/standoff/align"
	"github.com/cognicore/standoff/pkg/standoff/assemble"
	"github.com/cognicore/standoff/pkg/standoff/bio"
	"github.com/cognicore/standoff/pkg/standoff/internalerr"
	"github.com/cognicore/standoff/pkg/standoff/store"
)

// Converter runs the aligner and the assembler over documents
type Converter struct {
	aligner    *align.Aligner
	assembler  *assemble.Assembler
	tokenIndex int
	counter    *assemble.Counter
	store      store.Store
	log        logrus.FieldLogger
	entropy    *ulid.MonotonicEntropy
}

// Options configures a Converter
type Options struct {
	// Rules replaces the default unescape table when non-nil.
	Rules      []align.Rule
	TokenIndex int
	// Counter numbers entities; a fresh counter starting at 1 when nil.
	Counter *assemble.Counter
	// Store, when set, receives the entities of ConvertDocument.
	Store  store.Store
	Logger logrus.FieldLogger
}

// NewConverter creates a Converter with the given options
func NewConverter(opts Options) *Converter {
	counter := opts.Counter
	if counter == nil {
		counter = assemble.NewCounter(1)
	}
	log := logger.OrDiscard(opts.Logger)

	return &Converter{
		aligner:    align.New(opts.Rules, log),
		assembler:  assemble.New(log),
		tokenIndex: opts.TokenIndex,
		counter:    counter,
		store:      opts.Store,
		log:        log,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Close cleanly shuts down the configured store, if any
func (c *Converter) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Counter returns the entity id counter shared by all conversions.
func (c *Converter) Counter() *assemble.Counter {
	return c.counter
}

// Convert aligns bioData against ref using the tag in column tagIndex and
// returns the assembled entities.
func (c *Converter) Convert(ref, bioData string, tagIndex int) ([]assemble.Entity, error) {
	text := []rune(ref)

	tokens, err := c.aligner.Document(text, bio.SplitLines(bioData), c.tokenIndex, tagIndex)
	if err != nil {
		return nil, err
	}
	return c.assembler.Assemble(tokens, text, c.counter)
}

// ConvertColumns runs one conversion per tag column and concatenates the
// entities. Identifiers continue across columns.
func (c *Converter) ConvertColumns(ref, bioData string, tagIndices []int) ([]assemble.Entity, error) {
	var all []assemble.Entity
	for _, idx := range tagIndices {
		ents, err := c.Convert(ref, bioData, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "tag column %d", idx)
		}
		all = append(all, ents...)
	}
	return all, nil
}

// NewRun starts a conversion run and records it in the store, if any.
func (c *Converter) NewRun(ctx context.Context, source string, tagIndices []int) (store.Run, error) {
	run := store.Run{
		ID:         ulid.MustNew(ulid.Now(), c.entropy).String(),
		StartedAt:  time.Now().UTC(),
		TagIndices: append([]int(nil), tagIndices...),
		Source:     source,
	}
	if c.store != nil {
		if err := c.store.BeginRun(ctx, run); err != nil {
			return store.Run{}, errors.Wrap(err, "begin run")
		}
	}
	c.log.WithField("run", run.ID).Debugf("Started run over %s", source)
	return run, nil
}

// ConvertDocument converts one document for every tag column of run and
// stores the entities per column when a store is configured.
func (c *Converter) ConvertDocument(ctx context.Context, run store.Run, docID, ref, bioData string) ([]assemble.Entity, error) {
	var all []assemble.Entity
	for _, idx := range run.TagIndices {
		ents, err := c.Convert(ref, bioData, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "document %s, tag column %d", docID, idx)
		}

		if c.store != nil {
			doc := store.Document{
				RunID:    run.ID,
				DocID:    docID,
				TagIndex: idx,
				Entities: toStoreEntities(docID, ents),
			}
			if err := c.store.PutDocument(ctx, doc); err != nil {
				return nil, errors.Wrapf(err, "store document %s", docID)
			}
		}
		all = append(all, ents...)
	}
	return all, nil
}

func toStoreEntities(docID string, ents []assemble.Entity) []store.Entity {
	out := make([]store.Entity, len(ents))
	for i, e := range ents {
		out[i] = store.Entity{
			DocID: docID,
			ID:    e.ID,
			Type:  e.Type,
			Start: e.Start,
			End:   e.End,
			Text:  e.Text,
		}
	}
	return out
}

// WriteStandoff writes one standoff line per entity.
func WriteStandoff(w io.Writer, ents []assemble.Entity) error {
	bw := bufio.NewWriter(w)
	for _, e := range ents {
		if _, err := bw.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadText reads a UTF-8 file with line endings normalized to LF.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	if !utf8.Valid(data) {
		return "", errors.Wrapf(internalerr.ErrInvalidInput, "%s is not valid UTF-8", path)
	}
	return bio.NormalizeNewlines(string(data)), nil
}

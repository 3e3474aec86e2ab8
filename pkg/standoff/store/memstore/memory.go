package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
	"github.com/cognicore/standoff/pkg/standoff/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
	docs map[docKey]store.Document
}

type docKey struct {
	runID    string
	docID    string
	tagIndex int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs: make(map[string]store.Run),
		docs: make(map[docKey]store.Document),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// BeginRun records a conversion run.
func (s *Store) BeginRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return errors.Wrapf(internalerr.ErrDuplicate, "run %s", r.ID)
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// Runs returns all runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := lo.Map(lo.Values(s.runs), func(r store.Run, _ int) store.Run { return copyRun(r) })
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// PutDocument replaces the entities of a document within a run.
func (s *Store) PutDocument(ctx context.Context, d store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[d.RunID]; !ok {
		return errors.Wrapf(internalerr.ErrNotFound, "run %s", d.RunID)
	}
	if d.DocID == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "document ID is required")
	}

	s.docs[docKey{d.RunID, d.DocID, d.TagIndex}] = copyDoc(d)
	return nil
}

// GetDocument returns one document of a run.
func (s *Store) GetDocument(ctx context.Context, runID, docID string, tagIndex int) (store.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.docs[docKey{runID, docID, tagIndex}]; ok {
		return copyDoc(doc), true, nil
	}
	return store.Document{}, false, nil
}

// ListDocuments returns the documents of a run ordered by document ID and
// tag index.
func (s *Store) ListDocuments(ctx context.Context, runID string) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []store.Document
	for key, doc := range s.docs {
		if key.runID == runID {
			docs = append(docs, copyDoc(doc))
		}
	}
	sortDocs(docs)
	return docs, nil
}

// EntitiesByType returns the entities of one type across a run, in
// document order.
func (s *Store) EntitiesByType(ctx context.Context, runID, entityType string) ([]store.Entity, error) {
	docs, err := s.ListDocuments(ctx, runID)
	if err != nil {
		return nil, err
	}

	var out []store.Entity
	for _, doc := range docs {
		out = append(out, lo.Filter(doc.Entities, func(e store.Entity, _ int) bool {
			return e.Type == entityType
		})...)
	}
	return out, nil
}

func sortDocs(docs []store.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].DocID != docs[j].DocID {
			return docs[i].DocID < docs[j].DocID
		}
		return docs[i].TagIndex < docs[j].TagIndex
	})
}

func copyRun(r store.Run) store.Run {
	r.TagIndices = append([]int(nil), r.TagIndices...)
	return r
}

func copyDoc(d store.Document) store.Document {
	ents := make([]store.Entity, len(d.Entities))
	for i, e := range d.Entities {
		e.DocID = d.DocID
		ents[i] = e
	}
	d.Entities = ents
	return d
}

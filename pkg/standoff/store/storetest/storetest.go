// Package storetest holds behavior checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
	"github.com/cognicore/standoff/pkg/standoff/store"
)

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("RunsRoundTrip", func(t *testing.T) { testRuns(t, open(t)) })
	t.Run("RunsSubSecondOrder", func(t *testing.T) { testRunsSubSecond(t, open(t)) })
	t.Run("PutAndGetDocument", func(t *testing.T) { testPutGet(t, open(t)) })
	t.Run("PutReplacesEntities", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("UnknownRun", func(t *testing.T) { testUnknownRun(t, open(t)) })
	t.Run("ListAndFilter", func(t *testing.T) { testListAndFilter(t, open(t)) })
}

func testRuns(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "02", StartedAt: base.Add(time.Minute), TagIndices: []int{4, 5}, Source: "b"}))
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "01", StartedAt: base, TagIndices: []int{-1}, Source: "a"}))

	err := st.BeginRun(ctx, store.Run{ID: "01", StartedAt: base})
	assert.True(t, errors.Is(err, internalerr.ErrDuplicate), "duplicate run: %v", err)

	err = st.BeginRun(ctx, store.Run{StartedAt: base})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput), "empty run ID: %v", err)

	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "01", runs[0].ID)
	assert.Equal(t, []int{-1}, runs[0].TagIndices)
	assert.Equal(t, "a", runs[0].Source)
	assert.True(t, base.Equal(runs[0].StartedAt))
	assert.Equal(t, []int{4, 5}, runs[1].TagIndices)
}

func testRunsSubSecond(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	early := base.Add(120 * time.Millisecond)
	late := base.Add(123 * time.Millisecond)
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "a-late", StartedAt: late}))
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "b-early", StartedAt: early}))
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "c-whole", StartedAt: base.Add(time.Second)}))

	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "b-early", runs[0].ID)
	assert.Equal(t, "a-late", runs[1].ID)
	assert.Equal(t, "c-whole", runs[2].ID)
	assert.True(t, early.Equal(runs[0].StartedAt), "got %v", runs[0].StartedAt)
	assert.True(t, late.Equal(runs[1].StartedAt), "got %v", runs[1].StartedAt)
}

func testPutGet(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "r1", StartedAt: time.Now()}))
	doc := store.Document{
		RunID:    "r1",
		DocID:    "91173312",
		TagIndex: -1,
		Entities: []store.Entity{
			{ID: 1, Type: "DNA", Start: 0, End: 9, Text: "IL-2 gene"},
			{ID: 2, Type: "protein", Start: 14, End: 18, Text: "NF-AT"},
		},
	}
	require.NoError(t, st.PutDocument(ctx, doc))

	got, found, err := st.GetDocument(ctx, "r1", "91173312", -1)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, store.Entity{DocID: "91173312", ID: 1, Type: "DNA", Start: 0, End: 9, Text: "IL-2 gene"}, got.Entities[0])
	assert.Equal(t, "NF-AT", got.Entities[1].Text)

	_, found, err = st.GetDocument(ctx, "r1", "91173312", 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func testReplace(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "r1", StartedAt: time.Now()}))
	require.NoError(t, st.PutDocument(ctx, store.Document{
		RunID: "r1", DocID: "1", TagIndex: -1,
		Entities: []store.Entity{{ID: 1, Type: "DNA", Start: 0, End: 4, Text: "IL-2"}},
	}))
	require.NoError(t, st.PutDocument(ctx, store.Document{
		RunID: "r1", DocID: "1", TagIndex: -1,
		Entities: []store.Entity{{ID: 7, Type: "RNA", Start: 5, End: 9, Text: "mRNA"}},
	}))

	got, found, err := st.GetDocument(ctx, "r1", "1", -1)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Entities, 1)
	assert.Equal(t, 7, got.Entities[0].ID)
}

func testUnknownRun(t *testing.T, st store.Store) {
	defer st.Close()

	err := st.PutDocument(context.Background(), store.Document{RunID: "missing", DocID: "1"})
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "unknown run: %v", err)
}

func testListAndFilter(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "r1", StartedAt: time.Now()}))
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "r2", StartedAt: time.Now()}))

	put := func(run, doc string, idx int, ents ...store.Entity) {
		require.NoError(t, st.PutDocument(ctx, store.Document{RunID: run, DocID: doc, TagIndex: idx, Entities: ents}))
	}
	put("r1", "b", -1, store.Entity{ID: 3, Type: "protein", Start: 0, End: 3, Text: "p53"})
	put("r1", "a", 5, store.Entity{ID: 2, Type: "protein", Start: 0, End: 4, Text: "IL-4"})
	put("r1", "a", 4,
		store.Entity{ID: 1, Type: "protein", Start: 0, End: 4, Text: "IL-2"},
		store.Entity{ID: 4, Type: "DNA", Start: 5, End: 9, Text: "gene"},
	)
	put("r2", "a", -1, store.Entity{ID: 1, Type: "protein", Start: 0, End: 4, Text: "IL-9"})

	docs, err := st.ListDocuments(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].DocID)
	assert.Equal(t, 4, docs[0].TagIndex)
	assert.Equal(t, 5, docs[1].TagIndex)
	assert.Equal(t, "b", docs[2].DocID)

	proteins, err := st.EntitiesByType(ctx, "r1", "protein")
	require.NoError(t, err)
	texts := make([]string, len(proteins))
	for i, e := range proteins {
		texts[i] = e.Text
	}
	assert.Equal(t, []string{"IL-2", "IL-4", "p53"}, texts)
	assert.Equal(t, "a", proteins[0].DocID)

	none, err := st.EntitiesByType(ctx, "r1", "cell_line")
	require.NoError(t, err)
	assert.Empty(t, none)
}

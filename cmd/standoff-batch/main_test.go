package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/standoff/internal/cli"
	"github.com/cognicore/standoff/pkg/standoff/store/sqlite"
)

func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	return cli.Execute(cmd), stderr.String()
}

func writeDoc(t *testing.T, dir, id, text, bio string) {
	t.Helper()
	if text != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".txt"), []byte(text), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".conll"), []byte(bio), 0o644))
}

func readAnn(t *testing.T, dir, id string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, id+".ann"))
	require.NoError(t, err)
	return string(data)
}

func corpusDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "1001", "IL-2 gene expression", "IL-2\tB-DNA\ngene\tI-DNA\nexpression\tO\n")
	writeDoc(t, dir, "1002", "NF-AT binds CD28.", "NF-AT\tB-protein\nbinds\tO\nCD28\tB-protein\n.\tO\n")
	return dir
}

func TestBatchContinuesIdentifiers(t *testing.T) {
	dir := corpusDir(t)

	code, stderr := run(t, dir)
	require.Equal(t, cli.ExitOK, code, stderr)

	assert.Equal(t, "T1\tDNA 0 9\tIL-2 gene\n", readAnn(t, dir, "1001"))
	assert.Equal(t, "T2\tprotein 0 5\tNF-AT\nT3\tprotein 12 16\tCD28\n", readAnn(t, dir, "1002"))
	assert.Contains(t, stderr, "Converted 2 documents (3 entities)")
}

func TestBatchResetIdentifiers(t *testing.T) {
	dir := corpusDir(t)

	code, stderr := run(t, "--reset-ids", dir)
	require.Equal(t, cli.ExitOK, code, stderr)

	assert.Equal(t, "T1\tprotein 0 5\tNF-AT\nT2\tprotein 12 16\tCD28\n", readAnn(t, dir, "1002"))
}

func TestBatchResetIdentifiersFromConfig(t *testing.T) {
	dir := corpusDir(t)
	cfg := filepath.Join(t.TempDir(), "standoff.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("id:\n  reset_per_document: true\nbatch:\n  ann_suffix: a1\n"), 0o644))

	code, stderr := run(t, "--config", cfg, dir)
	require.Equal(t, cli.ExitOK, code, stderr)

	data, err := os.ReadFile(filepath.Join(dir, "1002.a1"))
	require.NoError(t, err)
	assert.Equal(t, "T1\tprotein 0 5\tNF-AT\nT2\tprotein 12 16\tCD28\n", string(data))
}

func TestBatchStopsOnFailure(t *testing.T) {
	dir := corpusDir(t)
	writeDoc(t, dir, "1000", "IL-2", "IL-3\tB-protein\n")

	code, stderr := run(t, dir)

	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, stderr, "mismatch")
	assert.NoFileExists(t, filepath.Join(dir, "1001.ann"))
}

func TestBatchKeepGoing(t *testing.T) {
	dir := corpusDir(t)
	writeDoc(t, dir, "1000", "IL-2", "IL-3\tB-protein\n")
	writeDoc(t, dir, "1003", "", "IL-2\tB-protein\n")

	code, stderr := run(t, "--keep-going", dir)

	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, stderr, "2 of 4 documents failed")
	assert.Contains(t, stderr, "reference text for 1003")
	assert.FileExists(t, filepath.Join(dir, "1001.ann"))
	assert.FileExists(t, filepath.Join(dir, "1002.ann"))
	assert.NoFileExists(t, filepath.Join(dir, "1000.ann"))
}

func TestBatchRecordsRun(t *testing.T) {
	dir := corpusDir(t)
	db := filepath.Join(t.TempDir(), "ann.db")

	code, stderr := run(t, "--db", db, dir)
	require.Equal(t, cli.ExitOK, code, stderr)

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, dir, runs[0].Source)
	assert.Equal(t, []int{-1}, runs[0].TagIndices)

	docs, err := st.ListDocuments(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1001", docs[0].DocID)

	proteins, err := st.EntitiesByType(ctx, runs[0].ID, "protein")
	require.NoError(t, err)
	require.Len(t, proteins, 2)
	assert.Equal(t, "CD28", proteins[1].Text)
}

func TestBatchUsage(t *testing.T) {
	code, _ := run(t)
	assert.Equal(t, cli.ExitUsage, code)

	code, _ = run(t, t.TempDir(), "zero")
	assert.Equal(t, cli.ExitUsage, code)
}

func TestDocumentIDs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.conll", "a.conll", "a.txt", ".conll", "c.conll.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.conll"), 0o755))

	ids, err := documentIDs(dir, "conll")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = documentIDs(filepath.Join(dir, "missing"), "conll")
	assert.Error(t, err)
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
	"github.com/cognicore/standoff/pkg/standoff/store"
)

// timeLayout is fixed width so that started_at sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs below are per connection
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	tag_indices TEXT NOT NULL,
	source TEXT
);

CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	tag_index INTEGER NOT NULL,
	UNIQUE(run_id, doc_id, tag_index),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entities (
	document_id INTEGER NOT NULL,
	ent_id INTEGER NOT NULL,
	type TEXT NOT NULL,
	start_off INTEGER NOT NULL,
	end_off INTEGER NOT NULL,
	text TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// BeginRun records a conversion run
func (s *sqliteStore) BeginRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "run ID is required")
	}

	indices, err := json.Marshal(r.TagIndices)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exists, err := rowExists(ctx, tx, `SELECT 1 FROM runs WHERE id = ?`, r.ID)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(internalerr.ErrDuplicate, "run %s", r.ID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, tag_indices, source) VALUES (?, ?, ?, ?)`,
		r.ID,
		r.StartedAt.UTC().Format(timeLayout),
		string(indices),
		r.Source,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Runs returns all runs, oldest first
func (s *sqliteStore) Runs(ctx context.Context) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, tag_indices, source FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r                  store.Run
			startedAt, indices string
			source             sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedAt, &indices, &source); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, errors.Wrapf(err, "run %s started_at", r.ID)
		}
		if err := json.Unmarshal([]byte(indices), &r.TagIndices); err != nil {
			return nil, errors.Wrapf(err, "run %s tag_indices", r.ID)
		}
		r.Source = source.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PutDocument replaces the entities of a document within a run
func (s *sqliteStore) PutDocument(ctx context.Context, d store.Document) error {
	if d.DocID == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "document ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exists, err := rowExists(ctx, tx, `SELECT 1 FROM runs WHERE id = ?`, d.RunID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(internalerr.ErrNotFound, "run %s", d.RunID)
	}

	const stmt = `
INSERT INTO documents (run_id, doc_id, tag_index)
VALUES (?, ?, ?)
ON CONFLICT(run_id, doc_id, tag_index) DO UPDATE SET doc_id=excluded.doc_id
RETURNING id;
`
	var id int64
	if err := tx.QueryRowContext(ctx, stmt, d.RunID, d.DocID, d.TagIndex).Scan(&id); err != nil {
		return err
	}

	if err := replaceEntities(ctx, tx, id, d.Entities); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceEntities(ctx context.Context, tx *sql.Tx, documentID int64, ents []store.Entity) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE document_id=?`, documentID); err != nil {
		return err
	}
	if len(ents) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entities (document_id, ent_id, type, start_off, end_off, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range ents {
		if _, err := stmt.ExecContext(ctx, documentID, e.ID, e.Type, e.Start, e.End, e.Text); err != nil {
			return err
		}
	}
	return nil
}

// GetDocument retrieves one document of a run
func (s *sqliteStore) GetDocument(ctx context.Context, runID, docID string, tagIndex int) (store.Document, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE run_id = ? AND doc_id = ? AND tag_index = ?`,
		runID, docID, tagIndex,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return store.Document{}, false, nil
	}
	if err != nil {
		return store.Document{}, false, err
	}

	ents, err := s.loadEntities(ctx, `
SELECT d.doc_id, e.ent_id, e.type, e.start_off, e.end_off, e.text
FROM entities e JOIN documents d ON d.id = e.document_id
WHERE e.document_id = ?
ORDER BY e.rowid`, id)
	if err != nil {
		return store.Document{}, false, err
	}

	return store.Document{
		RunID:    runID,
		DocID:    docID,
		TagIndex: tagIndex,
		Entities: ents,
	}, true, nil
}

// ListDocuments returns the documents of a run ordered by document ID and
// tag index
func (s *sqliteStore) ListDocuments(ctx context.Context, runID string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, tag_index FROM documents WHERE run_id = ? ORDER BY doc_id, tag_index`, runID)
	if err != nil {
		return nil, err
	}

	type key struct {
		docID    string
		tagIndex int
	}
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.docID, &k.tagIndex); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(keys))
	for _, k := range keys {
		doc, _, err := s.GetDocument(ctx, runID, k.docID, k.tagIndex)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// EntitiesByType returns the entities of one type across a run, in
// document order
func (s *sqliteStore) EntitiesByType(ctx context.Context, runID, entityType string) ([]store.Entity, error) {
	return s.loadEntities(ctx, `
SELECT d.doc_id, e.ent_id, e.type, e.start_off, e.end_off, e.text
FROM entities e JOIN documents d ON d.id = e.document_id
WHERE d.run_id = ? AND e.type = ?
ORDER BY d.doc_id, d.tag_index, e.rowid`, runID, entityType)
}

func (s *sqliteStore) loadEntities(ctx context.Context, query string, args ...interface{}) ([]store.Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ents []store.Entity
	for rows.Next() {
		var e store.Entity
		if err := rows.Scan(&e.DocID, &e.ID, &e.Type, &e.Start, &e.End, &e.Text); err != nil {
			return nil, err
		}
		ents = append(ents, e)
	}
	return ents, rows.Err()
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

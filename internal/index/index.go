// Package index provides full-text search over an intent set.
//
// The index lives in an in-memory SQLite database with an FTS5 table and
// is rebuilt from the current intent set for every search session, so it
// never serves stale data and nothing touches disk.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const (
	// DefaultLimit is the number of results returned when none is requested.
	DefaultLimit = 10
	// MaxLimit caps the number of results.
	MaxLimit = 50
)

// Result is one search hit.
type Result struct {
	ID       string         `json:"id"`
	UserGoal string         `json:"userGoal"`
	Status   intents.Status `json:"status"`
	Snippet  string         `json:"snippet"`
	Rank     float64        `json:"rank"`
}

// Options filters a search.
type Options struct {
	Status intents.Status
	Limit  int
}

// Index is a searchable snapshot of an intent set.
type Index struct {
	db *sql.DB
}

// Build loads list into a fresh in-memory index. Close must be called
// when done.
func Build(ctx context.Context, list []intents.Intent) (*Index, error) {
	db, err := openDB("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	idx := &Index{db: db}
	if err := idx.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: migration: %w", err)
	}
	if err := idx.load(ctx, list); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: load: %w", err)
	}
	return idx, nil
}

// Close releases the in-memory database.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE intents (
			seq       INTEGER PRIMARY KEY,
			id        TEXT NOT NULL,
			status    TEXT NOT NULL,
			user_goal TEXT NOT NULL,
			body      TEXT NOT NULL
		);

		CREATE VIRTUAL TABLE intents_fts USING fts5(
			id, user_goal, body,
			content='intents', content_rowid='seq'
		);
	`
	_, err := x.db.ExecContext(ctx, schema)
	return err
}

func (x *Index) load(ctx context.Context, list []intents.Intent) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO intents (seq, id, status, user_goal, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = ins.Close() }()

	for i, in := range list {
		if _, err := ins.ExecContext(ctx, i+1, in.ID, string(in.Status), in.UserGoal, searchBody(in)); err != nil {
			return fmt.Errorf("inserting %q: %w", in.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO intents_fts(intents_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("building fts: %w", err)
	}
	return tx.Commit()
}

// Search runs a ranked full-text query. An empty query returns no hits.
func (x *Index) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return []Result{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sqlStr := `
		SELECT i.id, i.user_goal, i.status,
		       snippet(intents_fts, -1, '**', '**', '…', 12),
		       fts.rank
		FROM intents_fts fts
		JOIN intents i ON i.seq = fts.rowid
		WHERE intents_fts MATCH ?
	`
	args := []any{ftsQuery}
	if opts.Status != "" {
		sqlStr += " AND i.status = ?"
		args = append(args, string(opts.Status))
	}
	sqlStr += " ORDER BY fts.rank LIMIT ?"
	args = append(args, limit)

	rows, err := x.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Result{}
	for rows.Next() {
		var r Result
		var status string
		if err := rows.Scan(&r.ID, &r.UserGoal, &status, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		r.Status = intents.Status(status)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Search is a convenience wrapper that indexes list, runs one query and
// discards the index.
func Search(ctx context.Context, list []intents.Intent, query string, opts Options) ([]Result, error) {
	idx, err := Build(ctx, list)
	if err != nil {
		return nil, err
	}
	defer func() { _ = idx.Close() }()
	return idx.Search(ctx, query, opts)
}

// searchBody flattens the searchable text of an intent.
func searchBody(in intents.Intent) string {
	var parts []string
	parts = append(parts, in.Objectives...)
	parts = append(parts, in.Outcomes...)
	parts = append(parts, in.Constraints...)
	return strings.Join(parts, "\n")
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "fix auth bug" → `"fix" "auth" "bug"`
func sanitizeFTS(query string) string {
	var quoted []string
	for _, w := range strings.Fields(query) {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, " ")
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores the snapshot in a single table, one row per topic,
// rewritten inside one transaction on every save.
type SQLiteBackend struct {
	path string
	db   *sqlx.DB
}

type topicRow struct {
	Position  int    `db:"position"`
	ID        string `db:"id"`
	Name      string `db:"name"`
	Subject   string `db:"subject"`
	Notes     string `db:"notes"`
	Reviews   string `db:"reviews"`
	Completed string `db:"completed"`
	CreatedAt string `db:"created_at"`
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	b := &SQLiteBackend{path: path, db: db}
	if err := b.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS topics (
	position INTEGER NOT NULL,
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	subject TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	reviews TEXT NOT NULL,
	completed TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL DEFAULT ''
);`
	if _, err := b.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create topics table: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Location() string { return b.path }

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load returns topics in their stored list order.
func (b *SQLiteBackend) Load() ([]Topic, error) {
	var rows []topicRow
	if err := b.db.Select(&rows, `SELECT position, id, name, subject, notes, reviews, completed, created_at FROM topics ORDER BY position`); err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}

	topics := make([]Topic, 0, len(rows))
	for _, r := range rows {
		t := Topic{ID: r.ID, Name: r.Name, Subject: r.Subject, Notes: r.Notes}
		if err := json.Unmarshal([]byte(r.Reviews), &t.Reviews); err != nil {
			return nil, fmt.Errorf("decode reviews of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.Completed), &t.Completed); err != nil {
			return nil, fmt.Errorf("decode completed of %s: %w", r.ID, err)
		}
		if r.CreatedAt != "" {
			created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("decode created_at of %s: %w", r.ID, err)
			}
			t.CreatedAt = created
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// Save replaces every row with the given snapshot.
func (b *SQLiteBackend) Save(topics []Topic) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM topics`); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}

	for i, t := range topics {
		row, err := toRow(i, t)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExec(`INSERT INTO topics (position, id, name, subject, notes, reviews, completed, created_at)
VALUES (:position, :id, :name, :subject, :notes, :reviews, :completed, :created_at)`, row); err != nil {
			return fmt.Errorf("insert topic %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func toRow(pos int, t Topic) (topicRow, error) {
	reviews := t.Reviews
	if reviews == nil {
		reviews = []time.Time{}
	}
	completed := t.Completed
	if completed == nil {
		completed = []int{}
	}
	rj, err := json.Marshal(reviews)
	if err != nil {
		return topicRow{}, fmt.Errorf("encode reviews of %s: %w", t.ID, err)
	}
	cj, err := json.Marshal(completed)
	if err != nil {
		return topicRow{}, fmt.Errorf("encode completed of %s: %w", t.ID, err)
	}
	row := topicRow{
		Position:  pos,
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Notes:     t.Notes,
		Reviews:   string(rj),
		Completed: string(cj),
	}
	if !t.CreatedAt.IsZero() {
		row.CreatedAt = t.CreatedAt.Format(time.RFC3339Nano)
	}
	return row, nil
}

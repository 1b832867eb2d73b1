package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/sales-advisor/internal/advisor"
)

// ErrNotFound marks a lookup for an analysis id that was never recorded.
var ErrNotFound = errors.New("analysis not found")

// Record is one stored analysis: the request, the full response envelope as
// JSON, and run accounting.
type Record struct {
	ID        string    `json:"id" db:"id"`
	RequestID string    `json:"request_id" db:"request_id"`
	Prompt    string    `json:"prompt" db:"prompt"`
	Success   bool      `json:"success" db:"success"`
	ElapsedMS int64     `json:"elapsed_ms" db:"elapsed_ms"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"-"`
}

// Summary is the list view of a record, payload omitted.
type Summary struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Prompt    string    `json:"prompt"`
	Success   bool      `json:"success"`
	ElapsedMS int64     `json:"elapsed_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists analysis runs to SQLite.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	request_id TEXT NOT NULL DEFAULT '',
	prompt     TEXT NOT NULL,
	success    INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
`

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Insert stores one finished analysis and returns its generated id.
func (s *Store) Insert(res advisor.ResponseEnvelope, prompt string) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO analyses (id, request_id, prompt, success, elapsed_ms, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		res.RequestID,
		prompt,
		boolToInt(res.Success),
		res.Metadata.ElapsedMS,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

// Get returns one stored analysis by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`SELECT id, request_id, prompt, success, elapsed_ms, payload, created_at
		FROM analyses WHERE id = ?`, id)
	var rec Record
	var success int
	var createdAt string
	err := row.Scan(&rec.ID, &rec.RequestID, &rec.Prompt, &success, &rec.ElapsedMS, &rec.Payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get analysis: %w", err)
	}
	rec.Success = success != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return rec, nil
}

// ListRecent returns up to limit analyses, newest first, without payloads.
func (s *Store) ListRecent(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, request_id, prompt, success, elapsed_ms, created_at
		FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var success int
		var createdAt string
		if err := rows.Scan(&s.ID, &s.RequestID, &s.Prompt, &success, &s.ElapsedMS, &createdAt); err != nil {
			return nil, err
		}
		s.Success = success != 0
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

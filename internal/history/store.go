package history

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"xtab/internal/utils"
)

// Database schema version
const SchemaVersion = 1

// Store persists the xtab history in a SQLite database so it survives
// editor restarts. The budgeting core never touches the store; it consumes
// the []Entry snapshot a caller loads per request.
type Store struct {
	conn *sql.DB
}

// Open initializes the SQLite database at the given path, creating tables
// if they don't exist.
func Open(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.setup(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	return s, nil
}

func (s *Store) setup() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createHistoryTable := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		doc TEXT NOT NULL,
		kind INTEGER NOT NULL,
		base_text TEXT NOT NULL DEFAULT '',
		replacements TEXT NOT NULL DEFAULT '[]',
		snapshot TEXT NOT NULL DEFAULT '',
		visible TEXT NOT NULL DEFAULT '[]',
		checksum BLOB NOT NULL,
		created INTEGER NOT NULL
	);
	`
	createDocIndex := `
	CREATE INDEX IF NOT EXISTS idx_history_doc ON history (doc, id);
	`
	if _, err := tx.Exec(createHistoryTable); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	if _, err := tx.Exec(createDocIndex); err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Append stores one entry at the end of the history. Viewed entries whose
// content matches the document's latest stored view are skipped, so
// scrolling through an unchanged file does not flood the log.
func (s *Store) Append(e Entry) error {
	checksum := utils.ComputeChecksum([]byte(e.Content()))

	if e.Kind == KindViewed {
		same, err := s.latestViewMatches(e.DocID, checksum)
		if err != nil {
			return err
		}
		if same {
			return nil
		}
	}

	replacements, err := json.Marshal(e.Edit.Replacements)
	if err != nil {
		return fmt.Errorf("failed to encode replacements: %w", err)
	}
	visible, err := json.Marshal(e.VisibleRanges)
	if err != nil {
		return fmt.Errorf("failed to encode visible ranges: %w", err)
	}

	insertSQL := `
		INSERT INTO history (doc, kind, base_text, replacements, snapshot, visible, checksum, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	return s.executeTransaction(insertSQL,
		e.DocID, int(e.Kind), e.BaseText, string(replacements),
		e.Snapshot, string(visible), checksum, e.Time.UnixMilli())
}

func (s *Store) latestViewMatches(docID string, checksum []byte) (bool, error) {
	query := `
		SELECT checksum FROM history
		WHERE doc = ? AND kind = ?
		ORDER BY id DESC LIMIT 1
	`
	var stored []byte
	err := s.conn.QueryRow(query, docID, int(KindViewed)).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to query latest view: %w", err)
	}
	return bytes.Equal(stored, checksum), nil
}

// Recent loads up to limit entries, most-recent-last (storage order). A
// non-positive limit loads everything.
func (s *Store) Recent(limit int) ([]Entry, error) {
	query := `
		SELECT doc, kind, base_text, replacements, snapshot, visible, created
		FROM history ORDER BY id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind int
		var replacements, visible string
		var created int64
		if err := rows.Scan(&e.DocID, &kind, &e.BaseText, &replacements, &e.Snapshot, &visible, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Kind = Kind(kind)
		e.Time = time.UnixMilli(created)
		if err := json.Unmarshal([]byte(replacements), &e.Edit.Replacements); err != nil {
			return nil, fmt.Errorf("failed to decode replacements: %w", err)
		}
		if err := json.Unmarshal([]byte(visible), &e.VisibleRanges); err != nil {
			return nil, fmt.Errorf("failed to decode visible ranges: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	// Rows came newest-first; flip to storage order, most-recent-last.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// PruneBefore deletes entries older than the given time.
func (s *Store) PruneBefore(t time.Time) error {
	return s.executeTransaction(`DELETE FROM history WHERE created < ?;`, t.UnixMilli())
}

// executeTransaction runs a single statement inside a transaction.
func (s *Store) executeTransaction(query string, args ...interface{}) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

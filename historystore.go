// historystore.go: SQLite persistence for context-window message history.
//
// A HistoryStore archives every message a session adds to its context window
// so evicted messages remain queryable later. Windows stay in memory; the
// store is append-mostly and never feeds back into eviction decisions.
package pcc

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// HistoryStore handles SQLite database operations for message archival.
type HistoryStore struct {
	db *sql.DB
}

// HistoryEntry is one archived message row. Seq is the store-assigned
// insertion sequence number, unique per store.
type HistoryEntry struct {
	Seq      int64
	ID       uuid.UUID
	Session  string
	Type     MessageType
	Priority MessagePriority
	Content  string
	Tokens   int
	Added    time.Time
}

// OpenHistoryStore opens (creating if needed) the store at path. Use
// ":memory:" for an ephemeral store.
func OpenHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	s := &HistoryStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history store: %w", err)
	}
	return s, nil
}

func (s *HistoryStore) migrate() error {
	// seq orders rows by insertion; timestamps alone cannot, since messages
	// archived within one clock tick would tie.
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session TEXT NOT NULL,
		type INTEGER NOT NULL,
		priority INTEGER NOT NULL,
		content TEXT NOT NULL,
		tokens INTEGER NOT NULL,
		added INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session);
	CREATE INDEX IF NOT EXISTS idx_messages_session_added ON messages(session, added);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *HistoryStore) Close() error { return s.db.Close() }

// Save archives msg under the given session name.
func (s *HistoryStore) Save(session string, msg *Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (id, session, type, priority, content, tokens, added)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), session, int(msg.Type), int(msg.Priority),
		msg.Content, msg.Tokens, msg.Added.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// Load returns every archived message for session in insertion order.
func (s *HistoryStore) Load(session string) ([]*HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT seq, id, session, type, priority, content, tokens, added
		 FROM messages WHERE session = ? ORDER BY seq`, session)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", session, err)
	}
	defer rows.Close()

	var out []*HistoryEntry
	for rows.Next() {
		var (
			e     HistoryEntry
			rawID string
			mtype int
			mprio int
			nanos int64
		)
		if err := rows.Scan(&e.Seq, &rawID, &e.Session, &mtype, &mprio, &e.Content, &e.Tokens, &nanos); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt message id %q: %w", rawID, err)
		}
		e.ID = id
		e.Type = MessageType(mtype)
		e.Priority = MessagePriority(mprio)
		e.Added = time.Unix(0, nanos).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Sessions lists the distinct session names in the store.
func (s *HistoryStore) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT session FROM messages ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Purge deletes all archived messages for session and returns how many rows
// were removed.
func (s *HistoryStore) Purge(session string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM messages WHERE session = ?`, session)
	if err != nil {
		return 0, fmt.Errorf("purge session %q: %w", session, err)
	}
	return res.RowsAffected()
}

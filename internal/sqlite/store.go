package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"

	"github.com/cwrk-planet/underbyte/internal/domain"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store keeps rooms and messages in a single SQLite file. It implements both
// repositories the services need.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and creates the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := "file:" + filepath.ToSlash(path) + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			room_code TEXT PRIMARY KEY,
			host_name TEXT NOT NULL,
			guest_name TEXT,
			room_timeout TEXT NOT NULL,
			message_timer TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting'
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_code TEXT NOT NULL REFERENCES rooms(room_code) ON DELETE CASCADE,
			sender_name TEXT NOT NULL,
			content TEXT,
			file_url TEXT,
			file_type TEXT,
			timestamp INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS messages_room_ts_idx ON messages(room_code, timestamp, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (room_code, host_name, guest_name, room_timeout, message_timer, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.Code, room.HostName, room.GuestName, room.RoomTimeout, room.MessageTimer, room.CreatedAt, string(room.Status))
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return domain.ErrRoomExists
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, code string) (*domain.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT room_code, host_name, guest_name, room_timeout, message_timer, created_at, status
		FROM rooms WHERE room_code = ?`, code)
	return scanRoom(row)
}

func (s *Store) SetGuest(ctx context.Context, code, guest string, status domain.RoomStatus) (*domain.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE rooms SET guest_name = ?, status = ?
		WHERE room_code = ?
		RETURNING room_code, host_name, guest_name, room_timeout, message_timer, created_at, status`,
		guest, string(status), code)
	return scanRoom(row)
}

func (s *Store) Delete(ctx context.Context, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE room_code = ?`, code); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE room_code = ?`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRoomNotFound
	}
	return tx.Commit()
}

func (s *Store) Save(ctx context.Context, m *domain.Message) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (room_code, sender_name, content, file_url, file_type, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.RoomCode, m.SenderName, m.Content, m.FileURL, m.FileType, m.Timestamp)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (s *Store) ListByRoom(ctx context.Context, code string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_code, sender_name, content, file_url, file_type, timestamp
		FROM messages
		WHERE room_code = ?
		ORDER BY timestamp ASC, id ASC`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, 32)
	for rows.Next() {
		var (
			m                          domain.Message
			content, fileURL, fileType sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.RoomCode, &m.SenderName, &content, &fileURL, &fileType, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Content = nullable(content)
		m.FileURL = nullable(fileURL)
		m.FileType = nullable(fileType)
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanRoom(row *sql.Row) (*domain.Room, error) {
	var (
		rm     domain.Room
		guest  sql.NullString
		status string
	)
	err := row.Scan(&rm.Code, &rm.HostName, &guest, &rm.RoomTimeout, &rm.MessageTimer, &rm.CreatedAt, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	rm.GuestName = nullable(guest)
	rm.Status = domain.RoomStatus(status)
	return &rm, nil
}

// isConstraint reports whether err is a SQLite error with one of the
// extended result codes.
func isConstraint(err error, codes ...int) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.Code() == c {
			return true
		}
	}
	return false
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

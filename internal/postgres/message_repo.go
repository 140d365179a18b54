package postgres

import (
	"context"

	"github.com/cwrk-planet/underbyte/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save inserts m and fills in its ID.
func (r *MessageRepository) Save(ctx context.Context, m *domain.Message) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO messages (room_code, sender_name, content, file_url, file_type, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		m.RoomCode, m.SenderName, m.Content, m.FileURL, m.FileType, m.Timestamp).Scan(&m.ID)
}

func (r *MessageRepository) ListByRoom(ctx context.Context, code string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_code, sender_name, content, file_url, file_type, timestamp
		FROM messages
		WHERE room_code=$1
		ORDER BY timestamp ASC, id ASC`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, 32)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomCode, &m.SenderName, &m.Content, &m.FileURL, &m.FileType, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

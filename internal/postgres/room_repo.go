package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/underbyte/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (room_code, host_name, guest_name, room_timeout, message_timer, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.Code, room.HostName, room.GuestName, room.RoomTimeout, room.MessageTimer, room.CreatedAt, room.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrRoomExists
		}
		return err
	}
	return nil
}

func (r *RoomRepository) Get(ctx context.Context, code string) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `
		SELECT room_code, host_name, guest_name, room_timeout, message_timer, created_at, status
		FROM rooms WHERE room_code=$1`, code)
	return scanRoom(row)
}

// SetGuest records the guest and status and returns the updated room.
func (r *RoomRepository) SetGuest(ctx context.Context, code, guest string, status domain.RoomStatus) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE rooms SET guest_name=$2, status=$3
		WHERE room_code=$1
		RETURNING room_code, host_name, guest_name, room_timeout, message_timer, created_at, status`,
		code, guest, status)
	return scanRoom(row)
}

// Delete removes the room and its messages in one transaction.
func (r *RoomRepository) Delete(ctx context.Context, code string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE room_code=$1`, code); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM rooms WHERE room_code=$1`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return tx.Commit(ctx)
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(&rm.Code, &rm.HostName, &rm.GuestName, &rm.RoomTimeout, &rm.MessageTimer, &rm.CreatedAt, &rm.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, code string) (*domain.Room, error)
	SetGuest(ctx context.Context, code, guest string, status domain.RoomStatus) (*domain.Room, error)
	Delete(ctx context.Context, code string) error
}

type MessageRepository interface {
	Save(ctx context.Context, m *domain.Message) error
	ListByRoom(ctx context.Context, code string) ([]domain.Message, error)
}

// Broadcaster receives an event after the change it describes is committed.
type Broadcaster interface {
	Broadcast(roomCode string, ev domain.Event)
}

func nowMillis() int64 { return time.Now().UnixMilli() }

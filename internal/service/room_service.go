package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

type RoomService struct {
	roomRepo RoomRepository
	bus      Broadcaster
	now      func() int64
}

func NewRoomService(roomRepo RoomRepository, bus Broadcaster) *RoomService {
	return &RoomService{roomRepo: roomRepo, bus: bus, now: nowMillis}
}

type CreateRoomInput struct {
	Code         string
	HostName     string
	GuestName    *string
	RoomTimeout  string
	MessageTimer string
	CreatedAt    int64
	Status       domain.RoomStatus
}

// CreateRoom stores a new room. The code is chosen by the client.
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*domain.Room, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.HostName = strings.TrimSpace(in.HostName)
	if in.Code == "" || in.HostName == "" {
		return nil, fmt.Errorf("%w: roomCode and hostName are required", domain.ErrInvalidInput)
	}

	room := &domain.Room{
		Code:         in.Code,
		HostName:     in.HostName,
		GuestName:    in.GuestName,
		RoomTimeout:  in.RoomTimeout,
		MessageTimer: in.MessageTimer,
		CreatedAt:    in.CreatedAt,
		Status:       in.Status,
	}
	if room.CreatedAt <= 0 {
		room.CreatedAt = s.now()
	}
	// status is free-form; only the default is imposed
	if room.Status == "" {
		room.Status = domain.RoomWaiting
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	return room, nil
}

// GetRoom returns the current room record. It also serves websocket hydration.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	room, err := s.roomRepo.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("roomRepo.Get: %w", err)
	}
	return room, nil
}

// DeleteRoom removes the room with its messages, then tells connected members.
func (s *RoomService) DeleteRoom(ctx context.Context, code string) error {
	if err := s.roomRepo.Delete(ctx, code); err != nil {
		return fmt.Errorf("roomRepo.Delete: %w", err)
	}
	s.bus.Broadcast(code, domain.RoomDeletedEvent())
	return nil
}

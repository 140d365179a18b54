package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

type ChatService struct {
	roomRepo RoomRepository
	msgRepo  MessageRepository
	bus      Broadcaster
	now      func() int64
}

func NewChatService(roomRepo RoomRepository, msgRepo MessageRepository, bus Broadcaster) *ChatService {
	return &ChatService{roomRepo: roomRepo, msgRepo: msgRepo, bus: bus, now: nowMillis}
}

type SendInput struct {
	SenderName string
	Content    *string
	FileURL    *string
	FileType   *string
	Timestamp  int64
}

// Send stores a message in an existing room and broadcasts it as new_message.
func (s *ChatService) Send(ctx context.Context, code string, in SendInput) (*domain.Message, error) {
	if _, err := s.roomRepo.Get(ctx, code); err != nil {
		return nil, fmt.Errorf("roomRepo.Get: %w", err)
	}

	// Body fields are all optional; a message may carry only its sender.
	if strings.TrimSpace(in.SenderName) == "" {
		return nil, fmt.Errorf("%w: senderName is required", domain.ErrInvalidInput)
	}

	m := &domain.Message{
		RoomCode:   code,
		SenderName: in.SenderName,
		Content:    in.Content,
		FileURL:    in.FileURL,
		FileType:   in.FileType,
		Timestamp:  in.Timestamp,
	}
	if m.Timestamp <= 0 {
		m.Timestamp = s.now()
	}
	if err := s.msgRepo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("msgRepo.Save: %w", err)
	}

	s.bus.Broadcast(code, domain.NewMessageEvent(*m))
	return m, nil
}

// History returns the room's messages oldest first. Unknown rooms yield an empty list.
func (s *ChatService) History(ctx context.Context, code string) ([]domain.Message, error) {
	return s.msgRepo.ListByRoom(ctx, code)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

type MemberService struct {
	roomRepo RoomRepository
	bus      Broadcaster
}

func NewMemberService(roomRepo RoomRepository, bus Broadcaster) *MemberService {
	return &MemberService{roomRepo: roomRepo, bus: bus}
}

// JoinRoom records guestName as the room's guest, activates the room and
// broadcasts the updated record. A later join replaces the guest.
func (s *MemberService) JoinRoom(ctx context.Context, code, guestName string) (*domain.Room, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, fmt.Errorf("%w: guest_name is required", domain.ErrInvalidInput)
	}

	room, err := s.roomRepo.SetGuest(ctx, code, guestName, domain.RoomActive)
	if err != nil {
		return nil, fmt.Errorf("roomRepo.SetGuest: %w", err)
	}

	s.bus.Broadcast(code, domain.RoomUpdateEvent(*room))
	return room, nil
}

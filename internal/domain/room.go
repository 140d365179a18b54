package domain

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
	RoomExpired RoomStatus = "expired"
)

// Room is shared by a host and at most one guest. Field names follow the
// client-facing JSON shape, which is also the payload of room_update events.
type Room struct {
	Code         string     `json:"roomCode" db:"room_code"`
	HostName     string     `json:"hostName" db:"host_name"`
	GuestName    *string    `json:"guestName" db:"guest_name"`
	RoomTimeout  string     `json:"roomTimeout" db:"room_timeout"`
	MessageTimer string     `json:"messageTimer" db:"message_timer"`
	CreatedAt    int64      `json:"createdAt" db:"created_at"` // unix ms
	Status       RoomStatus `json:"status" db:"status"`
}

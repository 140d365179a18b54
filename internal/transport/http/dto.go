package http

import "github.com/cwrk-planet/underbyte/internal/domain"

type CreateRoomRequest struct {
	RoomCode     string            `json:"roomCode"`
	HostName     string            `json:"hostName"`
	GuestName    *string           `json:"guestName"`
	RoomTimeout  string            `json:"roomTimeout"`
	MessageTimer string            `json:"messageTimer"`
	CreatedAt    int64             `json:"createdAt"`
	Status       domain.RoomStatus `json:"status"`
}

type SendMessageRequest struct {
	SenderName string  `json:"senderName"`
	Content    *string `json:"content"`
	FileURL    *string `json:"fileUrl"`
	FileType   *string `json:"fileType"`
	Timestamp  int64   `json:"timestamp"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

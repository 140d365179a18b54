package domain

type Message struct {
	ID         int64   `json:"id" db:"id"`
	RoomCode   string  `json:"roomCode" db:"room_code"`
	SenderName string  `json:"senderName" db:"sender_name"`
	Content    *string `json:"content" db:"content"`
	FileURL    *string `json:"fileUrl" db:"file_url"`
	FileType   *string `json:"fileType" db:"file_type"`
	Timestamp  int64   `json:"timestamp" db:"timestamp"` // unix ms
}

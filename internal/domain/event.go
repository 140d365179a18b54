package domain

type EventType string

const (
	EventRoomUpdate  EventType = "room_update"
	EventNewMessage  EventType = "new_message"
	EventRoomDeleted EventType = "room_deleted"
)

// Event is what gets pushed to room members. Data is forwarded as is.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

func RoomUpdateEvent(r Room) Event {
	return Event{Type: EventRoomUpdate, Data: r}
}

func NewMessageEvent(m Message) Event {
	return Event{Type: EventNewMessage, Data: m}
}

func RoomDeletedEvent() Event {
	return Event{Type: EventRoomDeleted, Data: struct{}{}}
}

package history

import (
	"time"

	"github.com/myce/chatpager/internal/pager"
)

type Message struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID length
	RoomID    string    `gorm:"size:64;not null;index:idx_room_sent,priority:1" json:"room_id"`
	Sender    string    `gorm:"size:64;not null" json:"sender"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	SentAt    time.Time `gorm:"not null;index:idx_room_sent,priority:2" json:"sent_at"`
	CreatedAt time.Time `json:"-"`
}

func (Message) TableName() string { return "room_messages" }

// Wire converts a stored message to the shape the pager consumes.
func (m Message) Wire() pager.Message {
	return pager.Message{
		ID:     m.ID,
		RoomID: m.RoomID,
		Sender: m.Sender,
		Body:   m.Body,
		Read:   m.Read,
		SentAt: m.SentAt,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ConversationID string    `gorm:"size:36;index:idx_messages_conversation_created,priority:1;not null"`
	SenderID       uint      `gorm:"index;not null"`
	Sender         User      `gorm:"foreignKey:SenderID"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created,priority:2"`
}

// BeforeCreate assigns a UUIDv7 id. v7 ids sort by creation time and are
// monotonic within the process, which breaks created_at ties in insert order.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	m.ID = id.String()
	return nil
}

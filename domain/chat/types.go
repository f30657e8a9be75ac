package chat

import "time"

// DefaultRoom is the room a message belongs to when none is given.
const DefaultRoom = "general"

// Message represents a room chat message. Immutable once created.
type Message struct {
	ID     string    `gorm:"primarykey;size:36" json:"id"`
	Author string    `gorm:"size:50;not null;index" json:"user"`
	Body   string    `gorm:"size:5000;not null" json:"message"`
	Room   string    `gorm:"size:100;not null;default:general;index" json:"room"`
	SentAt time.Time `gorm:"index" json:"timestamp"`
}

// TableName returns the table name for Message.
func (Message) TableName() string {
	return "chat_messages"
}

// PrivateMessage represents a direct message between two users.
// Immutable after creation except for the Read flag.
type PrivateMessage struct {
	ID       string    `gorm:"primarykey;size:36" json:"id"`
	Sender   string    `gorm:"size:50;not null;index" json:"sender"`
	Receiver string    `gorm:"size:50;not null;index" json:"receiver"`
	Body     string    `gorm:"size:5000;not null" json:"message"`
	SentAt   time.Time `gorm:"index" json:"timestamp"`
	Read     bool      `gorm:"not null;default:false" json:"read"`
}

// TableName returns the table name for PrivateMessage.
func (PrivateMessage) TableName() string {
	return "private_messages"
}

// RosterEntry is one user in the published online roster.
type RosterEntry struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

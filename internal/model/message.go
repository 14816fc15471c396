package model

import "time"

// MessageType classifies an admin broadcast.
type MessageType string

const (
	MessageInfo    MessageType = "info"
	MessageWarning MessageType = "warning"
	MessageUpdate  MessageType = "update"
)

// AdminMessage is a platform-wide notice. The log is append-only.
type AdminMessage struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MessageDraft is the input for a broadcast.
type MessageDraft struct {
	Title   string      `validate:"required,max=200"`
	Content string      `validate:"required,max=5000"`
	Type    MessageType `validate:"oneof=info warning update"`
}

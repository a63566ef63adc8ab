package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMessageEmpty = errors.New("message empty")

// ChatMessage is immutable once created. Ordering is defined by append
// order in the session store; the timestamp is informational only.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   UserID    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChatMessage(sender *User, content string) (ChatMessage, error) {
	if len(content) == 0 {
		return ChatMessage{}, ErrMessageEmpty
	}
	return ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    content,
		Timestamp:  time.Now(),
	}, nil
}

package models

import "time"

// Message is one immutable chat message between two users.
// At least one of Text or AttachmentRef is non-empty.
type Message struct {
	ID            string    `json:"_id"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	Text          string    `json:"text,omitempty"`
	AttachmentRef string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Involves reports whether the message belongs to the conversation {a, b}.
func (m *Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

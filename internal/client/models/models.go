// Package models holds the wire and cache shapes the CLI works with.
package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Session is what the CLI keeps between runs.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type EventType string

const (
	EventPresenceChanged EventType = "presence-changed"
	EventMessageReceived EventType = "message-received"
)

// Event is one server push. Payload is decoded by the caller according
// to Type.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Online decodes a presence-changed payload.
func (e Event) Online() ([]string, error) {
	var ids []string
	if err := json.Unmarshal(e.Payload, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Message decodes a message-received payload.
func (e Event) Message() (*Message, error) {
	var m Message
	if err := json.Unmarshal(e.Payload, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

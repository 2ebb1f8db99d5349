package chat

import "time"

// Author roles beyond the account roles.
const (
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry in a channel's append-only log. Ordering within a
// (channel, classId) partition is timestamp-monotonic as observed by this
// client; messages are never reordered or deleted once confirmed.
type Message struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	ClassID   string    `json:"classId"`
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

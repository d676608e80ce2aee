package convo

import (
	"strings"
	"time"
)

// Message roles as understood by chat completion backends.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transcript renders the non-system portion of a history as the
// "role: content" lines recorded at session end. A history holding only
// the system prompt renders to the empty string.
func Transcript(history []Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		if msg.Role == RoleSystem {
			continue
		}
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

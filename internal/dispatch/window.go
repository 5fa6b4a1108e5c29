package dispatch

import "strings"

// Conversation window bounds. Access is strictly sequential per caller,
// so plain FIFO eviction is enough.
const (
	maxExchanges = 5
	maxMessages  = maxExchanges * 2
)

// Message is one turn in a retained conversation.
type Message struct {
	Role    string
	Content string
}

// ConversationWindow is an optional rolling window of recent exchanges,
// owned by the caller that passes it on requests. It keeps at most the
// 5 most recent exchanges (10 messages); the oldest are evicted first.
type ConversationWindow struct {
	messages []Message
}

// NewConversationWindow creates an empty window.
func NewConversationWindow() *ConversationWindow {
	return &ConversationWindow{}
}

// AddExchange records a prompt/response pair, evicting the oldest
// exchange once the cap is reached.
func (w *ConversationWindow) AddExchange(prompt, response string) {
	w.messages = append(w.messages,
		Message{Role: "user", Content: prompt},
		Message{Role: "assistant", Content: response},
	)
	if len(w.messages) > maxMessages {
		w.messages = w.messages[len(w.messages)-maxMessages:]
	}
}

// Messages returns the retained messages, oldest first.
func (w *ConversationWindow) Messages() []Message {
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Len reports the number of retained messages.
func (w *ConversationWindow) Len() int { return len(w.messages) }

// Render prepends the retained conversation to prompt as plain text.
func (w *ConversationWindow) Render(prompt string) string {
	if len(w.messages) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range w.messages {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(prompt)
	return b.String()
}

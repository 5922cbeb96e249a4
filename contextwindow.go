// contextwindow.go: conversation-history manager with a token budget.
//
// This utility is independent of the compiler pipeline: it keeps an ordered
// list of chat messages and evicts old ones when the estimated token total
// exceeds the window's budget. Eviction runs in priority tiers, oldest first
// within a tier: low-priority messages go first, then normal, then high.
// Token counts are a byte-length estimate (four bytes per token, rounded up),
// not a model-accurate tokenization.
package pcc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// tokenEstimationRatio is the assumed bytes-per-token for budget accounting.
const tokenEstimationRatio = 4

// EstimateTokens returns the token estimate for text: ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + tokenEstimationRatio - 1) / tokenEstimationRatio
}

// MessageType identifies the speaker of a message.
type MessageType int

const (
	MessageUser MessageType = iota
	MessageAssistant
	MessageSystem
	MessageTool
)

func (t MessageType) String() string {
	switch t {
	case MessageUser:
		return "User"
	case MessageAssistant:
		return "Assistant"
	case MessageSystem:
		return "System"
	case MessageTool:
		return "Tool"
	default:
		return "Unknown"
	}
}

// MessagePriority orders messages for eviction.
type MessagePriority int

const (
	PriorityLow MessagePriority = iota
	PriorityNormal
	PriorityHigh
)

func (p MessagePriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Message is one entry in the window.
type Message struct {
	ID       uuid.UUID
	Type     MessageType
	Priority MessagePriority
	Content  string
	Tokens   int
	Added    time.Time
}

// ContextWindow holds messages in arrival order under a token budget.
type ContextWindow struct {
	messages  []*Message
	maxTokens int
	total     int
}

// NewContextWindow creates a window with the given token budget.
func NewContextWindow(maxTokens int) *ContextWindow {
	return &ContextWindow{maxTokens: maxTokens}
}

// AddMessage appends a message, evicting older messages if the budget would
// be exceeded. It returns the stored message, or an error when the message
// alone is larger than the whole budget.
func (w *ContextWindow) AddMessage(mt MessageType, prio MessagePriority, content string) (*Message, error) {
	msg := &Message{
		ID:       uuid.New(),
		Type:     mt,
		Priority: prio,
		Content:  content,
		Tokens:   EstimateTokens(content),
		Added:    time.Now(),
	}

	// Reject before evicting anything: a message that can never fit must not
	// destroy the existing history.
	if msg.Tokens > w.maxTokens {
		return nil, fmt.Errorf("message of %d tokens exceeds window budget %d",
			msg.Tokens, w.maxTokens)
	}

	if w.total+msg.Tokens > w.maxTokens {
		if !w.compress(msg.Tokens) {
			// Last resort: drop oldest regardless of priority.
			for len(w.messages) > 0 && w.total+msg.Tokens > w.maxTokens {
				w.removeAt(0)
			}
		}
	}

	w.messages = append(w.messages, msg)
	w.total += msg.Tokens
	return msg, nil
}

// compress evicts messages tier by tier until incoming tokens fit. Reports
// whether the budget was met.
func (w *ContextWindow) compress(incoming int) bool {
	for _, tier := range []MessagePriority{PriorityLow, PriorityNormal, PriorityHigh} {
		i := 0
		for i < len(w.messages) && w.total+incoming > w.maxTokens {
			if w.messages[i].Priority == tier {
				w.removeAt(i)
				continue
			}
			i++
		}
		if w.total+incoming <= w.maxTokens {
			return true
		}
	}
	return w.total+incoming <= w.maxTokens
}

func (w *ContextWindow) removeAt(i int) {
	w.total -= w.messages[i].Tokens
	w.messages = append(w.messages[:i], w.messages[i+1:]...)
}

// Remove deletes the message with the given id. Reports whether it existed.
func (w *ContextWindow) Remove(id uuid.UUID) bool {
	for i, msg := range w.messages {
		if msg.ID == id {
			w.removeAt(i)
			return true
		}
	}
	return false
}

// Context renders the window as "Type: content" lines in arrival order.
func (w *ContextWindow) Context() string {
	var b strings.Builder
	for _, msg := range w.messages {
		b.WriteString(msg.Type.String())
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Messages returns the live message list in arrival order. Callers must not
// mutate it.
func (w *ContextWindow) Messages() []*Message { return w.messages }

// MessageCount returns the number of messages currently held.
func (w *ContextWindow) MessageCount() int { return len(w.messages) }

// TokenCount returns the current estimated token total.
func (w *ContextWindow) TokenCount() int { return w.total }

// MaxTokens returns the window's budget.
func (w *ContextWindow) MaxTokens() int { return w.maxTokens }

// Stats returns a human-readable usage summary.
func (w *ContextWindow) Stats() string {
	return fmt.Sprintf("messages: %d, tokens: %d/%d, remaining: %d",
		len(w.messages), w.total, w.maxTokens, w.maxTokens-w.total)
}

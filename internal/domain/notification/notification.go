package notification

import "context"

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeDanger  Type = "danger"
)

// Message is what a connected client receives when something about its
// application changes.
type Message struct {
	UserID    uint64 `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      Type   `json:"type"`
	ActionURL string `json:"action_url,omitempty"`
}

// Sink delivers messages. Implementations are best effort.
type Sink interface {
	Notify(ctx context.Context, m Message) error
}

// Inbox lists the most recent messages delivered to a user.
type Inbox interface {
	Recent(ctx context.Context, userID uint64, limit int) ([]Message, error)
}

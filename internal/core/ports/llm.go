package ports

import "context"

// Chat roles accepted by OpenAI-compatible completion APIs.
const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// ChatMessage is a single turn of a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter sends a chat completion request to a language model and
// returns the assistant reply. Implementations own model selection,
// temperature and transport concerns.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

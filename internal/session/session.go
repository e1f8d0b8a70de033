// Package session holds per-client conversational state keyed by an opaque
// session identifier.
package session

// Role values as the external model service reports them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one text fragment of a conversation turn.
type Part struct {
	Text string `json:"text"`
}

// Turn is one message in the conversation history. Ordering is chronological
// and must round-trip through the model client unchanged.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTurn builds a single-part turn.
func NewTurn(role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}

// Session is the server-held conversation state for one client.
type Session struct {
	History           []Turn `json:"chat_history"`
	SystemInstruction string `json:"system_instruction,omitempty"`
	SystemSent        bool   `json:"system_sent"`
}

// New returns an empty session.
func New() *Session {
	return &Session{History: []Turn{}}
}

// EnsureSystemInstruction sets the system instruction if it has not been
// computed yet. Idempotent after the first call.
func (s *Session) EnsureSystemInstruction(text string) {
	if s.SystemInstruction == "" {
		s.SystemInstruction = text
	}
}

// MarkSystemSent records that the system instruction went to the model.
func (s *Session) MarkSystemSent() {
	s.SystemSent = true
}

// ReplaceHistory swaps the stored history for the model client's latest
// serialized view after an exchange.
func (s *Session) ReplaceHistory(turns []Turn) {
	s.History = turns
}

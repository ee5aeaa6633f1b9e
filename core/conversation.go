package core

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Message roles. Only these two appear in a conversation transcript; system
// and tool traffic is recorded elsewhere (tool traces, turn records).
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Message is a single transcript entry. Attachments are opaque URLs carried
// verbatim; the core never fetches or interprets them.
type Message struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Attachments []string  `json:"attachments,omitempty"`
}

// NewMessage constructs a transcript entry with a fresh id and UTC timestamp.
func NewMessage(role, content string, attachments []string) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Timestamp:   time.Now().UTC(),
		Attachments: attachments,
	}
}

// CustomerInfo holds the contact/identity fields workflows act on behalf of.
type CustomerInfo struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// Validate reports whether the identity fields required before any
// account-affecting action are present and well formed. A failure here is the
// ValidationFailure of the error taxonomy: the owning workflow escalates with
// reason "missing_required_field" rather than guessing.
func (c CustomerInfo) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
	)
}

// EscalationSummary is written exactly once, on the first escalation, and is
// immutable thereafter.
type EscalationSummary struct {
	Reason            string    `json:"reason"`
	Context           string    `json:"context"`
	RecommendedAction string    `json:"recommended_action"`
	Timestamp         time.Time `json:"timestamp"`
}

// AgentTurnRecord is the audit entry appended whenever a workflow takes
// ownership of a turn. ToolTraces accumulates every traced action call made
// while that workflow (or a workflow it delegated to) held the turn.
type AgentTurnRecord struct {
	ID           string      `json:"id"`
	Agent        string      `json:"agent"`
	Intent       string      `json:"intent"`
	WorkflowStep string      `json:"workflow_step"`
	ToolTraces   []ToolTrace `json:"tool_traces"`
	Timestamp    time.Time   `json:"timestamp"`
}

// ConversationState is the root aggregate, one document per conversation id.
// It is mutated exactly once per inbound message, by the turn orchestrator,
// inside the store's per-id critical section. Once IsEscalated is true the
// only permitted mutations are appending the canned notice to Messages and
// bumping UpdatedAt.
type ConversationState struct {
	ConversationID   string             `json:"conversation_id"`
	CustomerInfo     CustomerInfo       `json:"customer_info"`
	Messages         []Message          `json:"messages"`
	Intent           string             `json:"intent,omitempty"`
	RoutedAgent      string             `json:"routed_agent,omitempty"`
	CurrentWorkflow  string             `json:"current_workflow,omitempty"`
	WorkflowStep     string             `json:"workflow_step,omitempty"`
	InternalData     map[string]any     `json:"internal_data"`
	Slots            map[string]string  `json:"slots"`
	AgentTurnHistory []AgentTurnRecord  `json:"agent_turn_history"`
	IsEscalated      bool               `json:"is_escalated"`
	Escalation       *EscalationSummary `json:"escalation_summary,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewConversationState returns the default document created on the first
// message for a new id.
func NewConversationState(id string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ConversationID:   id,
		Messages:         []Message{},
		InternalData:     map[string]any{},
		Slots:            map[string]string{},
		AgentTurnHistory: []AgentTurnRecord{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AppendMessage adds a transcript entry and bumps UpdatedAt.
func (s *ConversationState) AppendMessage(m Message) {
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now().UTC()
}

// LastUserMessage returns the most recent user entry, or a zero Message and
// false when the transcript has none.
func (s *ConversationState) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// BeginAgentTurn appends the audit record for the workflow owning this turn
// and returns its index so the orchestrator can attach traces on completion.
func (s *ConversationState) BeginAgentTurn(agent, intent, step string) int {
	s.AgentTurnHistory = append(s.AgentTurnHistory, AgentTurnRecord{
		ID:           uuid.NewString(),
		Agent:        agent,
		Intent:       intent,
		WorkflowStep: step,
		ToolTraces:   []ToolTrace{},
		Timestamp:    time.Now().UTC(),
	})
	return len(s.AgentTurnHistory) - 1
}

// GetInternal returns a workflow-private decision value.
func (s *ConversationState) GetInternal(key string) (any, bool) {
	v, ok := s.InternalData[key]
	return v, ok
}

// SetInternal stores a workflow-private decision value.
func (s *ConversationState) SetInternal(key string, v any) {
	s.InternalData[key] = v
	s.UpdatedAt = time.Now().UTC()
}

// IntInternal reads an internal counter, tolerating the float64 shape such
// values take after a JSON round-trip.
func (s *ConversationState) IntInternal(key string) int {
	switch v := s.InternalData[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Slot returns a named extracted field.
func (s *ConversationState) Slot(name string) (string, bool) {
	v, ok := s.Slots[name]
	return v, ok
}

// SetSlot records a structured field extracted from conversation text.
func (s *ConversationState) SetSlot(name, value string) {
	s.Slots[name] = value
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy safe for independent mutation. The store hands
// clones to callers so a failed turn can never corrupt the committed document.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m
		if m.Attachments != nil {
			c.Messages[i].Attachments = append([]string(nil), m.Attachments...)
		}
	}
	c.InternalData = make(map[string]any, len(s.InternalData))
	for k, v := range s.InternalData {
		c.InternalData[k] = v
	}
	c.Slots = make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	c.AgentTurnHistory = make([]AgentTurnRecord, len(s.AgentTurnHistory))
	for i, r := range s.AgentTurnHistory {
		c.AgentTurnHistory[i] = r
		c.AgentTurnHistory[i].ToolTraces = append([]ToolTrace(nil), r.ToolTraces...)
	}
	if s.Escalation != nil {
		esc := *s.Escalation
		c.Escalation = &esc
	}
	return &c
}

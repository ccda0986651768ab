package services

import (
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// ConversationSession is the append-only history of one agent run plus its step
// counter. It is owned by a single AgentLoop.Run call and never shared.
type ConversationSession struct {
	turns []domain.ConversationTurn
	steps int
	now   func() time.Time
}

// NewConversationSession seeds a session with the user's message.
func NewConversationSession(userMessage string) *ConversationSession {
	s := &ConversationSession{now: time.Now}
	s.Append(domain.UserTurn(userMessage))
	return s
}

// Append stamps the turn with its sequence position and adds it to the history.
func (s *ConversationSession) Append(turn domain.ConversationTurn) domain.ConversationTurn {
	turn.Seq = len(s.turns)
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now().UTC()
	}
	s.turns = append(s.turns, turn)
	return turn
}

// History returns a copy of the turns in insertion order.
func (s *ConversationSession) History() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *ConversationSession) Steps() int {
	return s.steps
}

// CompleteStep records one finished reasoning cycle.
func (s *ConversationSession) CompleteStep() {
	s.steps++
}

// LastSuccessfulResult returns the most recent successful tool result, if any.
func (s *ConversationSession) LastSuccessfulResult() (domain.ToolResult, bool) {
	for i := len(s.turns) - 1; i >= 0; i-- {
		t := s.turns[i]
		if t.Kind == domain.TurnToolResult && t.Result != nil && t.Result.Success {
			return *t.Result, true
		}
	}
	return domain.ToolResult{}, false
}

package domain

import (
	"fmt"
	"time"
)

type FollowUpStrategy string

const (
	StrategyAggressiveNurture       FollowUpStrategy = "aggressive_nurture"
	StrategyStandardProfessional    FollowUpStrategy = "standard_professional"
	StrategyConservativePersistence FollowUpStrategy = "conservative_persistence"
	StrategyMinimalTouch            FollowUpStrategy = "minimal_touch"
)

type MessageType string

const (
	MessageThankYou         MessageType = "thank_you"
	MessageReferenceRequest MessageType = "reference_request"
	MessagePositionInquiry  MessageType = "position_inquiry"
	MessageValueAdd         MessageType = "value_add"
)

type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageSent      MessageStatus = "sent"
	MessageCancelled MessageStatus = "cancelled"
	MessageFailed    MessageStatus = "failed"
)

// FollowUpMessage es un mensaje planificado; el host lo envia en ScheduledAt.
type FollowUpMessage struct {
	ID              string            `json:"id"`
	CandidateID     string            `json:"candidate_id,omitempty"`
	SessionID       string            `json:"session_id"`
	Sequence        int               `json:"sequence"`
	Type            MessageType       `json:"type"`
	ScheduledAt     time.Time         `json:"scheduled_at"`
	SubjectTemplate string            `json:"subject_template"`
	BodyTemplate    string            `json:"body_template"`
	Variables       map[string]string `json:"variables,omitempty"`
	Recipient       string            `json:"recipient,omitempty"`
	Status          MessageStatus     `json:"status"`
	SentAt          *time.Time        `json:"sent_at,omitempty"`
	ReceiptID       string            `json:"receipt_id,omitempty"`
	Attempts        int               `json:"attempts,omitempty"`
	NextAttemptAt   *time.Time        `json:"next_attempt_at,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
}

// Ready indica si el mensaje pending puede intentarse en now.
func (m FollowUpMessage) Ready(now time.Time) bool {
	if m.Status != MessagePending || m.ScheduledAt.After(now) {
		return false
	}
	return m.NextAttemptAt == nil || !m.NextAttemptAt.After(now)
}

// RecordFailure suma un intento fallido. Al llegar a maxAttempts el mensaje pasa a
// failed y deja de ser elegible; antes queda pending hasta retryAt.
func (m FollowUpMessage) RecordFailure(reason string, retryAt time.Time, maxAttempts int) (FollowUpMessage, error) {
	if m.Status != MessagePending {
		return m, fmt.Errorf("message %s: cannot record failure on %s", m.ID, m.Status)
	}
	m.Attempts++
	m.LastError = reason
	if m.Attempts >= maxAttempts {
		m.Status = MessageFailed
		m.NextAttemptAt = nil
		return m, nil
	}
	next := retryAt.UTC()
	m.NextAttemptAt = &next
	return m, nil
}

// MarkSent solo es valido desde pending.
func (m FollowUpMessage) MarkSent(receiptID string, at time.Time) (FollowUpMessage, error) {
	if m.Status != MessagePending {
		return m, fmt.Errorf("message %s: cannot mark %s as sent", m.ID, m.Status)
	}
	sentAt := at.UTC()
	m.Status = MessageSent
	m.SentAt = &sentAt
	m.ReceiptID = receiptID
	return m, nil
}

func (m FollowUpMessage) Cancel() (FollowUpMessage, error) {
	if m.Status != MessagePending {
		return m, fmt.Errorf("message %s: cannot cancel %s", m.ID, m.Status)
	}
	m.Status = MessageCancelled
	return m, nil
}

// FollowUpPlan agrupa la secuencia generada y su estrategia.
type FollowUpPlan struct {
	Strategy           FollowUpStrategy  `json:"strategy"`
	Messages           []FollowUpMessage `json:"messages"`
	ConsciousnessScore float64           `json:"consciousness_score"`
	HarmonyScore       float64           `json:"harmony_score"`
}

// DeliveryReceipt es la confirmacion del Communication Sender.
type DeliveryReceipt struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

package domain

import (
	"fmt"
	"time"
)

type Stage string

const (
	StageInitial   Stage = "initial"
	StageTechnical Stage = "technical"
	StageFinal     Stage = "final"
	StageExecutive Stage = "executive"
)

type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionCompleted   SessionStatus = "completed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionRescheduled SessionStatus = "rescheduled"
)

// Terminal indica si el estado ya no admite transiciones.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// InterviewSession es una ronda de entrevista programada.
type InterviewSession struct {
	ID                string        `json:"id"`
	ApplicationID     string        `json:"application_id"`
	Stage             Stage         `json:"stage"`
	Type              string        `json:"type"`
	DurationMinutes   int           `json:"duration_minutes"`
	ScheduledAt       time.Time     `json:"scheduled_at"`
	Platform          string        `json:"platform"`
	Status            SessionStatus `json:"status"`
	InterviewerName   string        `json:"interviewer_name,omitempty"`
	RescheduleHistory []time.Time   `json:"reschedule_history,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled:   {SessionCompleted, SessionCancelled, SessionRescheduled},
	SessionRescheduled: {SessionScheduled},
}

// CanTransition valida la maquina de estados de la sesion.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition aplica un cambio de estado. Volver a scheduled exige un nuevo horario
// y el anterior queda en RescheduleHistory.
func (s InterviewSession) Transition(to SessionStatus, newTime *time.Time, now time.Time) (InterviewSession, error) {
	if !CanTransition(s.Status, to) {
		return s, fmt.Errorf("session %s: transition %s -> %s not allowed", s.ID, s.Status, to)
	}
	next := s
	next.RescheduleHistory = append([]time.Time(nil), s.RescheduleHistory...)
	if s.Status == SessionRescheduled && to == SessionScheduled {
		if newTime == nil || newTime.IsZero() {
			return s, fmt.Errorf("session %s: new scheduled time required", s.ID)
		}
		next.RescheduleHistory = append(next.RescheduleHistory, s.ScheduledAt)
		next.ScheduledAt = newTime.UTC()
	}
	next.Status = to
	next.UpdatedAt = now.UTC()
	return next, nil
}

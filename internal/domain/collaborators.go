package domain

import (
	"context"
	"time"
)

// Clock devuelve el instante actual en UTC.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock congela el tiempo; util en tests y en el CLI con --now.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At.UTC() }

// QuestionLibrary es la biblioteca estatica de preguntas y ejemplos STAR.
type QuestionLibrary interface {
	Questions(category QuestionCategory, subcategory string) []string
	StarExample(label string) (StarExample, bool)
	BaseMinutes(category string) int
}

// CommunicationSender entrega un follow-up en el horario indicado.
type CommunicationSender interface {
	Deliver(ctx context.Context, msg FollowUpMessage, sendAt time.Time) (DeliveryReceipt, error)
}

// HistoryStore persiste la historia de cada candidato. Es opcional: sin store el
// pipeline no guarda estado.
type HistoryStore interface {
	Load(ctx context.Context, candidateID string) (HistoryDocument, error)
	Append(ctx context.Context, candidateID string, record PerformanceRecord) error
	SetLastPlan(ctx context.Context, candidateID, planID string) error
}

package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

// Message es un correo ya renderizado.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer entrega correos renderizados.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type disabledMailer struct {
	reason string
}

func NewDisabledMailer(reason string) Mailer {
	return &disabledMailer{reason: reason}
}

func (m *disabledMailer) Send(_ context.Context, _ Message) error {
	if m.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(m.reason)
}

var _ domain.CommunicationSender = (*FollowUpSender)(nil)

// FollowUpSender implementa domain.CommunicationSender sobre un Mailer.
type FollowUpSender struct {
	logger *zap.Logger
	mailer Mailer
	now    func() time.Time
}

func NewFollowUpSender(logger *zap.Logger, mailer Mailer) *FollowUpSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowUpSender{
		logger: logger,
		mailer: mailer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Deliver renderiza el mensaje y lo envia. sendAt solo se registra: el dispatcher
// decide cuando llamar.
func (s *FollowUpSender) Deliver(ctx context.Context, msg domain.FollowUpMessage, sendAt time.Time) (domain.DeliveryReceipt, error) {
	to := strings.TrimSpace(msg.Recipient)
	if to == "" {
		return domain.DeliveryReceipt{}, fmt.Errorf("follow-up %s has no recipient", msg.ID)
	}
	body := FillSlots(msg.BodyTemplate, msg.Variables)
	mail := Message{
		To:      to,
		Subject: FillSlots(msg.SubjectTemplate, msg.Variables),
		Text:    PlainText(body),
		HTML:    RenderHTML(body),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return domain.DeliveryReceipt{}, fmt.Errorf("send follow-up %s: %w", msg.ID, err)
	}
	receipt := domain.DeliveryReceipt{
		ID:         uuid.NewString(),
		MessageID:  msg.ID,
		AcceptedAt: s.now(),
	}
	s.logger.Info("follow-up delivered",
		zap.String("message_id", msg.ID),
		zap.String("type", string(msg.Type)),
		zap.Time("planned_at", sendAt),
	)
	return receipt, nil
}

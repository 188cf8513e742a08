package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

const (
	defaultDispatchInterval = time.Minute
	defaultDispatchBatch    = 50
	defaultMaxAttempts      = 5
	maxRetryBackoff         = 24 * time.Hour
)

// DispatchStats resume una pasada del dispatcher.
type DispatchStats struct {
	Sent     int
	Deferred int
	Failed   int

	// Abandoned cuenta los mensajes que agotaron sus intentos en esta pasada.
	Abandoned int
}

// FollowUpDispatcher entrega los mensajes vencidos de la cola.
type FollowUpDispatcher struct {
	logger      *zap.Logger
	queue       repository.FollowUpQueue
	sender      domain.CommunicationSender
	limiter     DeliveryRateLimiter
	clock       domain.Clock
	interval    time.Duration
	batch       int
	maxAttempts int
}

func NewFollowUpDispatcher(logger *zap.Logger, queue repository.FollowUpQueue, sender domain.CommunicationSender, limiter DeliveryRateLimiter, clock domain.Clock, interval time.Duration) (*FollowUpDispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue == nil {
		return nil, domain.MissingCollaborator("follow_up_dispatcher", "follow-up queue")
	}
	if sender == nil {
		return nil, domain.MissingCollaborator("follow_up_dispatcher", "communication sender")
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if interval <= 0 {
		interval = defaultDispatchInterval
	}
	return &FollowUpDispatcher{
		logger:      logger,
		queue:       queue,
		sender:      sender,
		limiter:     limiter,
		clock:       clock,
		interval:    interval,
		batch:       defaultDispatchBatch,
		maxAttempts: defaultMaxAttempts,
	}, nil
}

// retryAt duplica la espera por cada intento previo, con tope de un dia.
func (d *FollowUpDispatcher) retryAt(now time.Time, attempts int) time.Time {
	backoff := d.interval
	for i := 0; i < attempts && backoff < maxRetryBackoff; i++ {
		backoff *= 2
	}
	return now.Add(min(backoff, maxRetryBackoff))
}

// Run despacha en cada tick hasta que se cancela el contexto.
func (d *FollowUpDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if _, err := d.DispatchDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("follow-up dispatch failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// DispatchDue envia lo vencido. Un mensaje frenado por el limiter queda pending
// para la proxima pasada.
func (d *FollowUpDispatcher) DispatchDue(ctx context.Context) (DispatchStats, error) {
	now := d.clock.Now()
	due, err := d.queue.Due(ctx, now, d.batch)
	if err != nil {
		return DispatchStats{}, err
	}
	var stats DispatchStats
	for _, msg := range due {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if d.limiter != nil && !d.limiter.Allow(ctx, msg.Recipient) {
			stats.Deferred++
			continue
		}
		receipt, err := d.sender.Deliver(ctx, msg, msg.ScheduledAt)
		if err != nil {
			stats.Failed++
			status, ferr := d.queue.RecordFailure(ctx, msg.ID, err.Error(), d.retryAt(now, msg.Attempts), d.maxAttempts)
			if ferr != nil {
				d.logger.Error("record follow-up failure", zap.String("message_id", msg.ID), zap.Error(ferr))
				continue
			}
			if status == domain.MessageFailed {
				stats.Abandoned++
			}
			d.logger.Warn("follow-up delivery failed",
				zap.String("message_id", msg.ID),
				zap.String("type", string(msg.Type)),
				zap.Int("attempt", msg.Attempts+1),
				zap.String("status", string(status)),
				zap.Error(err),
			)
			continue
		}
		sentAt := receipt.AcceptedAt
		if sentAt.IsZero() {
			sentAt = now
		}
		if err := d.queue.MarkSent(ctx, msg.ID, receipt.ID, sentAt); err != nil {
			stats.Failed++
			d.logger.Error("mark follow-up sent", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		stats.Sent++
	}
	if len(due) > 0 {
		d.logger.Info("follow-ups dispatched",
			zap.Int("sent", stats.Sent),
			zap.Int("deferred", stats.Deferred),
			zap.Int("failed", stats.Failed),
			zap.Int("abandoned", stats.Abandoned),
		)
	}
	return stats, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]bool
}

func (s *recordingSender) Deliver(_ context.Context, msg domain.FollowUpMessage, sendAt time.Time) (domain.DeliveryReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[msg.ID] {
		return domain.DeliveryReceipt{}, errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg.ID)
	return domain.DeliveryReceipt{ID: "rcpt-" + msg.ID, MessageID: msg.ID, AcceptedAt: sendAt}, nil
}

type denyLimiter struct{ deny map[string]bool }

func (l denyLimiter) Allow(_ context.Context, recipient string) bool { return !l.deny[recipient] }

func queuedMessage(id, recipient string, at time.Time) domain.FollowUpMessage {
	return domain.FollowUpMessage{
		ID:          id,
		SessionID:   "sess-1",
		Type:        domain.MessageThankYou,
		ScheduledAt: at,
		Recipient:   recipient,
		Status:      domain.MessagePending,
	}
}

func TestFollowUpDispatcher_DispatchDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 8, 11, 0, 0, 0, time.UTC)
	queue := repository.NewMemoryFollowUpQueue()
	require.NoError(t, queue.Enqueue(ctx, []domain.FollowUpMessage{
		queuedMessage("ok", "hr@acme.io", now.Add(-30*time.Minute)),
		queuedMessage("limited", "busy@acme.io", now.Add(-20*time.Minute)),
		queuedMessage("broken", "hr@acme.io", now.Add(-10*time.Minute)),
		queuedMessage("future", "hr@acme.io", now.Add(48*time.Hour)),
	}))

	sender := &recordingSender{failOn: map[string]bool{"broken": true}}
	limiter := denyLimiter{deny: map[string]bool{"busy@acme.io": true}}
	d, err := NewFollowUpDispatcher(zap.NewNop(), queue, sender, limiter, domain.FixedClock{At: now}, time.Second)
	require.NoError(t, err)

	stats, err := d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Sent: 1, Deferred: 1, Failed: 1}, stats)
	assert.Equal(t, []string{"ok"}, sender.sent)

	all, err := queue.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	status := map[string]domain.MessageStatus{}
	for _, m := range all {
		status[m.ID] = m.Status
	}
	assert.Equal(t, domain.MessageSent, status["ok"])
	assert.Equal(t, domain.MessagePending, status["limited"])
	assert.Equal(t, domain.MessagePending, status["broken"])
	for _, m := range all {
		if m.ID == "broken" {
			assert.Equal(t, 1, m.Attempts)
			require.NotNil(t, m.NextAttemptAt)
			assert.Equal(t, now.Add(time.Second), *m.NextAttemptAt)
		}
	}
	assert.Equal(t, domain.MessagePending, status["future"])
}

type manualClock struct{ at time.Time }

func (c *manualClock) Now() time.Time { return c.at }

func TestFollowUpDispatcher_FailingMessagesDoNotStarveQueue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 8, 11, 0, 0, 0, time.UTC)
	queue := repository.NewMemoryFollowUpQueue()

	failOn := map[string]bool{}
	var batch []domain.FollowUpMessage
	for i := 0; i < defaultDispatchBatch; i++ {
		id := fmt.Sprintf("bounce-%02d", i)
		failOn[id] = true
		batch = append(batch, queuedMessage(id, "gone@example.com", start.Add(-time.Hour+time.Duration(i)*time.Second)))
	}
	batch = append(batch, queuedMessage("good", "hr@acme.io", start.Add(-time.Minute)))
	require.NoError(t, queue.Enqueue(ctx, batch))

	clock := &manualClock{at: start}
	sender := &recordingSender{failOn: failOn}
	d, err := NewFollowUpDispatcher(zap.NewNop(), queue, sender, nil, clock, time.Minute)
	require.NoError(t, err)

	stats, err := d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Failed: defaultDispatchBatch}, stats)

	clock.at = start.Add(30 * time.Second)
	stats, err = d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Sent: 1}, stats)
	assert.Equal(t, []string{"good"}, sender.sent)
}

func TestFollowUpDispatcher_AbandonsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 8, 11, 0, 0, 0, time.UTC)
	queue := repository.NewMemoryFollowUpQueue()
	require.NoError(t, queue.Enqueue(ctx, []domain.FollowUpMessage{queuedMessage("bounce", "gone@example.com", start)}))

	clock := &manualClock{at: start}
	d, err := NewFollowUpDispatcher(zap.NewNop(), queue, &recordingSender{failOn: map[string]bool{"bounce": true}}, nil, clock, time.Minute)
	require.NoError(t, err)

	abandoned := 0
	for i := 0; i < defaultMaxAttempts+2; i++ {
		stats, err := d.DispatchDue(ctx)
		require.NoError(t, err)
		abandoned += stats.Abandoned
		clock.at = clock.at.Add(maxRetryBackoff)
	}
	assert.Equal(t, 1, abandoned)

	all, err := queue.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.MessageFailed, all[0].Status)
	assert.Equal(t, defaultMaxAttempts, all[0].Attempts)
	assert.Equal(t, "smtp unavailable", all[0].LastError)
}

func TestFollowUpDispatcher_RetryBackoff(t *testing.T) {
	d, err := NewFollowUpDispatcher(zap.NewNop(), repository.NewMemoryFollowUpQueue(), &recordingSender{}, nil, nil, time.Minute)
	require.NoError(t, err)
	now := time.Date(2025, 1, 8, 11, 0, 0, 0, time.UTC)

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{3, 8 * time.Minute},
		{20, maxRetryBackoff},
	}
	for _, tc := range cases {
		assert.Equal(t, now.Add(tc.want), d.retryAt(now, tc.attempts), "attempts=%d", tc.attempts)
	}
}

func TestFollowUpDispatcher_RequiresCollaborators(t *testing.T) {
	_, err := NewFollowUpDispatcher(nil, nil, &recordingSender{}, nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)

	_, err = NewFollowUpDispatcher(nil, repository.NewMemoryFollowUpQueue(), nil, nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)
}

func TestFollowUpDispatcher_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := repository.NewMemoryFollowUpQueue()
	d, err := NewFollowUpDispatcher(zap.NewNop(), queue, &recordingSender{}, nil, nil, 5*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

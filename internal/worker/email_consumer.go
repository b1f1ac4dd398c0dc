// Package worker contains the recurring background loops: the email task
// consumer and the ranking aggregation schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/mailer"
	"github.com/nemuzard/notesys/internal/queue"
	"github.com/nemuzard/notesys/internal/ratelimiter"
	"github.com/nemuzard/notesys/internal/verification"
)

// ConsumerHooks carries the metric callbacks injected by main.
// Using a struct keeps the consumer constructor signature clean.
type ConsumerHooks struct {
	OnSent      func()
	OnFailed    func()
	OnMalformed func()
	QueueDepth  func(n int64)
}

// EmailConsumer drains the durable task queue on a fixed tick and performs
// the external send. Delivery is at-most-once: the pop is not transactional
// with the send, so an item popped right before a crash is lost. That window
// is accepted — a user whose email never arrives requests a new code.
type EmailConsumer struct {
	q        queue.TaskQueue
	mail     mailer.Mailer
	codes    verification.Store
	limiter  *ratelimiter.SendLimiter
	interval time.Duration
	codeTTL  time.Duration
	from     string
	logger   *zap.Logger
	hooks    ConsumerHooks
}

func NewEmailConsumer(
	q queue.TaskQueue,
	mail mailer.Mailer,
	codes verification.Store,
	limiter *ratelimiter.SendLimiter,
	interval time.Duration,
	codeTTL time.Duration,
	from string,
	logger *zap.Logger,
	hooks ConsumerHooks,
) *EmailConsumer {
	if hooks.OnSent == nil {
		hooks.OnSent = func() {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnMalformed == nil {
		hooks.OnMalformed = func() {}
	}
	if hooks.QueueDepth == nil {
		hooks.QueueDepth = func(int64) {}
	}
	return &EmailConsumer{
		q: q, mail: mail, codes: codes, limiter: limiter,
		interval: interval, codeTTL: codeTTL, from: from,
		logger: logger, hooks: hooks,
	}
}

// Run ticks every interval and drains the queue until it reports empty.
// Waiting for the next tick is the loop's only suspension point; it stops
// cleanly when ctx is cancelled.
func (c *EmailConsumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("email consumer started", zap.Duration("interval", c.interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("email consumer stopping")
			return
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

// drain pops one item at a time until the empty sentinel comes back.
// One bad item never blocks subsequent items, and there is no busy spin:
// an empty queue ends the pass until the next tick.
func (c *EmailConsumer) drain(ctx context.Context) {
	for {
		raw, err := c.q.Dequeue(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			break
		}
		if err != nil {
			// Store unavailable is fatal to this tick only; the loop
			// retries on the next one.
			c.logger.Error("task queue unavailable", zap.Error(err))
			break
		}

		c.process(ctx, raw)

		if ctx.Err() != nil {
			return
		}
	}

	if depth, err := c.q.Len(ctx); err == nil {
		c.hooks.QueueDepth(depth)
	}
}

// process handles one popped item. Failures are isolated to the item.
func (c *EmailConsumer) process(ctx context.Context, raw []byte) {
	task, err := queue.DecodeTask(raw)
	if err != nil {
		c.logger.Error("dropping malformed task", zap.Error(err))
		c.hooks.OnMalformed()
		return
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Shutdown while waiting for a send slot: the item counts as
		// not-sent, no verification record is written.
		return
	}

	msg := mailer.Message{
		From:    c.from,
		To:      task.Email,
		Subject: "notesys verification code",
		Body: fmt.Sprintf(
			"Your verification code is %s. It expires in %d minutes. If you did not request this code, please ignore this email.",
			task.Code, int(c.codeTTL.Minutes())),
	}
	if err := c.mail.Send(ctx, msg); err != nil {
		// Dropped, not retried: the user requests a new code instead.
		c.logger.Warn("email send failed, task dropped",
			zap.String("to", task.Email), zap.Error(err))
		c.hooks.OnFailed()
		return
	}

	if err := c.codes.Put(ctx, task.Email, task.Code, c.codeTTL); err != nil {
		// The email went out but the code is not checkable; the user's
		// only path is requesting a fresh code.
		c.logger.Error("failed to store verification record",
			zap.String("subject", task.Email), zap.Error(err))
		c.hooks.OnFailed()
		return
	}

	c.hooks.OnSent()
	c.logger.Info("verification email sent", zap.String("to", task.Email))
}

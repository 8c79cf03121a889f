package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ssonotify/internal/model"
	"ssonotify/pkg/metrics"
)

// batchSize bounds concurrent outbound requests against the messaging
// providers during batch dispatch.
const batchSize = 10

type notificationStore interface {
	Insert(ctx context.Context, memberID string, category model.Category, title, body string) (int, error)
}

type dedupChecker interface {
	IsDuplicate(ctx context.Context, memberID string, category model.Category) bool
	MarkSent(ctx context.Context, memberID string, category model.Category)
}

type linePusher interface {
	Enabled() bool
	Push(ctx context.Context, to, title, body string) error
}

type smsSender interface {
	Enabled() bool
	Send(ctx context.Context, phone, message string) error
}

// EventPublisher mirrors delivery outcomes onto the event exchange for
// downstream consumers. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Dispatcher delivers one candidate across its requested channels.
// Channels are attempted independently: a LINE failure never blocks the
// in-app insert, which matters because that insert also feeds the dedup
// guard for future runs.
type Dispatcher struct {
	store  notificationStore
	guard  dedupChecker
	line   linePusher
	sms    smsSender
	events EventPublisher // optional, nil disables event publishing
	logger *zap.Logger
}

func NewDispatcher(
	store notificationStore,
	guard dedupChecker,
	line linePusher,
	sms smsSender,
	events EventPublisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:  store,
		guard:  guard,
		line:   line,
		sms:    sms,
		events: events,
		logger: logger,
	}
}

// Dispatch attempts every requested channel of one candidate and collects
// the per-channel results into one outcome. skipDedup bypasses the 24h
// guard and is reserved for explicit admin sends.
func (d *Dispatcher) Dispatch(ctx context.Context, cand model.Candidate, skipDedup bool) model.Outcome {
	if !skipDedup && d.guard.IsDuplicate(ctx, cand.MemberID, cand.Category) {
		d.logger.Info("Skipping duplicate notification",
			zap.String("member_id", cand.MemberID),
			zap.String("type", string(cand.Category)),
		)
		metrics.NotificationsSkipped.WithLabelValues(string(cand.Category)).Inc()
		return model.Outcome{
			MemberID: cand.MemberID,
			Success:  true,
			Channels: []model.Channel{},
			Error:    model.SkipReasonDuplicate,
		}
	}

	var sent []model.Channel
	var errs []string

	if cand.HasChannel(model.ChannelInApp) {
		if _, err := d.store.Insert(ctx, cand.MemberID, cand.Category, cand.Title, cand.Body); err != nil {
			errs = append(errs, fmt.Sprintf("push: %v", err))
		} else {
			sent = append(sent, model.ChannelInApp)
			d.guard.MarkSent(ctx, cand.MemberID, cand.Category)
		}
	}

	if cand.HasChannel(model.ChannelLine) && cand.LineUserID != "" && d.line.Enabled() {
		if err := d.line.Push(ctx, cand.LineUserID, cand.Title, cand.Body); err != nil {
			errs = append(errs, fmt.Sprintf("line: %v", err))
		} else {
			sent = append(sent, model.ChannelLine)
		}
	}

	if cand.HasChannel(model.ChannelSMS) && cand.Phone != "" && d.sms.Enabled() {
		if err := d.sms.Send(ctx, cand.Phone, fmt.Sprintf("%s: %s", cand.Title, cand.Body)); err != nil {
			errs = append(errs, fmt.Sprintf("sms: %v", err))
		} else {
			sent = append(sent, model.ChannelSMS)
		}
	}

	outcome := model.Outcome{
		MemberID: cand.MemberID,
		Success:  len(sent) > 0,
		Channels: sent,
	}
	if len(errs) > 0 {
		outcome.Error = strings.Join(errs, "; ")
	}

	d.record(cand, outcome)
	return outcome
}

// DispatchBatch dispatches candidates in chunks of batchSize, all
// candidates within a chunk concurrently. A panicking dispatch is
// converted into a failed outcome for that candidate only, so a batch of
// N candidates always yields N outcomes.
func (d *Dispatcher) DispatchBatch(ctx context.Context, cands []model.Candidate) []model.Outcome {
	results := make([]model.Outcome, len(cands))

	for start := 0; start < len(cands); start += batchSize {
		end := start + batchSize
		if end > len(cands) {
			end = len(cands)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						d.logger.Error("Dispatch panicked",
							zap.String("member_id", cands[i].MemberID),
							zap.Any("panic", rec),
						)
						results[i] = model.Outcome{
							MemberID: cands[i].MemberID,
							Success:  false,
							Channels: []model.Channel{},
							Error:    fmt.Sprint(rec),
						}
					}
				}()
				results[i] = d.Dispatch(ctx, cands[i], false)
			}(i)
		}
		wg.Wait()
	}

	return results
}

func (d *Dispatcher) record(cand model.Candidate, outcome model.Outcome) {
	for _, ch := range outcome.Channels {
		metrics.NotificationsSent.WithLabelValues(string(cand.Category), string(ch)).Inc()
	}
	if !outcome.Success {
		metrics.NotificationsFailed.WithLabelValues(string(cand.Category)).Inc()
	}

	if d.events == nil {
		return
	}
	routingKey := "notification.sent"
	if !outcome.Success {
		routingKey = "notification.failed"
	}
	payload := map[string]any{
		"member_id": outcome.MemberID,
		"type":      string(cand.Category),
		"channels":  outcome.Channels,
	}
	if outcome.Error != "" {
		payload["error"] = outcome.Error
	}
	if err := d.events.Publish(routingKey, payload); err != nil {
		d.logger.Warn("Failed to publish notification event",
			zap.String("routing_key", routingKey),
			zap.String("member_id", outcome.MemberID),
			zap.Error(err),
		)
	}
}

package service

import (
	"context"

	"go.uber.org/zap"
)

// AuditSink records structured audit entries. Implementations never
// return an error: audit is observability, not a gate on business logic.
type AuditSink interface {
	Record(ctx context.Context, action, resource string, metadata any)
}

type auditStore interface {
	Insert(ctx context.Context, action, resource string, metadata any) error
}

// Auditor writes audit rows and optionally mirrors them onto the event
// exchange. Every failure is swallowed after logging.
type Auditor struct {
	store  auditStore
	events EventPublisher // optional
	logger *zap.Logger
}

func NewAuditor(store auditStore, events EventPublisher, logger *zap.Logger) *Auditor {
	return &Auditor{
		store:  store,
		events: events,
		logger: logger,
	}
}

func (a *Auditor) Record(ctx context.Context, action, resource string, metadata any) {
	if err := a.store.Insert(ctx, action, resource, metadata); err != nil {
		a.logger.Warn("Audit write failed",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}

	if a.events == nil {
		return
	}
	payload := map[string]any{
		"action":   action,
		"resource": resource,
		"metadata": metadata,
	}
	if err := a.events.Publish("audit."+action, payload); err != nil {
		a.logger.Warn("Audit event publish failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// AuditTrail is the append-only event sink invoked by every mutating
// operation. Writes are best-effort: a failed append is logged to the
// operational log and never fails the triggering operation.
type AuditTrail struct {
	store  ports.Store
	logger *logrus.Logger
}

// NewAuditTrail creates a new audit trail
func NewAuditTrail(store ports.Store, logger *logrus.Logger) *AuditTrail {
	return &AuditTrail{store: store, logger: logger}
}

// Record appends one audit entry outside the primary transaction.
func (t *AuditTrail) Record(ctx context.Context, action, actorID string, target domain.AuditTarget, details map[string]string) {
	entry := domain.NewAuditEntry(action, actorID, target, details)
	if err := t.store.Repos().Audits.Create(ctx, entry); err != nil {
		t.logger.WithFields(logrus.Fields{
			"action":      action,
			"actor_id":    actorID,
			"target_kind": target.Kind,
			"target_id":   target.ID,
		}).WithError(err).Warn("audit log write failed")
	}
}

// List retrieves audit entries newest first. Page numbering starts at 1.
func (t *AuditTrail) List(ctx context.Context, page, limit int) ([]*domain.AuditEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return t.store.Repos().Audits.List(ctx, limit, (page-1)*limit)
}

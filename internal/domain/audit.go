package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind tags which kind of record an audit entry points at
type TargetKind string

const (
	TargetKindAsset      TargetKind = "asset"
	TargetKindAssignment TargetKind = "assignment"
	TargetKindHolder     TargetKind = "holder"
)

// AuditTarget is a tagged {kind, id} reference to the audited record
type AuditTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// AuditEntry is one immutable record in the append-only audit trail
type AuditEntry struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	ActorID   string            `json:"actor_id"`
	Target    AuditTarget       `json:"target"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewAuditEntry creates an audit entry stamped with the current time.
func NewAuditEntry(action, actorID string, target AuditTarget, details map[string]string) *AuditEntry {
	return &AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   actorID,
		Target:    target,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

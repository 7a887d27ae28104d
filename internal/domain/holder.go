package domain

import (
	"time"

	"github.com/google/uuid"
)

// Holder is the identity record an asset can be assigned to. The record
// itself belongs to the identity service; this engine only appends to and
// flips entries on its assignment index.
type Holder struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Verified     bool         `json:"verified"`
	Index        []IndexEntry `json:"assigned_assets"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IndexEntry is one denormalized back-reference in a holder's index:
// which assignment belongs to the holder and whether it is closed.
type IndexEntry struct {
	AssignmentID string `json:"assignment_id"`
	Returned     bool   `json:"returned"`
}

// NewHolder creates a verified holder record.
func NewHolder(name, email, passwordHash string) *Holder {
	return &Holder{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     true,
		CreatedAt:    time.Now(),
	}
}

// OpenIndexEntries returns the entries whose assignments are still open.
func (h *Holder) OpenIndexEntries() []IndexEntry {
	var open []IndexEntry
	for _, e := range h.Index {
		if !e.Returned {
			open = append(open, e)
		}
	}
	return open
}

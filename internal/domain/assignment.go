package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the status of an assignment record
type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "Assigned"
	AssignmentStatusReturned AssignmentStatus = "Returned"
	AssignmentStatusDeleted  AssignmentStatus = "Deleted"
)

// LoanPeriod is the fixed expected-return window for every assignment.
const LoanPeriod = 7 * 24 * time.Hour

// Assignment links one asset to one holder for an interval of time.
// It is created by the assignment engine and mutated exactly once, at closure.
type Assignment struct {
	ID               string           `json:"id"`
	AssetID          string           `json:"asset_id"`
	HolderID         string           `json:"holder_id"`
	AssignedByID     string           `json:"assigned_by_id"`
	AssignedAt       time.Time        `json:"assigned_at"`
	ExpectedReturnAt time.Time        `json:"expected_return_at"`
	ReturnedAt       *time.Time       `json:"returned_at,omitempty"`
	Status           AssignmentStatus `json:"status"`
	Remarks          string           `json:"remarks,omitempty"`
}

// NewAssignment opens an assignment for an asset and holder.
func NewAssignment(assetID, holderID, assignedByID, remarks string) *Assignment {
	now := time.Now()
	if remarks == "" {
		remarks = "Asset is assigned."
	}
	return &Assignment{
		ID:               uuid.NewString(),
		AssetID:          assetID,
		HolderID:         holderID,
		AssignedByID:     assignedByID,
		AssignedAt:       now,
		ExpectedReturnAt: now.Add(LoanPeriod),
		Status:           AssignmentStatusAssigned,
		Remarks:          remarks,
	}
}

// IsOpen reports whether the assignment has not been closed yet.
func (a *Assignment) IsOpen() bool {
	return a.Status == AssignmentStatusAssigned
}

// Close closes the assignment with the given terminal status and stamps the
// actual return time. Closure happens once; history is never removed.
func (a *Assignment) Close(status AssignmentStatus) error {
	if status != AssignmentStatusReturned && status != AssignmentStatusDeleted {
		return NewValidation("assignment can only close as Returned or Deleted")
	}
	if !a.IsOpen() {
		return NewConflict("assignment " + a.ID + " is already closed")
	}
	now := time.Now()
	a.Status = status
	a.ReturnedAt = &now
	return nil
}

// AssignmentFilter represents filters for listing assignments
type AssignmentFilter struct {
	AssetID        *string           `json:"asset_id,omitempty"`
	HolderID       *string           `json:"holder_id,omitempty"`
	Status         *AssignmentStatus `json:"status,omitempty"`
	IncludeDeleted bool              `json:"include_deleted"`
	Limit          int               `json:"limit"`
	Offset         int               `json:"offset"`
}

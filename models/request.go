package models

import (
	"errors"
	"time"
)

const RequestTable = "arm_requests"

const (
	RequestTypeIssue       = "Issue"
	RequestTypeReturn      = "Return"
	RequestTypeMaintenance = "Maintenance"
	RequestTypeLost        = "Lost"
)

const (
	RequestPending   = "Pending"
	RequestApproved  = "Approved"
	RequestRejected  = "Rejected"
	RequestCompleted = "Completed"
	RequestCancelled = "Cancelled"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

var (
	ErrRequestNotPending = errors.New("request is not in pending status")
	ErrNotRequester      = errors.New("request belongs to another officer")
)

// StatusChange is one audit entry in a request's status history.
type StatusChange struct {
	Status      string    `json:"status"`
	ChangedBy   string    `json:"changedBy"`
	ChangedDate time.Time `json:"changedDate"`
	Notes       string    `json:"notes,omitempty"`
}

// Request is an officer's ask: Issue draws the next available item from a
// pool at approval time, while Return/Maintenance/Lost name the exact item the
// officer holds. A request moves Pending -> Approved/Rejected/Cancelled and
// never reverts.
type Request struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID string `gorm:"size:20;uniqueIndex;not null" json:"requestId"`

	RequestedBy string `gorm:"type:uuid;index;not null" json:"requestedBy"`
	PoolID      string `gorm:"type:uuid;index" json:"poolId"`
	PoolName    string `gorm:"size:100" json:"poolName"`

	// Bound at creation for Return/Maintenance/Lost, at approval for Issue.
	AssignedUniqueID string `gorm:"size:20;index" json:"assignedUniqueId,omitempty"`

	RequestType string `gorm:"size:20;index;not null" json:"requestType"`
	Status      string `gorm:"size:20;index;not null;default:'Pending'" json:"status"`
	Priority    string `gorm:"size:10;not null;default:'Medium'" json:"priority"`

	RequestedDate      time.Time  `gorm:"not null" json:"requestedDate"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	Reason             string     `gorm:"size:1000;not null" json:"reason"`
	Condition          string     `gorm:"size:20" json:"condition,omitempty"`

	// Lost-report payload.
	FIRNumber           string     `gorm:"size:50" json:"firNumber,omitempty"`
	FIRDate             *time.Time `json:"firDate,omitempty"`
	PoliceStation       string     `gorm:"size:100" json:"policeStation,omitempty"`
	DateOfLoss          *time.Time `json:"dateOfLoss,omitempty"`
	PlaceOfLoss         string     `gorm:"size:200" json:"placeOfLoss,omitempty"`
	DutyAtTimeOfLoss    string     `gorm:"size:200" json:"dutyAtTimeOfLoss,omitempty"`
	RemedialActionTaken string     `gorm:"size:500" json:"remedialActionTaken,omitempty"`
	Witnesses           string     `gorm:"size:500" json:"witnesses,omitempty"`

	AdminNotes    string     `gorm:"size:500" json:"adminNotes,omitempty"`
	ProcessedBy   string     `gorm:"type:uuid;index" json:"processedBy,omitempty"`
	ProcessedDate *time.Time `json:"processedDate,omitempty"`
	ApprovedDate  *time.Time `json:"approvedDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`

	StatusHistory []StatusChange `gorm:"serializer:json;type:jsonb" json:"statusHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return RequestTable }

func (r *Request) pushStatus(status, by, notes string) {
	r.Status = status
	r.StatusHistory = append(r.StatusHistory, StatusChange{
		Status:      status,
		ChangedBy:   by,
		ChangedDate: time.Now(),
		Notes:       notes,
	})
}

// Approve stamps the request Approved. The item/pool side effects happen
// before this, in the approval workflow.
func (r *Request) Approve(adminID, notes string) error {
	if r.Status != RequestPending {
		return ErrRequestNotPending
	}
	now := time.Now()
	r.ProcessedBy = adminID
	r.ProcessedDate = &now
	r.ApprovedDate = &now
	r.AdminNotes = notes
	r.pushStatus(RequestApproved, adminID, notes)
	return nil
}

func (r *Request) Reject(adminID, reason string) error {
	if r.Status != RequestPending {
		return ErrRequestNotPending
	}
	now := time.Now()
	r.ProcessedBy = adminID
	r.ProcessedDate = &now
	r.AdminNotes = reason
	r.pushStatus(RequestRejected, adminID, reason)
	return nil
}

// Complete marks an approved request finished (maintenance repairs only; Issue
// and Return requests are never explicitly completed).
func (r *Request) Complete(adminID, notes string) {
	now := time.Now()
	r.ProcessedBy = adminID
	r.CompletedDate = &now
	if notes != "" {
		r.AdminNotes = notes
	}
	r.pushStatus(RequestCompleted, adminID, notes)
}

// Cancel is officer-initiated and only valid while still Pending.
func (r *Request) Cancel(officerID string) error {
	if r.RequestedBy != officerID {
		return ErrNotRequester
	}
	if r.Status != RequestPending {
		return ErrRequestNotPending
	}
	r.pushStatus(RequestCancelled, officerID, "")
	return nil
}

// RequiredLostFields returns the names of missing mandatory fields for a
// Lost-type request, in a stable order.
func (r *Request) RequiredLostFields() []string {
	var missing []string
	if r.FIRNumber == "" {
		missing = append(missing, "firNumber")
	}
	if r.FIRDate == nil {
		missing = append(missing, "firDate")
	}
	if r.DateOfLoss == nil {
		missing = append(missing, "dateOfLoss")
	}
	if r.PlaceOfLoss == "" {
		missing = append(missing, "placeOfLoss")
	}
	if r.DutyAtTimeOfLoss == "" {
		missing = append(missing, "dutyAtTimeOfLoss")
	}
	if r.RemedialActionTaken == "" {
		missing = append(missing, "remedialActionTaken")
	}
	return missing
}

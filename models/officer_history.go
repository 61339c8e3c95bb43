package models

import "time"

const OfficerHistoryTable = "arm_officer_history"

const (
	HistoryPendingReturn = "Pending Return"
	HistoryCompleted     = "Completed"
)

// HistoryEntry is one consolidated custody record in an officer's ledger. It
// mirrors the item's own usage history but is written independently; the two
// views can diverge if one write fails (see the approval workflow).
type HistoryEntry struct {
	RecordID    string     `json:"recordId"`
	RequestID   string     `json:"requestId"`
	RequestDate *time.Time `json:"requestDate,omitempty"`

	EquipmentPoolID   string `json:"equipmentPoolId"`
	EquipmentPoolName string `json:"equipmentPoolName"`
	ItemUniqueID      string `json:"itemUniqueId"`
	Category          string `json:"category,omitempty"`

	IssuedDate         time.Time  `json:"issuedDate"`
	IssuedBy           string     `json:"issuedBy,omitempty"`
	Purpose            string     `json:"purpose,omitempty"`
	ConditionAtIssue   string     `json:"conditionAtIssue,omitempty"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`

	ReturnedDate      *time.Time `json:"returnedDate,omitempty"`
	ReturnedTo        string     `json:"returnedTo,omitempty"`
	ConditionAtReturn string     `json:"conditionAtReturn,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`

	Status string `json:"status"`
}

// OfficerHistory is one document per officer, created lazily on the first
// Issue approval.
type OfficerHistory struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	OfficerID   string `gorm:"size:18;uniqueIndex;not null" json:"officerId"`
	OfficerName string `gorm:"size:100" json:"officerName"`
	Designation string `gorm:"size:100" json:"designation"`
	Posting     string `gorm:"size:100" json:"posting,omitempty"`

	History []HistoryEntry `gorm:"serializer:json;type:jsonb" json:"history"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OfficerHistory) TableName() string { return OfficerHistoryTable }

// AppendEntry adds a new Pending Return record.
func (h *OfficerHistory) AppendEntry(e HistoryEntry) {
	e.Status = HistoryPendingReturn
	h.History = append(h.History, e)
}

// CloseEntry completes the first Pending Return record for the item. Returns
// false if no open record matches.
func (h *OfficerHistory) CloseEntry(itemUniqueID string, returnedDate time.Time, returnedTo, conditionAtReturn, remarks string) bool {
	for i := range h.History {
		e := &h.History[i]
		if e.ItemUniqueID == itemUniqueID && e.Status == HistoryPendingReturn {
			e.ReturnedDate = &returnedDate
			e.ReturnedTo = returnedTo
			e.ConditionAtReturn = conditionAtReturn
			e.Remarks = remarks
			e.Status = HistoryCompleted
			return true
		}
	}
	return false
}

// OpenEntries returns the officer's records still awaiting return.
func (h *OfficerHistory) OpenEntries() []HistoryEntry {
	var open []HistoryEntry
	for _, e := range h.History {
		if e.Status == HistoryPendingReturn {
			open = append(open, e)
		}
	}
	return open
}

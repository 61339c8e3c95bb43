package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const PoolTable = "arm_equipment_pools"

// Item status values. An item reported lost sits in Maintenance until an admin
// either writes it off (Lost, terminal) or marks it recovered.
const (
	StatusAvailable   = "Available"
	StatusIssued      = "Issued"
	StatusMaintenance = "Maintenance"
	StatusDamaged     = "Damaged"
	StatusLost        = "Lost"
	StatusRetired     = "Retired"
)

// Condition is a quality grade, a separate axis from status.
const (
	ConditionExcellent    = "Excellent"
	ConditionGood         = "Good"
	ConditionFair         = "Fair"
	ConditionPoor         = "Poor"
	ConditionOutOfService = "Out of Service"
	ConditionLost         = "Lost"
)

const (
	MaintenanceRoutine    = "Routine"
	MaintenanceRepair     = "Repair"
	MaintenanceInspection = "Inspection"
	MaintenanceUpgrade    = "Upgrade"
	MaintenanceCleaning   = "Cleaning"
)

const (
	LostUnderInvestigation = "Under Investigation"
	LostClosed             = "Closed"
)

// LostMarker prefixes the maintenance entry created when an item is reported
// lost; write-off and recovery locate that entry by this prefix.
const LostMarker = "ITEM REPORTED LOST"

var PoolCategories = []string{
	"Firearm", "Ammunition", "Protective Gear", "Communication Device",
	"Vehicle", "Tactical Equipment", "Less-Lethal Weapon", "Forensic Equipment",
	"Medical Supplies", "Office Equipment", "Other",
}

var (
	ErrNoAvailableItems     = errors.New("no available items in pool")
	ErrNotAuthorized        = errors.New("equipment not authorized for this designation")
	ErrItemNotFound         = errors.New("item not found in pool")
	ErrItemNotIssued        = errors.New("item is not currently issued")
	ErrItemNotInMaintenance = errors.New("item is not currently under maintenance")
	ErrAlreadyWrittenOff    = errors.New("item has already been written off")
	ErrNotAwaitingWriteOff  = errors.New("item is not a lost item awaiting write-off")
	ErrNotLostItem          = errors.New("item is not in maintenance (lost) status")
)

// Custody identifies who currently holds an item and why.
type Custody struct {
	UserID             string     `json:"userId"`
	OfficerID          string     `json:"officerId"`
	OfficerName        string     `json:"officerName"`
	Designation        string     `json:"designation"`
	IssuedDate         time.Time  `json:"issuedDate"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	Purpose            string     `json:"purpose"`
}

// UsageEntry is one custody episode. ReturnedDate nil means the episode is
// still open; at most one entry per item may be open at a time.
type UsageEntry struct {
	UserID            string     `json:"userId"`
	OfficerID         string     `json:"officerId"`
	OfficerName       string     `json:"officerName"`
	Designation       string     `json:"designation"`
	IssuedDate        time.Time  `json:"issuedDate"`
	ReturnedDate      *time.Time `json:"returnedDate,omitempty"`
	DaysUsed          int        `json:"daysUsed,omitempty"`
	Purpose           string     `json:"purpose"`
	ConditionAtIssue  string     `json:"conditionAtIssue"`
	ConditionAtReturn string     `json:"conditionAtReturn,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`
	IssuedBy          string     `json:"issuedBy,omitempty"`
	ReturnedTo        string     `json:"returnedTo,omitempty"`
}

// MaintenanceEntry is one repair episode. FixedBy empty means still open.
type MaintenanceEntry struct {
	ReportedDate time.Time  `json:"reportedDate"`
	ReportedBy   string     `json:"reportedBy,omitempty"`
	Reason       string     `json:"reason"`
	Type         string     `json:"type"`
	FixedDate    *time.Time `json:"fixedDate,omitempty"`
	Action       string     `json:"action,omitempty"`
	FixedBy      string     `json:"fixedBy,omitempty"`
	Cost         float64    `json:"cost,omitempty"`
}

type LostEntry struct {
	ReportedDate        time.Time  `json:"reportedDate"`
	ReportedBy          string     `json:"reportedBy,omitempty"`
	FIRNumber           string     `json:"firNumber"`
	FIRDate             *time.Time `json:"firDate,omitempty"`
	PoliceStation       string     `json:"policeStation,omitempty"`
	DateOfLoss          *time.Time `json:"dateOfLoss,omitempty"`
	PlaceOfLoss         string     `json:"placeOfLoss,omitempty"`
	DutyAtTimeOfLoss    string     `json:"dutyAtTimeOfLoss,omitempty"`
	Description         string     `json:"description,omitempty"`
	RemedialActionTaken string     `json:"remedialActionTaken,omitempty"`
	Witnesses           string     `json:"witnesses,omitempty"`
	Status              string     `json:"status"`
}

// Item is one physical unit in a pool. Items are owned by their pool and only
// mutated through EquipmentPool methods so the counters stay consistent.
type Item struct {
	UniqueID           string             `json:"uniqueId"`
	Status             string             `json:"status"`
	Condition          string             `json:"condition"`
	Location           string             `json:"location,omitempty"`
	CurrentlyIssuedTo  *Custody           `json:"currentlyIssuedTo,omitempty"`
	UsageHistory       []UsageEntry       `json:"usageHistory"`
	MaintenanceHistory []MaintenanceEntry `json:"maintenanceHistory"`
	LostHistory        []LostEntry        `json:"lostHistory"`
}

// openUsage returns the open usage entry, if any.
func (it *Item) openUsage() *UsageEntry {
	for i := range it.UsageHistory {
		if it.UsageHistory[i].ReturnedDate == nil {
			return &it.UsageHistory[i]
		}
	}
	return nil
}

// openMaintenance returns the oldest maintenance entry with no FixedBy.
func (it *Item) openMaintenance() *MaintenanceEntry {
	for i := range it.MaintenanceHistory {
		if it.MaintenanceHistory[i].FixedBy == "" {
			return &it.MaintenanceHistory[i]
		}
	}
	return nil
}

func (it *Item) openLostReport() *LostEntry {
	for i := range it.LostHistory {
		if it.LostHistory[i].Status == LostUnderInvestigation {
			return &it.LostHistory[i]
		}
	}
	return nil
}

// EquipmentPool groups interchangeable physical items of one model. The items
// and their histories are embedded documents; the counter columns are derived
// from item statuses and recomputed before every save.
type EquipmentPool struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	PoolName     string `gorm:"size:100;not null;index" json:"poolName"`
	Category     string `gorm:"size:50;not null;index" json:"category"`
	SubCategory  string `gorm:"size:50" json:"subCategory,omitempty"`
	Model        string `gorm:"size:100;not null" json:"model"`
	Manufacturer string `gorm:"size:100" json:"manufacturer,omitempty"`
	Location     string `gorm:"size:100;not null" json:"location"`

	AuthorizedDesignations []string `gorm:"serializer:json;type:jsonb" json:"authorizedDesignations"`

	TotalQuantity    int `gorm:"not null" json:"totalQuantity"`
	AvailableCount   int `gorm:"not null;default:0" json:"availableCount"`
	IssuedCount      int `gorm:"not null;default:0" json:"issuedCount"`
	MaintenanceCount int `gorm:"not null;default:0" json:"maintenanceCount"`
	DamagedCount     int `gorm:"not null;default:0" json:"damagedCount"`
	LostCount        int `gorm:"not null;default:0" json:"lostCount"`
	RetiredCount     int `gorm:"not null;default:0" json:"retiredCount"`

	Items []Item `gorm:"serializer:json;type:jsonb" json:"items"`

	PurchaseDate   *time.Time `json:"purchaseDate,omitempty"`
	TotalCost      float64    `json:"totalCost,omitempty"`
	Supplier       string     `gorm:"size:100" json:"supplier,omitempty"`
	Notes          string     `gorm:"size:1000" json:"notes,omitempty"`
	AddedBy        string     `gorm:"type:uuid" json:"addedBy"`
	LastModifiedBy string     `gorm:"type:uuid" json:"lastModifiedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EquipmentPool) TableName() string { return PoolTable }

// MaterializeItems creates the pool's items with sequential unique IDs
// (PREFIX-001..N), all Available in Excellent condition. Called once at pool
// creation; the item set is fixed afterwards.
func (p *EquipmentPool) MaterializeItems(prefix string) {
	p.Items = make([]Item, 0, p.TotalQuantity)
	for i := 0; i < p.TotalQuantity; i++ {
		p.Items = append(p.Items, Item{
			UniqueID:  fmt.Sprintf("%s-%03d", prefix, i+1),
			Status:    StatusAvailable,
			Condition: ConditionExcellent,
			Location:  p.Location,
		})
	}
	p.UpdateCounts()
}

// UpdateCounts recomputes every counter from the item statuses. Counters are
// never incremented piecemeal.
func (p *EquipmentPool) UpdateCounts() {
	var available, issued, maintenance, damaged, lost, retired int
	for i := range p.Items {
		switch p.Items[i].Status {
		case StatusAvailable:
			available++
		case StatusIssued:
			issued++
		case StatusMaintenance:
			maintenance++
		case StatusDamaged:
			damaged++
		case StatusLost:
			lost++
		case StatusRetired:
			retired++
		}
	}
	p.AvailableCount = available
	p.IssuedCount = issued
	p.MaintenanceCount = maintenance
	p.DamagedCount = damaged
	p.LostCount = lost
	p.RetiredCount = retired
}

// GetNextAvailableItem picks an Available item preferring Excellent, then
// Good, then Fair condition; ties go to the first match in item order.
// Available items in Poor or Out of Service condition are never auto-selected.
func (p *EquipmentPool) GetNextAvailableItem() *Item {
	for _, tier := range []string{ConditionExcellent, ConditionGood, ConditionFair} {
		for i := range p.Items {
			if p.Items[i].Status == StatusAvailable && p.Items[i].Condition == tier {
				return &p.Items[i]
			}
		}
	}
	return nil
}

func (p *EquipmentPool) FindItemByUniqueID(uniqueID string) *Item {
	for i := range p.Items {
		if p.Items[i].UniqueID == uniqueID {
			return &p.Items[i]
		}
	}
	return nil
}

// AuthorizedFor reports whether the designation may draw from this pool.
func (p *EquipmentPool) AuthorizedFor(designation string) bool {
	for _, d := range p.AuthorizedDesignations {
		if d == designation {
			return true
		}
	}
	return false
}

// HasItemIssuedTo reports whether the officer already holds an item from this pool.
func (p *EquipmentPool) HasItemIssuedTo(userID string) bool {
	for i := range p.Items {
		it := &p.Items[i]
		if it.Status == StatusIssued && it.CurrentlyIssuedTo != nil && it.CurrentlyIssuedTo.UserID == userID {
			return true
		}
	}
	return false
}

// IssueItem checks out the next available item to the officer: status becomes
// Issued, custody is recorded, and a new open usage entry is appended with the
// item's current condition. The caller persists the pool.
func (p *EquipmentPool) IssueItem(officer Custody, issuedBy string) (*Item, error) {
	item := p.GetNextAvailableItem()
	if item == nil {
		return nil, ErrNoAvailableItems
	}
	if !p.AuthorizedFor(officer.Designation) {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, officer.Designation)
	}

	now := time.Now()
	if officer.Purpose == "" {
		officer.Purpose = "Regular Duty"
	}
	officer.IssuedDate = now

	item.Status = StatusIssued
	item.CurrentlyIssuedTo = &officer
	item.UsageHistory = append(item.UsageHistory, UsageEntry{
		UserID:           officer.UserID,
		OfficerID:        officer.OfficerID,
		OfficerName:      officer.OfficerName,
		Designation:      officer.Designation,
		IssuedDate:       now,
		Purpose:          officer.Purpose,
		ConditionAtIssue: item.Condition,
		IssuedBy:         issuedBy,
	})

	p.UpdateCounts()
	return item, nil
}

// ReturnItem closes the item's open custody episode. The reported condition
// decides the next status: Poor or Out of Service sends the item to
// Maintenance with an auto-generated open repair entry, anything else makes it
// Available again.
func (p *EquipmentPool) ReturnItem(uniqueID, condition, remarks, returnedTo string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != StatusIssued {
		return nil, ErrItemNotIssued
	}

	finalCondition := condition
	if finalCondition == "" {
		finalCondition = item.Condition
	}

	now := time.Now()
	if last := item.openUsage(); last != nil {
		last.ReturnedDate = &now
		last.ConditionAtReturn = finalCondition
		last.Remarks = remarks
		last.ReturnedTo = returnedTo
		last.DaysUsed = daysBetween(last.IssuedDate, now)
	}

	item.CurrentlyIssuedTo = nil
	item.Condition = finalCondition

	if finalCondition == ConditionPoor || finalCondition == ConditionOutOfService {
		item.Status = StatusMaintenance
		reason := remarks
		if reason == "" {
			reason = "N/A"
		}
		item.MaintenanceHistory = append(item.MaintenanceHistory, MaintenanceEntry{
			ReportedDate: now,
			ReportedBy:   custodyUserID(item),
			Reason:       fmt.Sprintf("Item returned in %s condition. Reason: %s.", finalCondition, reason),
			Type:         MaintenanceInspection,
			Action:       "Awaiting repair...",
		})
	} else {
		item.Status = StatusAvailable
	}

	p.UpdateCounts()
	return item, nil
}

// SendToMaintenance handles an approved maintenance request: it closes the
// open custody episode and unconditionally moves the item to Maintenance,
// regardless of the reported condition. This deliberately bypasses the return
// triage; the admin approving the request has already decided the item needs
// repair.
func (p *EquipmentPool) SendToMaintenance(uniqueID, condition, reason, reportedBy, returnedTo string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != StatusIssued {
		return nil, ErrItemNotIssued
	}

	if condition == "" {
		condition = ConditionPoor
	}

	now := time.Now()
	if last := item.openUsage(); last != nil {
		last.ReturnedDate = &now
		last.ReturnedTo = returnedTo
		last.ConditionAtReturn = condition
		last.Remarks = "Maintenance: " + reason
		last.DaysUsed = daysBetween(last.IssuedDate, now)
	}

	item.Status = StatusMaintenance
	item.Condition = condition
	item.CurrentlyIssuedTo = nil
	item.MaintenanceHistory = append(item.MaintenanceHistory, MaintenanceEntry{
		ReportedDate: now,
		ReportedBy:   reportedBy,
		Reason:       reason,
		Type:         MaintenanceRepair,
		Action:       "Awaiting repair...",
	})

	p.UpdateCounts()
	return item, nil
}

// ReportLost records a loss report for an issued item. The item lands in
// Maintenance (not Lost) with condition Out of Service so it shows up in the
// admin attention queue; both a lost-history entry (Under Investigation) and a
// marker maintenance entry are appended, and the open custody episode is
// closed with condition Poor.
func (p *EquipmentPool) ReportLost(uniqueID string, report LostEntry, returnedTo string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != StatusIssued {
		return nil, ErrItemNotIssued
	}

	now := time.Now()
	fir := report.FIRNumber
	if fir == "" {
		fir = "N/A"
	}
	lostRemark := fmt.Sprintf("Reported Lost. FIR: %s. %s", fir, report.Description)

	if last := item.openUsage(); last != nil {
		last.ReturnedDate = &now
		last.ReturnedTo = returnedTo
		last.ConditionAtReturn = ConditionPoor
		last.Remarks = lostRemark
		last.DaysUsed = daysBetween(last.IssuedDate, now)
	}

	item.Status = StatusMaintenance
	item.Condition = ConditionOutOfService
	item.CurrentlyIssuedTo = nil

	report.ReportedDate = now
	report.Status = LostUnderInvestigation
	item.LostHistory = append(item.LostHistory, report)

	item.MaintenanceHistory = append(item.MaintenanceHistory, MaintenanceEntry{
		ReportedDate: now,
		ReportedBy:   report.ReportedBy,
		Reason:       fmt.Sprintf("%s. FIR: %s.", LostMarker, fir),
		Type:         MaintenanceRepair,
		Action:       "Awaiting investigation...",
	})

	p.UpdateCounts()
	return item, nil
}

// CompleteMaintenance closes the oldest open repair entry and returns the item
// to service. The final condition must be Excellent or Good; that rule is
// enforced at the HTTP edge, not here.
func (p *EquipmentPool) CompleteMaintenance(uniqueID, action, condition string, cost float64, fixedBy string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != StatusMaintenance {
		return nil, ErrItemNotInMaintenance
	}

	now := time.Now()
	item.Status = StatusAvailable
	item.Condition = condition

	if entry := item.openMaintenance(); entry != nil {
		entry.FixedDate = &now
		entry.Action = action
		entry.FixedBy = fixedBy
		entry.Cost = cost
	} else {
		item.MaintenanceHistory = append(item.MaintenanceHistory, MaintenanceEntry{
			ReportedDate: now,
			ReportedBy:   fixedBy,
			Reason:       "Repair completed (no initial report found)",
			Type:         MaintenanceRepair,
			FixedDate:    &now,
			Action:       action,
			FixedBy:      fixedBy,
			Cost:         cost,
		})
	}

	p.UpdateCounts()
	return item, nil
}

// WriteOffLost finalizes a loss: the item becomes Lost (terminal), the marker
// maintenance entry is closed with the final report, and the open lost report
// is closed. The item must still be awaiting write-off; a second call fails.
func (p *EquipmentPool) WriteOffLost(uniqueID, notes, fixedBy string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status == StatusLost {
		return nil, ErrAlreadyWrittenOff
	}

	var lastMaint *MaintenanceEntry
	if n := len(item.MaintenanceHistory); n > 0 {
		lastMaint = &item.MaintenanceHistory[n-1]
	}
	if lastMaint == nil || lastMaint.FixedBy != "" || !hasLostMarker(lastMaint.Reason) {
		return nil, ErrNotAwaitingWriteOff
	}

	now := time.Now()
	item.Status = StatusLost
	item.Condition = ConditionOutOfService

	lastMaint.FixedDate = &now
	lastMaint.FixedBy = fixedBy
	lastMaint.Action = fmt.Sprintf("ITEM WRITTEN OFF. Status: Lost. Final Report: %s", notes)

	if report := item.openLostReport(); report != nil {
		report.Status = LostClosed
		report.Description += " | FINAL REPORT: " + notes
	}

	p.UpdateCounts()
	return item, nil
}

// MarkRecovered closes a loss investigation for an item that turned up again.
// The item becomes Available unless the recovered condition is Poor, in which
// case it stays in Maintenance.
func (p *EquipmentPool) MarkRecovered(uniqueID, condition, notes, fixedBy string) (*Item, error) {
	item := p.FindItemByUniqueID(uniqueID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.Status != StatusMaintenance || item.openLostReport() == nil {
		return nil, ErrNotLostItem
	}

	item.Condition = condition
	if condition == ConditionPoor {
		item.Status = StatusMaintenance
	} else {
		item.Status = StatusAvailable
	}

	now := time.Now()
	for i := range item.MaintenanceHistory {
		entry := &item.MaintenanceHistory[i]
		if entry.FixedBy == "" && hasLostMarker(entry.Reason) {
			entry.FixedDate = &now
			entry.FixedBy = fixedBy
			entry.Action = fmt.Sprintf("ITEM RECOVERED. Status: %s. Notes: %s", item.Status, notes)
			break
		}
	}

	if report := item.openLostReport(); report != nil {
		report.Status = LostClosed
		report.Description += " | RECOVERY NOTES: " + notes
	}

	p.UpdateCounts()
	return item, nil
}

func hasLostMarker(reason string) bool {
	return len(reason) >= len(LostMarker) && reason[:len(LostMarker)] == LostMarker
}

func custodyUserID(it *Item) string {
	if n := len(it.UsageHistory); n > 0 {
		return it.UsageHistory[n-1].UserID
	}
	return ""
}

// daysBetween rounds the elapsed time up to whole days; same-day returns
// count as one day only if any time elapsed at all.
func daysBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

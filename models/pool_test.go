package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T, quantity int) *EquipmentPool {
	t.Helper()
	p := &EquipmentPool{
		ID:                     "pool-1",
		PoolName:               "Glock 17 9mm",
		Category:               "Firearm",
		Model:                  "Glock 17",
		Location:               "Armory A",
		AuthorizedDesignations: []string{"Police Inspector (PI)", "Sub-Inspector (SI)"},
		TotalQuantity:          quantity,
	}
	p.MaterializeItems("GLK")
	return p
}

func officerPI(userID string) Custody {
	return Custody{
		UserID:      userID,
		OfficerID:   "MHPI20180042",
		OfficerName: "A Officer",
		Designation: "Police Inspector (PI)",
	}
}

func counterSum(p *EquipmentPool) int {
	return p.AvailableCount + p.IssuedCount + p.MaintenanceCount +
		p.DamagedCount + p.LostCount + p.RetiredCount
}

func TestMaterializeItems(t *testing.T) {
	p := testPool(t, 3)

	require.Len(t, p.Items, 3)
	assert.Equal(t, "GLK-001", p.Items[0].UniqueID)
	assert.Equal(t, "GLK-002", p.Items[1].UniqueID)
	assert.Equal(t, "GLK-003", p.Items[2].UniqueID)
	for _, it := range p.Items {
		assert.Equal(t, StatusAvailable, it.Status)
		assert.Equal(t, ConditionExcellent, it.Condition)
	}
	assert.Equal(t, 3, p.AvailableCount)
	assert.Equal(t, p.TotalQuantity, counterSum(p))
}

func TestIssueAndReturnRoundTrip(t *testing.T) {
	p := testPool(t, 3)

	item, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "GLK-001", item.UniqueID)
	assert.Equal(t, StatusIssued, item.Status)
	require.NotNil(t, item.CurrentlyIssuedTo)
	assert.Equal(t, "u1", item.CurrentlyIssuedTo.UserID)
	assert.Equal(t, "Regular Duty", item.CurrentlyIssuedTo.Purpose)
	assert.Equal(t, 2, p.AvailableCount)
	assert.Equal(t, 1, p.IssuedCount)
	assert.Equal(t, p.TotalQuantity, counterSum(p))

	// exactly one open usage entry
	open := 0
	for _, e := range item.UsageHistory {
		if e.ReturnedDate == nil {
			open++
		}
	}
	assert.Equal(t, 1, open)

	returned, err := p.ReturnItem("GLK-001", ConditionGood, "no issues", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, returned.Status)
	assert.Equal(t, ConditionGood, returned.Condition)
	assert.Nil(t, returned.CurrentlyIssuedTo)
	assert.Equal(t, 3, p.AvailableCount)
	assert.Equal(t, 0, p.IssuedCount)

	last := returned.UsageHistory[len(returned.UsageHistory)-1]
	require.NotNil(t, last.ReturnedDate)
	assert.Equal(t, ConditionGood, last.ConditionAtReturn)
	assert.Equal(t, "admin-1", last.ReturnedTo)
	assert.GreaterOrEqual(t, last.DaysUsed, 0)
	assert.LessOrEqual(t, last.DaysUsed, 1)
}

func TestIssueExhaustsPool(t *testing.T) {
	p := testPool(t, 2)

	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	_, err = p.IssueItem(officerPI("u2"), "admin-1")
	require.NoError(t, err)

	before := *p
	_, err = p.IssueItem(officerPI("u3"), "admin-1")
	assert.ErrorIs(t, err, ErrNoAvailableItems)
	assert.Equal(t, before.IssuedCount, p.IssuedCount)
	assert.Equal(t, before.AvailableCount, p.AvailableCount)
}

func TestIssueUnauthorizedDesignation(t *testing.T) {
	p := testPool(t, 2)

	officer := officerPI("u1")
	officer.Designation = "Police Constable (PC)"
	_, err := p.IssueItem(officer, "admin-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 2, p.AvailableCount)
}

func TestConditionTierSelection(t *testing.T) {
	p := testPool(t, 3)
	p.Items[0].Condition = ConditionFair
	p.Items[1].Condition = ConditionGood
	p.Items[2].Condition = ConditionPoor

	item, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "GLK-002", item.UniqueID)

	// next best is Fair
	item, err = p.IssueItem(officerPI("u2"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "GLK-001", item.UniqueID)

	// the Poor item is Available but never auto-selected
	_, err = p.IssueItem(officerPI("u3"), "admin-1")
	assert.ErrorIs(t, err, ErrNoAvailableItems)
}

func TestReturnNotIssuedFails(t *testing.T) {
	p := testPool(t, 2)

	before := len(p.Items[0].UsageHistory)
	_, err := p.ReturnItem("GLK-001", ConditionGood, "", "admin-1")
	assert.ErrorIs(t, err, ErrItemNotIssued)
	assert.Len(t, p.Items[0].UsageHistory, before)

	_, err = p.ReturnItem("GLK-999", ConditionGood, "", "admin-1")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestReturnTriagePoorGoesToMaintenance(t *testing.T) {
	p := testPool(t, 2)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)

	item, err := p.ReturnItem("GLK-001", ConditionPoor, "trigger jams", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, item.Status)
	assert.Equal(t, ConditionPoor, item.Condition)
	assert.Equal(t, 1, p.MaintenanceCount)

	require.Len(t, item.MaintenanceHistory, 1)
	entry := item.MaintenanceHistory[0]
	assert.Equal(t, "Item returned in Poor condition. Reason: trigger jams.", entry.Reason)
	assert.Equal(t, MaintenanceInspection, entry.Type)
	assert.Empty(t, entry.FixedBy)
}

func TestReturnConditionFallback(t *testing.T) {
	p := testPool(t, 1)
	p.Items[0].Condition = ConditionGood
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)

	item, err := p.ReturnItem("GLK-001", "", "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, ConditionGood, item.Condition)
	assert.Equal(t, StatusAvailable, item.Status)
}

func TestCompleteMaintenance(t *testing.T) {
	p := testPool(t, 1)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	_, err = p.ReturnItem("GLK-001", ConditionPoor, "broken sight", "admin-1")
	require.NoError(t, err)

	item, err := p.CompleteMaintenance("GLK-001", "Replaced sight", ConditionGood, 1500, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, item.Status)
	assert.Equal(t, ConditionGood, item.Condition)
	assert.Equal(t, 1, p.AvailableCount)
	assert.Equal(t, 0, p.MaintenanceCount)

	entry := item.MaintenanceHistory[0]
	assert.Equal(t, "admin-2", entry.FixedBy)
	assert.Equal(t, "Replaced sight", entry.Action)
	assert.Equal(t, 1500.0, entry.Cost)
	require.NotNil(t, entry.FixedDate)

	_, err = p.CompleteMaintenance("GLK-001", "again", ConditionGood, 0, "admin-2")
	assert.ErrorIs(t, err, ErrItemNotInMaintenance)
}

func TestCompleteMaintenanceWithoutOpenEntry(t *testing.T) {
	p := testPool(t, 1)
	p.Items[0].Status = StatusMaintenance
	p.UpdateCounts()

	item, err := p.CompleteMaintenance("GLK-001", "Serviced", ConditionExcellent, 0, "admin-1")
	require.NoError(t, err)
	require.Len(t, item.MaintenanceHistory, 1)
	assert.Equal(t, "Repair completed (no initial report found)", item.MaintenanceHistory[0].Reason)
	assert.Equal(t, "admin-1", item.MaintenanceHistory[0].FixedBy)
}

func TestSendToMaintenanceBypassesTriage(t *testing.T) {
	p := testPool(t, 1)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)

	// Good condition would keep the item Available on a normal return, but an
	// approved maintenance request moves it to Maintenance regardless.
	item, err := p.SendToMaintenance("GLK-001", ConditionGood, "annual service", "u1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, item.Status)
	assert.Equal(t, ConditionGood, item.Condition)
	assert.Nil(t, item.CurrentlyIssuedTo)

	last := item.UsageHistory[len(item.UsageHistory)-1]
	assert.Equal(t, "Maintenance: annual service", last.Remarks)

	require.Len(t, item.MaintenanceHistory, 1)
	assert.Equal(t, MaintenanceRepair, item.MaintenanceHistory[0].Type)
	assert.Equal(t, "u1", item.MaintenanceHistory[0].ReportedBy)
}

func TestLostLifecycleWriteOff(t *testing.T) {
	p := testPool(t, 2)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)

	firDate := time.Now().AddDate(0, 0, -1)
	item, err := p.ReportLost("GLK-001", LostEntry{
		ReportedBy:  "u1",
		FIRNumber:   "FIR/2026/0042",
		FIRDate:     &firDate,
		Description: "lost during patrol",
	}, "admin-1")
	require.NoError(t, err)

	// Lost items sit in Maintenance until the investigation closes.
	assert.Equal(t, StatusMaintenance, item.Status)
	assert.Equal(t, ConditionOutOfService, item.Condition)
	assert.Equal(t, 1, p.MaintenanceCount)
	assert.Equal(t, 0, p.LostCount)

	require.Len(t, item.LostHistory, 1)
	assert.Equal(t, LostUnderInvestigation, item.LostHistory[0].Status)

	require.Len(t, item.MaintenanceHistory, 1)
	assert.Equal(t, "ITEM REPORTED LOST. FIR: FIR/2026/0042.", item.MaintenanceHistory[0].Reason)

	last := item.UsageHistory[len(item.UsageHistory)-1]
	assert.Equal(t, ConditionPoor, last.ConditionAtReturn)
	assert.Equal(t, "Reported Lost. FIR: FIR/2026/0042. lost during patrol", last.Remarks)

	item, err = p.WriteOffLost("GLK-001", "board approved write-off", "admin-2")
	require.NoError(t, err)
	assert.Equal(t, StatusLost, item.Status)
	assert.Equal(t, 1, p.LostCount)
	assert.Equal(t, 0, p.MaintenanceCount)
	assert.Equal(t, LostClosed, item.LostHistory[0].Status)
	assert.Contains(t, item.LostHistory[0].Description, "| FINAL REPORT: board approved write-off")
	assert.Equal(t, "admin-2", item.MaintenanceHistory[0].FixedBy)

	// terminal: a second write-off fails and nothing changes
	_, err = p.WriteOffLost("GLK-001", "again", "admin-2")
	assert.ErrorIs(t, err, ErrAlreadyWrittenOff)
	assert.Equal(t, 1, p.LostCount)
}

func TestWriteOffRequiresLostMarker(t *testing.T) {
	p := testPool(t, 1)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	_, err = p.ReturnItem("GLK-001", ConditionPoor, "broken", "admin-1")
	require.NoError(t, err)

	// in maintenance, but for repair rather than loss
	_, err = p.WriteOffLost("GLK-001", "notes", "admin-1")
	assert.ErrorIs(t, err, ErrNotAwaitingWriteOff)
}

func TestMarkRecovered(t *testing.T) {
	p := testPool(t, 1)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	_, err = p.ReportLost("GLK-001", LostEntry{ReportedBy: "u1", FIRNumber: "FIR/1"}, "admin-1")
	require.NoError(t, err)

	item, err := p.MarkRecovered("GLK-001", ConditionGood, "found in locker", "admin-2")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, item.Status)
	assert.Equal(t, ConditionGood, item.Condition)
	assert.Equal(t, LostClosed, item.LostHistory[0].Status)
	assert.Contains(t, item.LostHistory[0].Description, "RECOVERY NOTES: found in locker")
	assert.Equal(t, "admin-2", item.MaintenanceHistory[0].FixedBy)

	_, err = p.MarkRecovered("GLK-001", ConditionGood, "again", "admin-2")
	assert.ErrorIs(t, err, ErrNotLostItem)
}

func TestMarkRecoveredPoorStaysInMaintenance(t *testing.T) {
	p := testPool(t, 1)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)
	_, err = p.ReportLost("GLK-001", LostEntry{ReportedBy: "u1"}, "admin-1")
	require.NoError(t, err)

	item, err := p.MarkRecovered("GLK-001", ConditionPoor, "found damaged", "admin-2")
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, item.Status)
	assert.Equal(t, 1, p.MaintenanceCount)
}

func TestHasItemIssuedTo(t *testing.T) {
	p := testPool(t, 2)
	_, err := p.IssueItem(officerPI("u1"), "admin-1")
	require.NoError(t, err)

	assert.True(t, p.HasItemIssuedTo("u1"))
	assert.False(t, p.HasItemIssuedTo("u2"))
}

func TestCounterSumInvariantAcrossLifecycle(t *testing.T) {
	p := testPool(t, 5)

	_, err := p.IssueItem(officerPI("u1"), "a")
	require.NoError(t, err)
	_, err = p.IssueItem(officerPI("u2"), "a")
	require.NoError(t, err)
	_, err = p.ReturnItem("GLK-001", ConditionPoor, "x", "a")
	require.NoError(t, err)
	_, err = p.IssueItem(officerPI("u3"), "a")
	require.NoError(t, err)
	_, err = p.ReportLost("GLK-002", LostEntry{ReportedBy: "u2"}, "a")
	require.NoError(t, err)
	_, err = p.WriteOffLost("GLK-002", "gone", "a")
	require.NoError(t, err)

	assert.Equal(t, p.TotalQuantity, counterSum(p))
}

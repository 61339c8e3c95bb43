package workflow

import (
	"context"
	"testing"

	"police_armory_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoolStore struct {
	pools []models.EquipmentPool
	saved []string
}

func (f *fakePoolStore) AllPools(context.Context) ([]models.EquipmentPool, error) {
	return f.pools, nil
}

func (f *fakePoolStore) SavePool(_ context.Context, p *models.EquipmentPool) error {
	f.saved = append(f.saved, p.ID)
	return nil
}

func TestReconcileFixesDriftedCounters(t *testing.T) {
	pool := models.EquipmentPool{
		ID:            "pool-1",
		PoolName:      "Batons",
		TotalQuantity: 2,
		Items: []models.Item{
			{UniqueID: "BTN-001", Status: models.StatusAvailable, Condition: models.ConditionGood},
			{UniqueID: "BTN-002", Status: models.StatusIssued, Condition: models.ConditionGood},
		},
		// drifted: claims both available
		AvailableCount: 2,
	}
	f := &fakePoolStore{pools: []models.EquipmentPool{pool}}

	report, err := Reconcile(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, report.PoolsScanned)
	assert.Equal(t, 1, report.PoolsUpdated)
	assert.Equal(t, 1, report.CountersFixed)
	assert.Equal(t, []string{"pool-1"}, f.saved)
}

func TestReconcileBackfillsMalformedMaintenanceEntries(t *testing.T) {
	pool := models.EquipmentPool{
		ID:            "pool-1",
		TotalQuantity: 1,
		Items: []models.Item{
			{
				UniqueID:  "BTN-001",
				Status:    models.StatusMaintenance,
				Condition: models.ConditionPoor,
				MaintenanceHistory: []models.MaintenanceEntry{
					{}, // no reason, no date, no type
				},
			},
		},
		MaintenanceCount: 1,
	}
	f := &fakePoolStore{pools: []models.EquipmentPool{pool}}

	report, err := Reconcile(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 3, report.EntriesRepaired)
	assert.Equal(t, 1, report.PoolsUpdated)

	entry := f.pools[0].Items[0].MaintenanceHistory[0]
	assert.Equal(t, "Legacy repair log", entry.Reason)
	assert.Equal(t, models.MaintenanceRepair, entry.Type)
	assert.False(t, entry.ReportedDate.IsZero())
}

func TestReconcileCleanPoolsUntouched(t *testing.T) {
	pool := models.EquipmentPool{
		ID:            "pool-1",
		TotalQuantity: 1,
		Items: []models.Item{
			{UniqueID: "BTN-001", Status: models.StatusAvailable, Condition: models.ConditionGood},
		},
	}
	pool.UpdateCounts()
	f := &fakePoolStore{pools: []models.EquipmentPool{pool}}

	report, err := Reconcile(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 0, report.PoolsUpdated)
	assert.Empty(t, f.saved)
}

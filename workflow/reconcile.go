package workflow

import (
	"context"
	"log"
	"time"

	"police_armory_tool/models"
)

// ReconcileReport summarizes one sweep over the pools.
type ReconcileReport struct {
	PoolsScanned    int `json:"poolsScanned"`
	PoolsUpdated    int `json:"poolsUpdated"`
	CountersFixed   int `json:"countersFixed"`
	EntriesRepaired int `json:"entriesRepaired"`
}

// PoolStore is the subset of Store the reconcile sweep needs.
type PoolStore interface {
	AllPools(ctx context.Context) ([]models.EquipmentPool, error)
	SavePool(ctx context.Context, p *models.EquipmentPool) error
}

// Reconcile walks every pool, recomputes the counters from item statuses, and
// backfills maintenance entries that are missing a reason or a reported date.
// It repairs drift left behind by partial writes; it does not touch the
// officer ledgers.
func Reconcile(ctx context.Context, store PoolStore) (ReconcileReport, error) {
	pools, err := store.AllPools(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	var report ReconcileReport
	report.PoolsScanned = len(pools)

	for i := range pools {
		pool := &pools[i]
		dirty := false

		for j := range pool.Items {
			item := &pool.Items[j]
			for k := range item.MaintenanceHistory {
				entry := &item.MaintenanceHistory[k]
				if entry.Reason == "" {
					entry.Reason = "Legacy repair log"
					report.EntriesRepaired++
					dirty = true
				}
				if entry.ReportedDate.IsZero() {
					entry.ReportedDate = time.Now()
					report.EntriesRepaired++
					dirty = true
				}
				if entry.Type == "" {
					entry.Type = models.MaintenanceRepair
					report.EntriesRepaired++
					dirty = true
				}
			}
		}

		before := [6]int{
			pool.AvailableCount, pool.IssuedCount, pool.MaintenanceCount,
			pool.DamagedCount, pool.LostCount, pool.RetiredCount,
		}
		pool.UpdateCounts()
		after := [6]int{
			pool.AvailableCount, pool.IssuedCount, pool.MaintenanceCount,
			pool.DamagedCount, pool.LostCount, pool.RetiredCount,
		}
		if before != after {
			report.CountersFixed++
			dirty = true
		}

		if dirty {
			if err := store.SavePool(ctx, pool); err != nil {
				log.Printf("reconcile: failed to save pool %s: %v", pool.ID, err)
				continue
			}
			report.PoolsUpdated++
		}
	}
	return report, nil
}

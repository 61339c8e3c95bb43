package db

import (
	"context"
	"encoding/json"
	"strings"

	"police_armory_tool/models"

	"gorm.io/gorm"
)

// jsonArg marshals a containment probe for jsonb @> queries.
func jsonArg(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// Pools

func (r *Repo) CreatePool(ctx context.Context, p *models.EquipmentPool) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindPoolByID(ctx context.Context, id string) (*models.EquipmentPool, error) {
	var p models.EquipmentPool
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePool persists the whole aggregate in one row write.
func (r *Repo) SavePool(ctx context.Context, p *models.EquipmentPool) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

type PoolQuery struct {
	Category    string
	Designation string
	Search      string
}

func (r *Repo) ListPools(ctx context.Context, q PoolQuery) ([]models.EquipmentPool, error) {
	tx := r.DB.WithContext(ctx).Model(&models.EquipmentPool{})
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Designation != "" {
		tx = tx.Where("authorized_designations @> ?::jsonb", jsonArg([]string{q.Designation}))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where(
			"LOWER(pool_name) LIKE ? OR LOWER(model) LIKE ? OR LOWER(manufacturer) LIKE ?",
			like, like, like,
		)
	}

	var pools []models.EquipmentPool
	if err := tx.Order("pool_name ASC").Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *Repo) PoolCategories(ctx context.Context, designation string) ([]string, error) {
	tx := r.DB.WithContext(ctx).Model(&models.EquipmentPool{}).Distinct("category")
	if designation != "" {
		tx = tx.Where("authorized_designations @> ?::jsonb", jsonArg([]string{designation}))
	}
	var categories []string
	err := tx.Order("category").Pluck("category", &categories).Error
	return categories, err
}

// PoolsWithUserIssued returns pools holding at least one item currently
// issued to the officer.
func (r *Repo) PoolsWithUserIssued(ctx context.Context, userID string) ([]models.EquipmentPool, error) {
	probe := jsonArg([]map[string]interface{}{
		{"status": models.StatusIssued, "currentlyIssuedTo": map[string]string{"userId": userID}},
	})
	var pools []models.EquipmentPool
	err := r.DB.WithContext(ctx).
		Where("items @> ?::jsonb", probe).
		Find(&pools).Error
	return pools, err
}

// PoolsWithItemStatus returns pools holding at least one item in the status.
func (r *Repo) PoolsWithItemStatus(ctx context.Context, status string) ([]models.EquipmentPool, error) {
	probe := jsonArg([]map[string]string{{"status": status}})
	var pools []models.EquipmentPool
	err := r.DB.WithContext(ctx).
		Where("items @> ?::jsonb", probe).
		Order("pool_name ASC").
		Find(&pools).Error
	return pools, err
}

// DeletePoolCascade removes the pool, its requests, and every officer-ledger
// entry that references it.
func (r *Repo) DeletePoolCascade(ctx context.Context, poolID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.EquipmentPool{ID: poolID}).Error; err != nil {
			return err
		}
		if err := tx.Where("pool_id = ?", poolID).Delete(&models.Request{}).Error; err != nil {
			return err
		}

		probe := jsonArg([]map[string]string{{"equipmentPoolId": poolID}})
		var ledgers []models.OfficerHistory
		if err := tx.Where("history @> ?::jsonb", probe).Find(&ledgers).Error; err != nil {
			return err
		}
		for i := range ledgers {
			h := &ledgers[i]
			kept := h.History[:0]
			for _, e := range h.History {
				if e.EquipmentPoolID != poolID {
					kept = append(kept, e)
				}
			}
			h.History = kept
			if err := tx.Save(h).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PoolTotals aggregates the counter columns across all pools.
type PoolTotals struct {
	TotalEquipment     int64 `json:"totalEquipment"`
	AvailableEquipment int64 `json:"availableEquipment"`
	IssuedEquipment    int64 `json:"issuedEquipment"`
}

func (r *Repo) PoolTotals(ctx context.Context) (PoolTotals, error) {
	var t PoolTotals
	err := r.DB.WithContext(ctx).Model(&models.EquipmentPool{}).
		Select(`COALESCE(SUM(total_quantity), 0) AS total_equipment,
			COALESCE(SUM(available_count), 0) AS available_equipment,
			COALESCE(SUM(issued_count), 0) AS issued_equipment`).
		Scan(&t).Error
	return t, err
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

func (r *Repo) PoolCategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.DB.WithContext(ctx).Model(&models.EquipmentPool{}).
		Select("category, COALESCE(SUM(total_quantity), 0) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error
	return counts, err
}

// AllPools loads every pool; used by the reconcile sweep.
func (r *Repo) AllPools(ctx context.Context) ([]models.EquipmentPool, error) {
	var pools []models.EquipmentPool
	err := r.DB.WithContext(ctx).Find(&pools).Error
	return pools, err
}

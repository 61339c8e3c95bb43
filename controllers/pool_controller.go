package controllers

import (
	"net/http"
	"strings"

	"police_armory_tool/app"
	"police_armory_tool/db"
	"police_armory_tool/metrics"
	"police_armory_tool/models"
	"police_armory_tool/workflow"

	"github.com/google/uuid"
)

type PoolController struct{ *Srv }

func GetPoolController(s *Srv) *PoolController { return &PoolController{Srv: s} }

// POST /api/equipment
func (pc *PoolController) CreatePool(c *app.Ctx) {
	var in struct {
		PoolName               string   `json:"poolName" binding:"required"`
		Category               string   `json:"category" binding:"required"`
		SubCategory            string   `json:"subCategory"`
		Model                  string   `json:"model" binding:"required"`
		Manufacturer           string   `json:"manufacturer"`
		Location               string   `json:"location" binding:"required"`
		AuthorizedDesignations []string `json:"authorizedDesignations" binding:"required,min=1"`
		TotalQuantity          int      `json:"totalQuantity" binding:"required,min=1"`
		ItemPrefix             string   `json:"itemPrefix" binding:"required"`
		TotalCost              float64  `json:"totalCost"`
		Supplier               string   `json:"supplier"`
		Notes                  string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid pool payload: "+err.Error())
		return
	}

	prefix := strings.ToUpper(strings.TrimSpace(in.ItemPrefix))
	if len(prefix) < 2 || len(prefix) > 5 {
		fail(c, http.StatusBadRequest, "Item prefix must be 2-5 characters")
		return
	}
	if !validCategory(in.Category) {
		fail(c, http.StatusBadRequest, "Unknown category")
		return
	}
	for _, d := range in.AuthorizedDesignations {
		if !models.ValidDesignation(d) {
			fail(c, http.StatusBadRequest, "Unknown designation: "+d)
			return
		}
	}

	pool := &models.EquipmentPool{
		ID:                     uuid.NewString(),
		PoolName:               in.PoolName,
		Category:               in.Category,
		SubCategory:            in.SubCategory,
		Model:                  in.Model,
		Manufacturer:           in.Manufacturer,
		Location:               in.Location,
		AuthorizedDesignations: in.AuthorizedDesignations,
		TotalQuantity:          in.TotalQuantity,
		TotalCost:              in.TotalCost,
		Supplier:               in.Supplier,
		Notes:                  in.Notes,
		AddedBy:                app.UserID(c),
	}
	pool.MaterializeItems(prefix)

	if err := pc.Repo.CreatePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Equipment pool created", pool)
}

// PUT /api/equipment/:id
//
// Metadata only; the item set is fixed at creation.
func (pc *PoolController) UpdatePool(c *app.Ctx) {
	var in struct {
		PoolName               *string   `json:"poolName"`
		Location               *string   `json:"location"`
		AuthorizedDesignations *[]string `json:"authorizedDesignations"`
		Supplier               *string   `json:"supplier"`
		Notes                  *string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid update payload: "+err.Error())
		return
	}

	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}

	if in.PoolName != nil {
		pool.PoolName = *in.PoolName
	}
	if in.Location != nil {
		pool.Location = *in.Location
	}
	if in.AuthorizedDesignations != nil {
		for _, d := range *in.AuthorizedDesignations {
			if !models.ValidDesignation(d) {
				fail(c, http.StatusBadRequest, "Unknown designation: "+d)
				return
			}
		}
		pool.AuthorizedDesignations = *in.AuthorizedDesignations
	}
	if in.Supplier != nil {
		pool.Supplier = *in.Supplier
	}
	if in.Notes != nil {
		pool.Notes = *in.Notes
	}
	pool.LastModifiedBy = app.UserID(c)

	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Equipment pool updated", pool)
}

// GET /api/equipment/:id
func (pc *PoolController) GetPool(c *app.Ctx) {
	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	pool.UpdateCounts()
	ok(c, http.StatusOK, "", pool)
}

// GET /api/equipment
func (pc *PoolController) ListPools(c *app.Ctx) {
	pools, err := pc.Repo.ListPools(c.Request.Context(), db.PoolQuery{
		Category: c.Query("category"),
		Search:   c.Query("q"),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", pools)
}

// GET /api/officer/equipment
//
// Officer-facing listing, restricted to pools their designation may draw from.
func (pc *PoolController) AuthorizedPools(c *app.Ctx) {
	pools, err := pc.Repo.ListPools(c.Request.Context(), db.PoolQuery{
		Category:    c.Query("category"),
		Designation: app.Designation(c),
		Search:      c.Query("q"),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", pools)
}

// GET /api/officer/equipment/categories
func (pc *PoolController) Categories(c *app.Ctx) {
	categories, err := pc.Repo.PoolCategories(c.Request.Context(), app.Designation(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", categories)
}

// DELETE /api/equipment/:id
func (pc *PoolController) DeletePool(c *app.Ctx) {
	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	pool.UpdateCounts()
	if pool.IssuedCount > 0 {
		fail(c, http.StatusConflict, "Pool has items currently issued; collect them before deleting")
		return
	}
	if err := pc.Repo.DeletePoolCascade(c.Request.Context(), pool.ID); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Equipment pool deleted", nil)
}

// POST /api/equipment/:id/issue
//
// Direct admin issue outside the request workflow. Used at the armory counter
// when the officer is standing there.
func (pc *PoolController) IssueFromPool(c *app.Ctx) {
	var in struct {
		OfficerID string `json:"officerId" binding:"required"`
		Purpose   string `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Officer ID is required")
		return
	}

	officer, err := pc.Repo.FindUserByOfficerID(c.Request.Context(), in.OfficerID)
	if err != nil {
		failErr(c, err)
		return
	}
	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}

	item, err := pool.IssueItem(models.Custody{
		UserID:      officer.ID,
		OfficerID:   officer.OfficerID,
		OfficerName: officer.FullName,
		Designation: officer.Designation,
		Purpose:     in.Purpose,
	}, app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	metrics.ItemsIssued.Inc()
	ok(c, http.StatusOK, "Item issued", item)
}

// POST /api/equipment/:id/return
//
// Direct admin return outside the request workflow.
func (pc *PoolController) ReturnToPool(c *app.Ctx) {
	var in struct {
		UniqueID  string `json:"uniqueId" binding:"required"`
		Condition string `json:"condition" binding:"omitempty,oneof=Excellent Good Fair Poor 'Out of Service'"`
		Remarks   string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid return payload: "+err.Error())
		return
	}

	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	item, err := pool.ReturnItem(in.UniqueID, in.Condition, in.Remarks, app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	metrics.ItemsReturned.Inc()
	ok(c, http.StatusOK, "Item returned", item)
}

// GET /api/equipment/:id/items/:uniqueId
//
// Histories are returned newest first.
func (pc *PoolController) ItemHistory(c *app.Ctx) {
	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	item := pool.FindItemByUniqueID(c.Param("uniqueId"))
	if item == nil {
		fail(c, http.StatusNotFound, "Item not found in pool")
		return
	}

	usage := make([]models.UsageEntry, len(item.UsageHistory))
	for i, e := range item.UsageHistory {
		usage[len(usage)-1-i] = e
	}
	maintenance := make([]models.MaintenanceEntry, len(item.MaintenanceHistory))
	for i, e := range item.MaintenanceHistory {
		maintenance[len(maintenance)-1-i] = e
	}

	ok(c, http.StatusOK, "", app.H{
		"uniqueId":           item.UniqueID,
		"status":             item.Status,
		"condition":          item.Condition,
		"currentlyIssuedTo":  item.CurrentlyIssuedTo,
		"usageHistory":       usage,
		"maintenanceHistory": maintenance,
		"lostHistory":        item.LostHistory,
	})
}

// GET /api/equipment/maintenance
//
// Admin attention queue: every item under maintenance, lost items included.
func (pc *PoolController) MaintenanceItems(c *app.Ctx) {
	pools, err := pc.Repo.PoolsWithItemStatus(c.Request.Context(), models.StatusMaintenance)
	if err != nil {
		failErr(c, err)
		return
	}

	type maintenanceItem struct {
		PoolID   string      `json:"poolId"`
		PoolName string      `json:"poolName"`
		Category string      `json:"category"`
		Item     models.Item `json:"item"`
	}
	var queue []maintenanceItem
	for i := range pools {
		p := &pools[i]
		for j := range p.Items {
			if p.Items[j].Status == models.StatusMaintenance {
				queue = append(queue, maintenanceItem{
					PoolID:   p.ID,
					PoolName: p.PoolName,
					Category: p.Category,
					Item:     p.Items[j],
				})
			}
		}
	}
	ok(c, http.StatusOK, "", queue)
}

// POST /api/equipment/:id/items/:uniqueId/repair
func (pc *PoolController) CompleteMaintenance(c *app.Ctx) {
	var in struct {
		Action    string  `json:"action" binding:"required"`
		Condition string  `json:"condition" binding:"required,oneof=Excellent Good"`
		Cost      float64 `json:"cost"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Repair action and a final condition of Excellent or Good are required")
		return
	}

	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	item, err := pool.CompleteMaintenance(c.Param("uniqueId"), in.Action, in.Condition, in.Cost, app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	// Stamp the originating maintenance request Completed, if one exists.
	_ = pc.Repo.CompleteMaintenanceRequest(c.Request.Context(), item.UniqueID, app.UserID(c))
	ok(c, http.StatusOK, "Maintenance completed", item)
}

// POST /api/equipment/:id/items/:uniqueId/write-off
func (pc *PoolController) WriteOffLost(c *app.Ctx) {
	var in struct {
		Notes string `json:"notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Final report notes are required")
		return
	}

	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	item, err := pool.WriteOffLost(c.Param("uniqueId"), in.Notes, app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Item written off as lost", item)
}

// POST /api/equipment/:id/items/:uniqueId/recover
func (pc *PoolController) MarkRecovered(c *app.Ctx) {
	var in struct {
		Condition string `json:"condition" binding:"required,oneof=Excellent Good Fair Poor"`
		Notes     string `json:"notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Recovered condition and notes are required")
		return
	}

	pool, err := pc.Repo.FindPoolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	item, err := pool.MarkRecovered(c.Param("uniqueId"), in.Condition, in.Notes, app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if err := pc.Repo.SavePool(c.Request.Context(), pool); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Item marked recovered", item)
}

// GET /api/equipment/issued
//
// Every item currently in an officer's hands, across all pools.
func (pc *PoolController) CurrentlyIssued(c *app.Ctx) {
	pools, err := pc.Repo.PoolsWithItemStatus(c.Request.Context(), models.StatusIssued)
	if err != nil {
		failErr(c, err)
		return
	}

	type issuedItem struct {
		PoolID   string      `json:"poolId"`
		PoolName string      `json:"poolName"`
		Category string      `json:"category"`
		Item     models.Item `json:"item"`
	}
	var out []issuedItem
	for i := range pools {
		p := &pools[i]
		for j := range p.Items {
			if p.Items[j].Status == models.StatusIssued {
				out = append(out, issuedItem{
					PoolID:   p.ID,
					PoolName: p.PoolName,
					Category: p.Category,
					Item:     p.Items[j],
				})
			}
		}
	}
	ok(c, http.StatusOK, "", out)
}

// POST /api/admin/reconcile
func (pc *PoolController) Reconcile(c *app.Ctx) {
	report, err := workflow.Reconcile(c.Request.Context(), pc.Repo)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Reconcile sweep finished", report)
}

func validCategory(category string) bool {
	for _, known := range models.PoolCategories {
		if known == category {
			return true
		}
	}
	return false
}

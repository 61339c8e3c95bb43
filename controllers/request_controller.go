package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"police_armory_tool/app"
	"police_armory_tool/db"
	"police_armory_tool/metrics"
	"police_armory_tool/models"
)

type RequestController struct{ *Srv }

func GetRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /api/officer/requests/issue
func (rc *RequestController) CreateIssueRequest(c *app.Ctx) {
	var in struct {
		PoolID             string     `json:"poolId" binding:"required"`
		Reason             string     `json:"reason" binding:"required"`
		Priority           string     `json:"priority" binding:"omitempty,oneof=Low Medium High Urgent"`
		ExpectedReturnDate *time.Time `json:"expectedReturnDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	userID := app.UserID(c)
	pool, err := rc.Repo.FindPoolByID(c.Request.Context(), in.PoolID)
	if err != nil {
		failErr(c, err)
		return
	}
	if !pool.AuthorizedFor(app.Designation(c)) {
		fail(c, http.StatusForbidden, "Your designation is not authorized for this equipment")
		return
	}
	if pool.HasItemIssuedTo(userID) {
		fail(c, http.StatusConflict, "You already hold an item from this pool")
		return
	}
	pending, err := rc.Repo.HasPendingRequest(c.Request.Context(), userID, in.PoolID)
	if err != nil {
		failErr(c, err)
		return
	}
	if pending {
		fail(c, http.StatusConflict, "You already have a pending request for this pool")
		return
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	req := &models.Request{
		RequestedBy:        userID,
		PoolID:             pool.ID,
		PoolName:           pool.PoolName,
		RequestType:        models.RequestTypeIssue,
		Priority:           priority,
		Reason:             in.Reason,
		ExpectedReturnDate: in.ExpectedReturnDate,
	}
	if err := rc.Repo.CreateRequest(c.Request.Context(), req); err != nil {
		failErr(c, err)
		return
	}
	metrics.RequestsCreated.WithLabelValues(models.RequestTypeIssue).Inc()
	ok(c, http.StatusCreated, "Issue request submitted", req)
}

// POST /api/officer/requests/item
//
// Return, Maintenance, and Lost requests name the exact item the officer
// holds; the pool must agree that item is issued to them.
func (rc *RequestController) CreateItemRequest(c *app.Ctx) {
	var in struct {
		PoolID      string `json:"poolId" binding:"required"`
		UniqueID    string `json:"uniqueId" binding:"required"`
		RequestType string `json:"requestType" binding:"required,oneof=Return Maintenance Lost"`
		Reason      string `json:"reason" binding:"required"`
		Priority    string `json:"priority" binding:"omitempty,oneof=Low Medium High Urgent"`
		Condition   string `json:"condition" binding:"omitempty,oneof=Excellent Good Fair Poor 'Out of Service' Lost"`

		FIRNumber           string     `json:"firNumber"`
		FIRDate             *time.Time `json:"firDate"`
		PoliceStation       string     `json:"policeStation"`
		DateOfLoss          *time.Time `json:"dateOfLoss"`
		PlaceOfLoss         string     `json:"placeOfLoss"`
		DutyAtTimeOfLoss    string     `json:"dutyAtTimeOfLoss"`
		RemedialActionTaken string     `json:"remedialActionTaken"`
		Witnesses           string     `json:"witnesses"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	userID := app.UserID(c)
	pool, err := rc.Repo.FindPoolByID(c.Request.Context(), in.PoolID)
	if err != nil {
		failErr(c, err)
		return
	}
	item := pool.FindItemByUniqueID(in.UniqueID)
	if item == nil {
		fail(c, http.StatusNotFound, "Item not found in pool")
		return
	}
	if item.Status != models.StatusIssued || item.CurrentlyIssuedTo == nil || item.CurrentlyIssuedTo.UserID != userID {
		fail(c, http.StatusForbidden, "This item is not currently issued to you")
		return
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
		if in.RequestType == models.RequestTypeLost {
			priority = models.PriorityUrgent
		}
	}
	req := &models.Request{
		RequestedBy:      userID,
		PoolID:           pool.ID,
		PoolName:         pool.PoolName,
		AssignedUniqueID: in.UniqueID,
		RequestType:      in.RequestType,
		Priority:         priority,
		Reason:           in.Reason,
		Condition:        in.Condition,
	}

	if in.RequestType == models.RequestTypeLost {
		if in.Condition != models.ConditionLost {
			fail(c, http.StatusBadRequest, "Lost reports must declare condition Lost")
			return
		}
		req.FIRNumber = strings.TrimSpace(in.FIRNumber)
		req.FIRDate = in.FIRDate
		req.PoliceStation = in.PoliceStation
		req.DateOfLoss = in.DateOfLoss
		req.PlaceOfLoss = in.PlaceOfLoss
		req.DutyAtTimeOfLoss = in.DutyAtTimeOfLoss
		req.RemedialActionTaken = in.RemedialActionTaken
		req.Witnesses = in.Witnesses
		if missing := req.RequiredLostFields(); len(missing) > 0 {
			fail(c, http.StatusBadRequest, "Missing mandatory loss-report fields: "+strings.Join(missing, ", "))
			return
		}
	}

	if err := rc.Repo.CreateRequest(c.Request.Context(), req); err != nil {
		failErr(c, err)
		return
	}
	metrics.RequestsCreated.WithLabelValues(in.RequestType).Inc()
	ok(c, http.StatusCreated, in.RequestType+" request submitted", req)
}

// DELETE /api/officer/requests/:id
func (rc *RequestController) CancelRequest(c *app.Ctx) {
	req, err := rc.Approver.Cancel(c.Request.Context(), c.Param("id"), app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Request cancelled", req)
}

// GET /api/officer/requests
func (rc *RequestController) MyRequests(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := rc.Repo.ListRequests(c.Request.Context(), db.RequestQuery{
		RequestedBy: app.UserID(c),
		Status:      c.Query("status"),
		RequestType: c.Query("type"),
		Page:        page,
		Size:        size,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", res)
}

// GET /api/officer/history
func (rc *RequestController) MyHistory(c *app.Ctx) {
	h, err := rc.Repo.FindHistoryByUserID(c.Request.Context(), app.UserID(c))
	if err != nil {
		if db.IsNotFound(err) {
			ok(c, http.StatusOK, "", app.H{"history": []models.HistoryEntry{}})
			return
		}
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", h)
}

// GET /api/officer/equipment/issued
//
// The officer's current holdings, read from the pools rather than the ledger
// so a missed ledger write cannot hide an item.
func (rc *RequestController) MyIssuedEquipment(c *app.Ctx) {
	userID := app.UserID(c)
	pools, err := rc.Repo.PoolsWithUserIssued(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}

	type holding struct {
		PoolID   string      `json:"poolId"`
		PoolName string      `json:"poolName"`
		Category string      `json:"category"`
		Item     models.Item `json:"item"`
	}
	var out []holding
	for i := range pools {
		p := &pools[i]
		for j := range p.Items {
			it := &p.Items[j]
			if it.Status == models.StatusIssued && it.CurrentlyIssuedTo != nil && it.CurrentlyIssuedTo.UserID == userID {
				out = append(out, holding{
					PoolID:   p.ID,
					PoolName: p.PoolName,
					Category: p.Category,
					Item:     *it,
				})
			}
		}
	}
	ok(c, http.StatusOK, "", out)
}

// GET /api/officer/dashboard
func (rc *RequestController) Dashboard(c *app.Ctx) {
	ctx := c.Request.Context()
	userID := app.UserID(c)

	pending, err := rc.Repo.CountRequests(ctx, db.RequestQuery{RequestedBy: userID, Status: models.RequestPending})
	if err != nil {
		failErr(c, err)
		return
	}
	holdings, err := rc.Repo.PoolsWithUserIssued(ctx, userID)
	if err != nil {
		failErr(c, err)
		return
	}
	issued := 0
	for i := range holdings {
		for j := range holdings[i].Items {
			it := &holdings[i].Items[j]
			if it.Status == models.StatusIssued && it.CurrentlyIssuedTo != nil && it.CurrentlyIssuedTo.UserID == userID {
				issued++
			}
		}
	}
	recent, err := rc.Repo.RecentRequestsByUser(ctx, userID, 5)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "", app.H{
		"pendingRequests": pending,
		"issuedItems":     issued,
		"recentRequests":  recent,
	})
}

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"police_armory_tool/app"
	"police_armory_tool/db"
	"police_armory_tool/models"
)

type AdminController struct{ *Srv }

func GetAdminController(s *Srv) *AdminController { return &AdminController{Srv: s} }

// GET /api/admin/requests
func (ac *AdminController) ListRequests(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := ac.Repo.ListRequests(c.Request.Context(), db.RequestQuery{
		Status:      c.Query("status"),
		RequestType: c.Query("type"),
		RequestedBy: c.Query("requestedBy"),
		Page:        page,
		Size:        size,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", res)
}

// GET /api/admin/requests/:id
func (ac *AdminController) GetRequest(c *app.Ctx) {
	req, err := ac.Repo.FindRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", req)
}

// POST /api/admin/requests/:id/approve
func (ac *AdminController) ApproveRequest(c *app.Ctx) {
	var in struct {
		Notes     string `json:"notes"`
		Condition string `json:"condition" binding:"omitempty,oneof=Excellent Good Fair Poor 'Out of Service'"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid approval payload: "+err.Error())
		return
	}

	req, err := ac.Approver.Approve(c.Request.Context(), c.Param("id"), app.UserID(c), in.Notes, in.Condition)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Request approved", req)
}

// POST /api/admin/requests/:id/reject
func (ac *AdminController) RejectRequest(c *app.Ctx) {
	var in struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "A rejection reason is required")
		return
	}

	req, err := ac.Approver.Reject(c.Request.Context(), c.Param("id"), app.UserID(c), in.Reason)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Request rejected", req)
}

// GET /api/admin/dashboard
func (ac *AdminController) Dashboard(c *app.Ctx) {
	ctx := c.Request.Context()

	totals, err := ac.Repo.PoolTotals(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	byCategory, err := ac.Repo.PoolCategoryCounts(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	pendingCount, err := ac.Repo.CountRequests(ctx, db.RequestQuery{Status: models.RequestPending})
	if err != nil {
		failErr(c, err)
		return
	}
	weekRequests, err := ac.Repo.CountRequestsSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		failErr(c, err)
		return
	}
	officers, err := ac.Repo.CountUsers(ctx, models.RoleOfficer, true)
	if err != nil {
		failErr(c, err)
		return
	}
	recentPending, err := ac.Repo.RecentPendingRequests(ctx, 10)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "", app.H{
		"totals":           totals,
		"byCategory":       byCategory,
		"pendingRequests":  pendingCount,
		"requestsThisWeek": weekRequests,
		"activeOfficers":   officers,
		"recentPending":    recentPending,
	})
}

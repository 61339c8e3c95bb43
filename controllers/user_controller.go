package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"police_armory_tool/app"
	"police_armory_tool/db"
	"police_armory_tool/models"

	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// POST /api/admin/users
func (uc *UserController) CreateUser(c *app.Ctx) {
	var in struct {
		OfficerID     string `json:"officerId" binding:"required"`
		FullName      string `json:"fullName" binding:"required"`
		Email         string `json:"email" binding:"required,email"`
		Password      string `json:"password" binding:"required,min=8"`
		Rank          string `json:"rank"`
		Designation   string `json:"designation" binding:"required"`
		PoliceStation string `json:"policeStation"`
		Role          string `json:"role" binding:"omitempty,oneof=admin officer"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid user payload: "+err.Error())
		return
	}

	in.OfficerID = strings.ToUpper(strings.TrimSpace(in.OfficerID))
	if !models.ValidOfficerID(in.OfficerID) {
		fail(c, http.StatusBadRequest, "Invalid officer ID format (expected STATE+RANK+YEAR+SERIAL, e.g. MHSP20210078)")
		return
	}
	if !models.ValidDesignation(in.Designation) {
		fail(c, http.StatusBadRequest, "Unknown designation")
		return
	}

	taken, err := uc.Repo.UserExists(c.Request.Context(), in.Email, in.OfficerID)
	if err != nil {
		failErr(c, err)
		return
	}
	if taken {
		fail(c, http.StatusConflict, "Email or officer ID already registered")
		return
	}

	role := in.Role
	if role == "" {
		role = models.RoleOfficer
	}
	u := &models.User{
		ID:            uuid.NewString(),
		OfficerID:     in.OfficerID,
		FullName:      in.FullName,
		Email:         strings.ToLower(in.Email),
		Rank:          in.Rank,
		Designation:   in.Designation,
		PoliceStation: in.PoliceStation,
		Role:          role,
		IsActive:      true,
		CreatedBy:     app.UserID(c),
	}
	if err := u.SetPassword(in.Password); err != nil {
		fail(c, http.StatusInternalServerError, "Could not hash password")
		return
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "User created", u)
}

// GET /api/admin/users
func (uc *UserController) ListUsers(c *app.Ctx) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), c.Query("role"), page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", res)
}

// GET /api/admin/users/:id
func (uc *UserController) GetUser(c *app.Ctx) {
	u, err := uc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", u)
}

// PUT /api/admin/users/:id
func (uc *UserController) UpdateUser(c *app.Ctx) {
	var in struct {
		FullName      *string `json:"fullName"`
		Rank          *string `json:"rank"`
		Designation   *string `json:"designation"`
		PoliceStation *string `json:"policeStation"`
		Role          *string `json:"role" binding:"omitempty,oneof=admin officer"`
		IsActive      *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid update payload: "+err.Error())
		return
	}

	targetID := c.Param("id")
	target, err := uc.Repo.FindUserByID(c.Request.Context(), targetID)
	if err != nil {
		failErr(c, err)
		return
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Rank != nil {
		updates["rank"] = *in.Rank
	}
	if in.Designation != nil {
		if !models.ValidDesignation(*in.Designation) {
			fail(c, http.StatusBadRequest, "Unknown designation")
			return
		}
		updates["designation"] = *in.Designation
	}
	if in.PoliceStation != nil {
		updates["police_station"] = *in.PoliceStation
	}

	demoting := in.Role != nil && target.IsAdmin() && *in.Role != models.RoleAdmin
	deactivating := in.IsActive != nil && target.IsActive && !*in.IsActive
	if deactivating && targetID == app.UserID(c) {
		fail(c, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}
	if (demoting || deactivating) && target.IsAdmin() {
		n, err := uc.Repo.CountActiveAdmins(c.Request.Context())
		if err != nil {
			failErr(c, err)
			return
		}
		if n <= 1 {
			fail(c, http.StatusBadRequest, "Cannot remove the last active admin")
			return
		}
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) == 0 {
		ok(c, http.StatusOK, "Nothing to update", target)
		return
	}
	updated, err := uc.Repo.UpdateUser(c.Request.Context(), targetID, updates)
	if err != nil {
		failErr(c, err)
		return
	}
	if deactivating {
		_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), targetID)
	}
	ok(c, http.StatusOK, "User updated", updated)
}

// DELETE /api/admin/users/:id
//
// Refuses while the officer still holds equipment; the items would otherwise
// point at a custody record with no owner.
func (uc *UserController) DeleteUser(c *app.Ctx) {
	targetID := c.Param("id")
	if targetID == app.UserID(c) {
		fail(c, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	target, err := uc.Repo.FindUserByID(c.Request.Context(), targetID)
	if err != nil {
		failErr(c, err)
		return
	}
	if target.IsAdmin() {
		n, err := uc.Repo.CountActiveAdmins(c.Request.Context())
		if err != nil {
			failErr(c, err)
			return
		}
		if n <= 1 {
			fail(c, http.StatusBadRequest, "Cannot delete the last active admin")
			return
		}
	}

	holding, err := uc.Repo.PoolsWithUserIssued(c.Request.Context(), targetID)
	if err != nil {
		failErr(c, err)
		return
	}
	if len(holding) > 0 {
		fail(c, http.StatusConflict, "Officer still has equipment issued; collect it before deleting the account")
		return
	}

	if err := uc.Repo.DeleteUserByID(c.Request.Context(), targetID); err != nil {
		failErr(c, err)
		return
	}
	_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), targetID)
	ok(c, http.StatusOK, "User deleted", nil)
}

// GET /api/admin/users/:id/history
func (uc *UserController) GetUserHistory(c *app.Ctx) {
	h, err := uc.Repo.FindHistoryByUserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		// The ledger document is created lazily on the first approval; no
		// document just means an empty history.
		if db.IsNotFound(err) {
			ok(c, http.StatusOK, "", app.H{"history": []models.HistoryEntry{}})
			return
		}
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", h)
}

package controllers

import (
	"errors"
	"net/http"

	"police_armory_tool/app"
	"police_armory_tool/config"
	"police_armory_tool/db"
	"police_armory_tool/models"
	"police_armory_tool/session"
	"police_armory_tool/workflow"
)

type Srv struct {
	Repo     *db.Repo
	AppSess  *session.AppSessionStore
	Approver *workflow.Approver
	Cfg      config.Config
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:     repo,
		AppSess:  a.AppSessions(),
		Approver: workflow.NewApprover(repo),
		Cfg:      a.Config,
	}
}

// --- response helpers ---

func ok(c *app.Ctx, status int, message string, data interface{}) {
	body := app.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *app.Ctx, status int, message string) {
	c.JSON(status, app.H{"success": false, "message": message})
}

// failErr maps domain errors onto HTTP statuses.
func failErr(c *app.Ctx, err error) {
	switch {
	case db.IsNotFound(err):
		fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrNoAvailableItems),
		errors.Is(err, models.ErrItemNotIssued),
		errors.Is(err, models.ErrItemNotInMaintenance),
		errors.Is(err, models.ErrAlreadyWrittenOff),
		errors.Is(err, models.ErrNotAwaitingWriteOff),
		errors.Is(err, models.ErrNotLostItem),
		errors.Is(err, models.ErrRequestNotPending):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotAuthorized),
		errors.Is(err, models.ErrNotRequester):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrItemNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

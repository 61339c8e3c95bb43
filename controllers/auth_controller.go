package controllers

import (
	"net/http"

	"police_armory_tool/app"
	"police_armory_tool/metrics"
	"police_armory_tool/session"

	"github.com/google/uuid"
)

type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login
func (ac *AuthController) Login(c *app.Ctx) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil || !u.CheckPassword(in.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !u.IsActive {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		fail(c, http.StatusForbidden, "Account is deactivated")
		return
	}

	sessionID := uuid.NewString()
	if err := ac.AppSess.Create(c.Request.Context(), sessionID, u.ID, u.Role); err != nil {
		fail(c, http.StatusInternalServerError, "Could not create session")
		return
	}
	token, err := session.SignToken([]byte(ac.Cfg.JWTSecret), sessionID, u.ID, u.Role, ac.Cfg.SessionTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not sign token")
		return
	}

	_ = ac.Repo.TouchUserLogin(c.Request.Context(), u.ID, c.ClientIP(), c.Request.UserAgent())
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	ok(c, http.StatusOK, "Login successful", app.H{"token": token, "user": u})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *app.Ctx) {
	if v, exists := c.Get("sessionID"); exists {
		if sid, _ := v.(string); sid != "" {
			_ = ac.AppSess.Delete(c.Request.Context(), sid)
		}
	}
	ok(c, http.StatusOK, "Logged out", nil)
}

// GET /api/auth/me
func (ac *AuthController) Whoami(c *app.Ctx) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", u)
}

// PUT /api/auth/password
func (ac *AuthController) ChangePassword(c *app.Ctx) {
	var in struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Current and new password are required (new password min 8 chars)")
		return
	}

	u, err := ac.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if !u.CheckPassword(in.CurrentPassword) {
		fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if err := u.SetPassword(in.NewPassword); err != nil {
		fail(c, http.StatusInternalServerError, "Could not update password")
		return
	}
	if _, err := ac.Repo.UpdateUser(c.Request.Context(), u.ID, map[string]interface{}{"password": u.Password}); err != nil {
		failErr(c, err)
		return
	}

	// Revoke every session, the current one included; outstanding tokens die
	// with them and the client must log in with the new password.
	_ = ac.AppSess.RevokeAllForUser(c.Request.Context(), u.ID)
	ok(c, http.StatusOK, "Password updated, please log in again", nil)
}

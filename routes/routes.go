package routes

import (
	"time"

	"police_armory_tool/app"
	"police_armory_tool/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	userCtl := controllers.GetUserController(s)
	poolCtl := controllers.GetPoolController(s)
	reqCtl := controllers.GetRequestController(s)
	adminCtl := controllers.GetAdminController(s)

	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config)
	adminMW := app.AdminOnly()
	officerMW := app.OfficerOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// Auth
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authed := r.Group("/api/auth", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/me", authCtl.Whoami)
		authed.PUT("/password", authCtl.ChangePassword)
	}

	// ------------------------------
	// User management (admin only)
	// ------------------------------
	users := r.Group("/api/admin/users", authMW, adminMW)
	{
		users.POST("", userCtl.CreateUser)
		users.GET("", userCtl.ListUsers) // ?q=&role=&page=&size=
		users.GET("/:id", userCtl.GetUser)
		users.PUT("/:id", userCtl.UpdateUser)
		users.DELETE("/:id", userCtl.DeleteUser)
		users.GET("/:id/history", userCtl.GetUserHistory)
	}

	// ------------------------------
	// Equipment pools (admin only)
	// ------------------------------
	equipment := r.Group("/api/equipment", authMW, adminMW)
	{
		equipment.POST("", poolCtl.CreatePool)
		equipment.GET("", poolCtl.ListPools) // ?category=&q=
		equipment.GET("/maintenance", poolCtl.MaintenanceItems)
		equipment.GET("/issued", poolCtl.CurrentlyIssued)
		equipment.GET("/:id", poolCtl.GetPool)
		equipment.PUT("/:id", poolCtl.UpdatePool)
		equipment.DELETE("/:id", poolCtl.DeletePool)
		equipment.POST("/:id/issue", poolCtl.IssueFromPool)
		equipment.POST("/:id/return", poolCtl.ReturnToPool)
		equipment.GET("/:id/items/:uniqueId", poolCtl.ItemHistory)
		equipment.POST("/:id/items/:uniqueId/repair", poolCtl.CompleteMaintenance)
		equipment.POST("/:id/items/:uniqueId/write-off", poolCtl.WriteOffLost)
		equipment.POST("/:id/items/:uniqueId/recover", poolCtl.MarkRecovered)
	}

	// ------------------------------
	// Request processing (admin only)
	// ------------------------------
	admin := r.Group("/api/admin", authMW, adminMW)
	{
		admin.GET("/dashboard", adminCtl.Dashboard)
		admin.GET("/requests", adminCtl.ListRequests) // ?status=&type=&requestedBy=&page=&size=
		admin.GET("/requests/:id", adminCtl.GetRequest)
		admin.POST("/requests/:id/approve", adminCtl.ApproveRequest)
		admin.POST("/requests/:id/reject", adminCtl.RejectRequest)
		admin.POST("/reconcile", poolCtl.Reconcile)
	}

	// ------------------------------
	// Officer self-service
	// ------------------------------
	officer := r.Group("/api/officer", authMW, officerMW, seenMW)
	{
		officer.GET("/dashboard", reqCtl.Dashboard)
		officer.GET("/equipment", poolCtl.AuthorizedPools) // ?category=&q=
		officer.GET("/equipment/categories", poolCtl.Categories)
		officer.GET("/equipment/issued", reqCtl.MyIssuedEquipment)
		officer.POST("/requests/issue", reqCtl.CreateIssueRequest)
		officer.POST("/requests/item", reqCtl.CreateItemRequest)
		officer.GET("/requests", reqCtl.MyRequests) // ?status=&type=&page=&size=
		officer.DELETE("/requests/:id", reqCtl.CancelRequest)
		officer.GET("/history", reqCtl.MyHistory)
	}
}

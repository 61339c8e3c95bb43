package main

import (
	"context"
	"log"

	"police_armory_tool/app"
	"police_armory_tool/db"
	"police_armory_tool/routes"
)

func main() {
	application := app.MustNew()
	defer application.Close()

	app.BootstrapFirstAdmin(context.Background(), application.Config, db.NewRepo(application.DB))

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	log.Printf("listening on :%s", application.Config.Port)
	_ = r.Run(":" + application.Config.Port)
}

package app

import (
	"context"
	"log"

	"police_armory_tool/config"
	"police_armory_tool/db"
	"police_armory_tool/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin creates the initial admin account from the environment
// when no active admin exists. Without it a fresh deployment has no way in.
func BootstrapFirstAdmin(ctx context.Context, cfg config.Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}
	n, err := repo.CountActiveAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: counting admins: %v", err)
		return
	}
	if n > 0 {
		return
	}

	admin := &models.User{
		ID:          uuid.NewString(),
		OfficerID:   "INDGP20000001",
		FullName:    "System Administrator",
		Email:       cfg.BootstrapEmail,
		Rank:        "DGP",
		Designation: "Director General of Police (DGP)",
		Role:        models.RoleAdmin,
		IsActive:    true,
	}
	if err := admin.SetPassword(cfg.BootstrapPassword); err != nil {
		log.Printf("bootstrap: hashing password: %v", err)
		return
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		log.Printf("bootstrap: creating admin: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first admin account for %s", cfg.BootstrapEmail)
}

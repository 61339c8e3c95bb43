package db

import (
	"fmt"
	"log"

	"police_armory_tool/config"
	"police_armory_tool/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB(cfg config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.EquipmentPool{},
		&models.Request{},
		&models.OfficerHistory{},
	); err != nil {
		return err
	}

	// GIN indexes for the jsonb containment queries the repo relies on
	// (items issued to a user, items in maintenance, ledger entries by pool).
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_items_gin
	  ON %s USING GIN (items jsonb_path_ops);
	`, models.PoolTable, models.PoolTable)).Error; err != nil {
		return err
	}

	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_history_gin
	  ON %s USING GIN (history jsonb_path_ops);
	`, models.OfficerHistoryTable, models.OfficerHistoryTable)).Error; err != nil {
		return err
	}

	return nil
}

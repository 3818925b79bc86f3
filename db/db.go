package db

import (
	"fmt"
	"log/slog"
	"os"

	"Gin_postgres_redis_donations/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectDB opens Postgres and migrates. Failures are fatal at startup.
func ConnectDB(dsn string) *gorm.DB {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := Migrate(conn); err != nil {
		slog.Error("failed to migrate models", "err", err)
		os.Exit(1)
	}
	slog.Info("database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Item{}, &models.Request{}, &models.GlobalStats{}); err != nil {
		return err
	}

	// 同一物品最多一条 approved/collected
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_claim_per_item
	  ON %s (item_id)
	  WHERE status IN ('approved', 'collected');
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// 同一请求人对同一物品最多一条 pending
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_pending_per_requester
	  ON %s (item_id, requester_id)
	  WHERE status = 'pending';
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// quota lookups
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_requester_status
	  ON %s (requester_id, status);
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GlobalStats{ID: models.GlobalStatsID}).Error
}

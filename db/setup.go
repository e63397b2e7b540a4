package db

import (
	"github.com/glowfit-dev/glowfit/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the shared connection pool. The returned handle is injected
// into handlers and the scheduler; Close tears it down on shutdown.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func Migrate(database *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.GlowArea{},
		&models.GlowDevice{},
		&models.GlowPlan{},
		&models.GlowHistory{},
		&models.FitnessItem{},
		&models.FitnessHistory{},
		&models.UserVideo{},
		&models.Notification{},
		&models.GlowReminder{},
		&models.FitnessReminder{},
	}

	migrator := database.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := database.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}

func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()

	if err != nil {
		return err
	}

	return sqlDB.Close()
}

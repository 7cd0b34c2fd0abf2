package database

import (
	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	err = DB.AutoMigrate(
		&models.Property{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("auto-migration failed")
	}

	if err := SeedRBAC(DB); err != nil {
		log.Fatal().Err(err).Msg("role/permission seeding failed")
	}

	if !cfg.IsProduction() {
		if err := SeedDevAdmin(DB); err != nil {
			log.Warn().Err(err).Msg("dev admin seeding failed")
		}
	}

	log.Info().Msg("database ready, migrations and seed applied")
}

// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"log"
	"os"
	"time"

	"cardvault/internal/config"
	"cardvault/internal/models"
	"cardvault/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// InitDB initializes the database and cache connections.
// It sets up the connection pool, performs migrations, and seeds the
// currency table and active reload charge when they are empty.
func InitDB() error {
	initPostgres()

	redisCfg := &cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
	redisClient := cache.NewRedisClient(redisCfg)
	CacheService = cache.NewCacheService(redisClient, 24*time.Hour)

	err := DB.AutoMigrate(
		&models.User{},
		&models.Currency{},
		&models.Wallet{},
		&models.VirtualCard{},
		&models.CardCharge{},
		&models.Transaction{},
	)
	if err != nil {
		return err
	}

	seedDefaults()
	return nil
}

func initPostgres() {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "cardvault") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	logLevel := logger.Silent
	if !config.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold: 200 * time.Millisecond,
				LogLevel:      logLevel,
				Colorful:      !config.IsProduction(),
			},
		),
	})
	if err != nil {
		log.Fatal("Failed to connect to postgres:", err)
	}

	DB = db
}

// seedDefaults inserts a minimal currency set and the active reload
// charge so a fresh database can serve the deposit flow immediately.
func seedDefaults() {
	var count int64
	DB.Model(&models.Currency{}).Count(&count)
	if count == 0 {
		DB.Create(&[]models.Currency{
			{Code: "USD", Name: "US Dollar", Symbol: "$", Rate: 1.0},
			{Code: "EUR", Name: "Euro", Symbol: "€", Rate: 0.9},
			{Code: "GBP", Name: "Pound Sterling", Symbol: "£", Rate: 0.78},
		})
	}

	DB.Model(&models.CardCharge{}).Count(&count)
	if count == 0 {
		DB.Create(&models.CardCharge{
			Slug:          models.CardReloadChargeSlug,
			FixedCharge:   1,
			PercentCharge: 2,
			MinLimit:      10,
			MaxLimit:      5000,
			DailyLimit:    1000,
			MonthlyLimit:  10000,
			Active:        true,
		})
	}
}

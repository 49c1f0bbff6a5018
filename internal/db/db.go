package db

import (
	"fmt"
	"resepi/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres, migrates the schema and seeds categories.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logrus.Info("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logrus.Info("Database migration completed")

	if err := SeedCategories(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Recipe{},
		&models.RecipeImage{},
		&models.Guide{},
		&models.Comment{},
		&models.Subscriber{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// DefaultCategories 初始分类
var DefaultCategories = []models.Category{
	{Name: "Kuih-muih", Slug: "kuih-muih"},
	{Name: "Lauk Ayam", Slug: "lauk-ayam"},
	{Name: "Lauk Daging", Slug: "lauk-daging"},
	{Name: "Makanan Laut", Slug: "makanan-laut"},
	{Name: "Minuman", Slug: "minuman"},
	{Name: "Nasi", Slug: "nasi"},
	{Name: "Pencuci Mulut", Slug: "pencuci-mulut"},
	{Name: "Sayur-sayuran", Slug: "sayur-sayuran"},
}

func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		logrus.Debug("Categories already seeded, skipping")
		return nil
	}

	for _, category := range DefaultCategories {
		category := category
		if err := db.Create(&category).Error; err != nil {
			logrus.WithError(err).WithField("category", category.Name).Warn("Failed to create category")
		}
	}
	logrus.Info("Initial categories created successfully")
	return nil
}

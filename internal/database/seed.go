// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/models"
)

var defaultCategories = []models.Category{
	{ID: 1, Name: "App Development", Slug: "app-development", Icon: "smartphone", Description: "Mobile and web app templates and starter kits"},
	{ID: 2, Name: "Trading Bots", Slug: "trading-bots", Icon: "trending-up", Description: "Automated crypto and forex trading bots"},
	{ID: 3, Name: "Website Tools", Slug: "website-tools", Icon: "globe", Description: "Builders, deployment helpers and SEO tools"},
	{ID: 4, Name: "Shopify Themes", Slug: "shopify-themes", Icon: "shopping-bag", Description: "Conversion-focused Shopify themes"},
	{ID: 5, Name: "Security Tools", Slug: "security-tools", Icon: "shield", Description: "Penetration testing and hardening toolkits"},
}

func strPtr(s string) *string { return &s }

var defaultProducts = []models.Product{
	{Title: "Flutter Starter Kit", Description: "Production-ready Flutter template with auth, payments and push notifications.", Price: "49.99", OriginalPrice: strPtr("79.99"), CategoryID: 1, ImageURL: "/images/flutter-kit.png", Rating: "4.6", Tags: pq.StringArray{"flutter", "mobile", "template"}, DownloadURL: "products/flutter-starter-kit.zip", IsActive: true},
	{Title: "React Admin Dashboard", Description: "Responsive admin dashboard with charts, tables and role management.", Price: "29.00", CategoryID: 1, ImageURL: "/images/react-admin.png", Rating: "4.4", Tags: pq.StringArray{"react", "dashboard"}, DownloadURL: "products/react-admin-dashboard.zip", IsActive: true},
	{Title: "Binance Grid Bot", Description: "Configurable grid trading bot for Binance spot markets.", Price: "99.00", OriginalPrice: strPtr("149.00"), CategoryID: 2, ImageURL: "/images/grid-bot.png", Rating: "4.7", Tags: pq.StringArray{"binance", "crypto", "bot"}, DownloadURL: "products/binance-grid-bot.zip", IsActive: true},
	{Title: "Static Site Deployer", Description: "One-command deployment of static sites to any CDN.", Price: "15.00", CategoryID: 3, ImageURL: "/images/deployer.png", Rating: "4.2", Tags: pq.StringArray{"deploy", "cdn"}, DownloadURL: "products/static-site-deployer.zip", IsActive: true},
	{Title: "Minimal Shopify Theme", Description: "Fast, minimal Shopify theme tuned for conversions.", Price: "39.00", CategoryID: 4, ImageURL: "/images/minimal-theme.png", Rating: "4.5", Tags: pq.StringArray{"shopify", "theme"}, DownloadURL: "products/minimal-shopify-theme.zip", IsActive: true},
	{Title: "Recon Toolkit", Description: "Curated reconnaissance scripts for authorised penetration tests.", Price: "59.00", CategoryID: 5, ImageURL: "/images/recon.png", Rating: "4.8", Tags: pq.StringArray{"security", "pentest"}, DownloadURL: "products/recon-toolkit.zip", IsActive: true},
	{Title: "Landing Page Pack", Description: "Ten free landing page templates.", Price: "0", CategoryID: 3, ImageURL: "/images/landing-pack.png", Rating: "4.0", Tags: pq.StringArray{"html", "free"}, DownloadURL: "https://cdn.toolhatch.shop/free/landing-pack.zip", IsFree: true, IsActive: true},
}

// SeedInitialData inserts the demo catalog and, when a password is given, an
// admin account. Rows that already exist are left alone.
func SeedInitialData(db *gorm.DB, adminEmail, adminPassword string) error {
	logrus.Info("Seeding initial data...")

	for _, category := range defaultCategories {
		category := category
		if err := db.Where(models.Category{Slug: category.Slug}).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.Slug, err)
		}
	}

	var productCount int64
	if err := db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if productCount == 0 {
		products := make([]models.Product, len(defaultProducts))
		copy(products, defaultProducts)
		if err := db.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}

	if adminPassword != "" {
		var adminCount int64
		db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&adminCount)

		if adminCount == 0 {
			admin := &models.User{
				Username: "admin",
				Email:    adminEmail,
				IsAdmin:  true,
			}
			if err := admin.SetPassword(adminPassword); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}
			if err := db.Create(admin).Error; err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			logrus.WithField("email", adminEmail).Info("Default admin user created")
		}
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

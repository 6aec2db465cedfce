package main

import (
	"errors"

	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/provider"
	"github.com/mercato-next/internal/service"
)

const (
	demoCustomerEmail    = "demo@mercato.local"
	demoCustomerPassword = "Demo12345"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() { _ = models.CloseDB() }()

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to init container: %v", err)
	}
	defer func() { _ = container.Close() }()

	// 演示商品
	items := []service.ItemInput{
		{Name: "Espresso Beans 1kg", Description: "Dark roast, whole bean", Price: "24.90", Stock: 40, Status: models.ItemStatusAvailable},
		{Name: "Pour-over Kettle", Description: "Gooseneck, 1L", Price: "39.00", Stock: 12, Status: models.ItemStatusAvailable},
		{Name: "Paper Filters (100)", Price: "5.50", Stock: 200, Status: models.ItemStatusAvailable},
		{Name: "Hand Grinder", Description: "Ceramic burrs", Price: "59.00", Stock: 0, Status: models.ItemStatusAvailable},
		{Name: "Limited Mug", Price: "18.00", Stock: 3, Status: models.ItemStatusUnavailable},
	}
	for _, input := range items {
		var count int64
		if err := models.DB.Model(&models.Item{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
			stdLog.Printf("Failed to check item %s: %v", input.Name, err)
			continue
		}
		if count > 0 {
			stdLog.Printf("Item already exists: %s", input.Name)
			continue
		}
		item, err := container.ItemService.Create(input)
		if err != nil {
			stdLog.Printf("Failed to create item %s: %v", input.Name, err)
			continue
		}
		stdLog.Printf("Created item #%d: %s", item.ID, item.Name)
	}

	// 演示顾客
	customer, err := container.CustomerAuthService.Register(service.RegisterInput{
		Email:       demoCustomerEmail,
		Password:    demoCustomerPassword,
		DisplayName: "Demo Customer",
	})
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		stdLog.Printf("Customer already exists: %s", demoCustomerEmail)
	case err != nil:
		stdLog.Printf("Failed to create demo customer: %v", err)
	default:
		stdLog.Printf("Created customer #%d: %s (password %s)", customer.ID, customer.Email, demoCustomerPassword)
	}

	stdLog.Println("Seed completed")
}

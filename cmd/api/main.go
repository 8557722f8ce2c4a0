package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/ledger"
	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/scheduler"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/database"
	appLogger "go-stock-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		// Not fatal: production deployments pass config through the environment.
		log.Println("Warning: .env file not found")
	}

	zlog := appLogger.Must(appLogger.New())
	defer zlog.Sync()

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.Product{}, &model.StockEntry{}, &model.User{}, &model.Privilege{}, &model.Role{}); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, zlog)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(appLogger.Named(zlog, "ws"))
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	entryRepo := repository.NewStockEntryRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	stockLedger := ledger.New()
	invService := service.NewInventoryService(stockLedger, productRepo, db, wsHub, appLogger.Named(zlog, "inventory"))
	reportService := service.NewReportService(entryRepo, productRepo, appLogger.Named(zlog, "report"))
	dashService := service.NewDashboardService(entryRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService)
	txHandler := handler.NewTransactionHandler(reportService, userRepo)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 6. Retention scheduler (disabled unless RETENTION_DAYS is set)
	retentionDays, _ := strconv.Atoi(os.Getenv("RETENTION_DAYS"))
	purgeScheduler := scheduler.NewScheduler(reportService, retentionDays, appLogger.Named(zlog, "scheduler"))
	purgeScheduler.Start()
	defer purgeScheduler.Stop()

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stock Ledger v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)

	// Product Routes
	protected.Get("/products", middleware.RequirePrivilege("product:view"), invHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), invHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), invHandler.UpdateProduct)
	protected.Put("/products/:id/stock", middleware.RequirePrivilege("product:update"), invHandler.AddStock)
	protected.Put("/products/:id/transfer", middleware.RequirePrivilege("product:update"), invHandler.TransferStock)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), invHandler.DeleteProduct)

	// Sale Routes
	protected.Post("/sales", middleware.RequirePrivilege("sale:create"), invHandler.RecordSale)

	// Transaction History Routes
	protected.Get("/transactions", middleware.RequirePrivilege("transaction:view"), txHandler.GetTransactions)
	protected.Get("/transactions/history", middleware.RequirePrivilege("transaction:view"), txHandler.GetHistory)
	protected.Get("/transactions/:id", middleware.RequirePrivilege("transaction:view"), txHandler.GetTransaction)
	protected.Delete("/transactions/older-than/:days", middleware.RequirePrivilege("transaction:purge"), txHandler.PurgeTransactions)

	// Report Routes
	protected.Get("/reports/daily", middleware.RequirePrivilege("report:view"), txHandler.GetDailyReport)
	protected.Get("/reports/brands", middleware.RequirePrivilege("report:view"), txHandler.GetBrandSummary)

	// User Management Routes
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role and Privilege Routes
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, zlog *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		zlog.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		zlog.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets ALL privileges
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
		zlog.Info("ADMIN role assigned all privileges")
	}

	// EMPLOYEE gets the selling/viewing subset
	employeeRole, err := roleRepo.FindByCode(model.RoleEmployee)
	if err == nil && len(employeeRole.Privileges) == 0 {
		employeePrivileges, err := privilegeRepo.FindByCodes(model.EmployeePrivilegeCodes)
		if err == nil {
			db.Model(&employeeRole).Association("Privileges").Replace(employeePrivileges)
			zlog.Info("EMPLOYEE role assigned selling privileges")
		}
	}

	// 4. Create default admin user with ADMIN role
	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			zlog.Warn("failed to hash admin password", zap.Error(err))
			return
		}

		if err := userRepo.Create(admin); err != nil {
			zlog.Warn("failed to create admin user", zap.Error(err))
		} else {
			zlog.Info("admin user created", zap.String("email", "admin@example.com"))
		}
	}
}

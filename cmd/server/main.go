// @title Resident Management System API
// @version 1.0
// @description Backend quản lý hộ khẩu, nhân khẩu, tạm trú tạm vắng và phản ánh kiến nghị cấp phường.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
package main

import (
	"fmt"
	"runtime"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/routes"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/database"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/pkg/logger"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := logger.SetupLogger(); err != nil {
		fmt.Printf("Failed to set up logger: %v\n", err)
		return
	}

	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		return
	}
	defer pool.Close()

	if err := migrate(pool.GetDB(), cfg); err != nil {
		logger.Error("Database migration failed: %v", err)
		return
	}

	if err := ensureAdminExists(pool.GetDB(), cfg); err != nil {
		logger.Error("Failed to ensure admin account: %v", err)
		return
	}

	var redisClient *redis.Client
	if addr := cfg.GetRedisAddr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   cfg.RedisDB,
		})
	}

	printSystemInfo(pool, cfg)

	r := routes.SetupRouter(pool, cfg, redisClient)
	if err := r.Run("0.0.0.0:" + cfg.ServerPort); err != nil {
		logger.Error("Server exited: %v", err)
	}
}

// migrate brings the schema up to date. The "drop" mode recreates every table
// and is only meant for development databases.
func migrate(db *gorm.DB, cfg *config.Config) error {
	allModels := []interface{}{
		&models.User{},
		&models.Household{},
		&models.Person{},
		&models.ChangeRequest{},
		&models.TemporaryResidency{},
		&models.Attachment{},
		&models.Feedback{},
		&models.Notification{},
		&models.AuditLog{},
	}

	switch cfg.DBMigrationMode {
	case "drop":
		logger.Warning("Migration mode 'drop': all tables will be recreated")
		if err := db.Migrator().DropTable(allModels...); err != nil {
			return err
		}
		return db.AutoMigrate(allModels...)
	default:
		return db.AutoMigrate(allModels...)
	}
}

// ensureAdminExists seeds the default admin account on first start. The
// password is hashed by the model's BeforeCreate hook.
func ensureAdminExists(db *gorm.DB, cfg *config.Config) error {
	if cfg.DefaultAdminLogin == "" || cfg.DefaultAdminPass == "" {
		logger.Warning("Default admin credentials not configured, skipping admin seeding")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", cfg.DefaultAdminLogin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username: cfg.DefaultAdminLogin,
		Password: cfg.DefaultAdminPass,
		FullName: "Quản trị hệ thống",
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("Created default admin account '%s'", cfg.DefaultAdminLogin)
	return nil
}

func printSystemInfo(pool *database.ConnectionPool, cfg *config.Config) {
	logger.Info("=== Resident Management System ===")
	logger.Info("Environment: %s", cfg.EnvType)
	logger.Info("CPU cores: %d", runtime.NumCPU())
	logger.Info("DB pool: max open %d, max idle %d", pool.MaxOpenConns, pool.MaxIdleConns)
	if cfg.GetRedisAddr() != "" {
		logger.Info("Redis: %s", cfg.GetRedisAddr())
	} else {
		logger.Info("Redis: disabled, dashboard cache off")
	}
	logger.Info("Listening on port %s", cfg.ServerPort)
}

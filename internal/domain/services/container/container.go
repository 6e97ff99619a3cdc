package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/storage"
)

// ServiceContainer manages dependency injection for all services
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// base services
	jwtService      services.InterfaceJWTService
	identityService services.InterfaceIdentityService
	authService     services.InterfaceAuthService

	// file storage
	uploadStore *storage.UploadStore

	// business services
	householdService    services.InterfaceHouseholdService
	personService       services.InterfacePersonService
	requestService      services.InterfaceRequestService
	residencyService    services.InterfaceResidencyService
	feedbackService     services.InterfaceFeedbackService
	notificationService services.InterfaceNotificationService
	dashboardService    services.InterfaceDashboardService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container. redisClient is
// optional; when it is unreachable the container keeps running without
// the dashboard cache.
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis ping failed: %v, continuing without cache", err)
			redisClient = nil
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices wires every service with its dependencies
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config)
	c.identityService = services.NewIdentityService(c.db, c.config)
	c.authService = services.NewAuthService(c.db, c.config, c.jwtService)

	store, err := storage.NewUploadStore(c.config.UploadDir)
	if err != nil {
		panic("upload directory unavailable: " + err.Error())
	}
	c.uploadStore = store

	c.householdService = services.NewHouseholdService(c.db, c.config)
	c.personService = services.NewPersonService(c.db, c.config)
	c.requestService = services.NewRequestService(c.db, c.config, c.identityService)
	c.residencyService = services.NewResidencyService(c.db, c.config)
	c.feedbackService = services.NewFeedbackService(c.db, c.config)
	c.notificationService = services.NewNotificationService(c.db, c.config)
	c.dashboardService = services.NewDashboardService(c.db, c.config, c.redis)
}

// GetService returns the service registered under the given name
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "identity":
		return c.identityService
	case "auth":
		return c.authService
	case "upload_store":
		return c.uploadStore
	case "household":
		return c.householdService
	case "person":
		return c.personService
	case "request":
		return c.requestService
	case "residency":
		return c.residencyService
	case "feedback":
		return c.feedbackService
	case "notification":
		return c.notificationService
	case "dashboard":
		return c.dashboardService
	default:
		return nil
	}
}

// GetDB returns the underlying database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

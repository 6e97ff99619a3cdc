package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/DavidNA-VN/Resident-Management-System-sub002/docs"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/controllers"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/database"
)

// SetupRouter builds the configured engine.
func SetupRouter(pool *database.ConnectionPool, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	db := pool.GetDB()
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	middleware.InitAuthMiddleware(cfg, db)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded attachments are served verbatim under their stored names.
	r.Static("/uploads", cfg.UploadDir)

	registerRoutes(r, serviceContainer, pool)
	return r
}

// registerRoutes wires every API route
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
	pool *database.ConnectionPool,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container, pool)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes wires the routes reachable without a token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
	pool *database.ConnectionPool,
) {
	health := controllers.NewHealthCheckController(pool)
	api.GET("/health", health.Ping)
	api.GET("/health/db", health.PingDB)

	// Auth endpoints carry a tight IP limit against credential guessing.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.IPRateLimiter(5, 10))
	authGroup.POST("/register", controllers.HandleAuthFunc(container, "register"))
	authGroup.POST("/login", controllers.HandleAuthFunc(container, "login"))

	// Public household lookup, briefly cached.
	api.GET("/citizen/households",
		middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}),
		controllers.HandleCitizenFunc(container, "lookupHouseholds"))
}

// registerAuthenticatedRoutes wires the routes behind the bearer token
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authenticate())
	auth.Use(middleware.IPRateLimiter(30, 50))

	auth.GET("/auth/me", controllers.HandleAuthFunc(container, "me"))

	// Citizen self-service
	citizenGroup := auth.Group("/citizen")
	citizenGroup.Use(middleware.Require(middleware.Requirement{Roles: []string{models.RoleCitizen}}))
	citizenGroup.GET("/household", controllers.HandleCitizenFunc(container, "getMyHousehold"))
	citizenGroup.POST("/tam-tru-vang", controllers.HandleCitizenFunc(container, "createTempResidencyRequest"))

	// Change requests. Citizens file and read their own; review operations
	// belong to the registry and temp-residency desks.
	requestGroup := auth.Group("/requests")
	requestGroup.POST("", controllers.HandleRequestFunc(container, "createRequest"))
	requestGroup.GET("", controllers.HandleRequestFunc(container, "getRequests"))
	requestGroup.GET("/:id", controllers.HandleRequestFunc(container, "getRequest"))

	requestReview := requestGroup.Group("/")
	requestReview.Use(middleware.Require(middleware.StaffWith(models.TaskHouseholdRegistry, models.TaskTempResidency)))
	requestReview.GET("/:id/precheck", controllers.HandleRequestFunc(container, "precheckRequest"))
	requestReview.PATCH("/:id/approve", controllers.HandleRequestFunc(container, "approveRequest"))
	requestReview.PATCH("/:id/reject", controllers.HandleRequestFunc(container, "rejectRequest"))

	// Nhân khẩu registry
	personGroup := auth.Group("/nhan-khau")
	personGroup.Use(middleware.Require(middleware.AnyStaff))
	personGroup.GET("", controllers.HandlePersonFunc(container, "getPersons"))
	personGroup.GET("/:id", controllers.HandlePersonFunc(container, "getPerson"))
	personGroup.GET("/:id/history", controllers.HandlePersonFunc(container, "getPersonHistory"))

	personWrite := personGroup.Group("/")
	personWrite.Use(middleware.Require(middleware.StaffWith(models.TaskHouseholdRegistry)))
	personWrite.POST("", controllers.HandlePersonFunc(container, "createPerson"))
	personWrite.PATCH("/:id", controllers.HandlePersonFunc(container, "updatePerson"))
	personWrite.POST("/:id/link", controllers.HandlePersonFunc(container, "linkPersonAccount"))

	// Hộ khẩu registry
	householdGroup := auth.Group("/ho-khau")
	householdGroup.Use(middleware.Require(middleware.AnyStaff))
	householdGroup.GET("", controllers.HandleHouseholdFunc(container, "getHouseholds"))
	householdGroup.GET("/:id", controllers.HandleHouseholdFunc(container, "getHousehold"))
	householdGroup.GET("/:id/nhan-khau", controllers.HandleHouseholdFunc(container, "getHouseholdPersons"))

	householdWrite := householdGroup.Group("/")
	householdWrite.Use(middleware.Require(middleware.StaffWith(models.TaskHouseholdRegistry)))
	householdWrite.POST("", controllers.HandleHouseholdFunc(container, "createHousehold"))
	householdWrite.PATCH("/:id", controllers.HandleHouseholdFunc(container, "updateHousehold"))
	householdWrite.DELETE("/:id", controllers.HandleHouseholdFunc(container, "deleteHousehold"))

	// Tạm trú / tạm vắng records
	residencyGroup := auth.Group("/tam-tru-vang")
	residencyGroup.Use(middleware.Require(middleware.AnyStaff))
	residencyGroup.GET("", controllers.HandleResidencyFunc(container, "getResidencies"))
	residencyGroup.GET("/:id", controllers.HandleResidencyFunc(container, "getResidency"))

	residencyWrite := residencyGroup.Group("/")
	residencyWrite.Use(middleware.Require(middleware.StaffWith(models.TaskTempResidency)))
	residencyWrite.PATCH("/:id/approve", controllers.HandleResidencyFunc(container, "approveResidency"))
	residencyWrite.PATCH("/:id/status", controllers.HandleResidencyFunc(container, "updateResidencyStatus"))

	// Petitions
	auth.POST("/feedbacks",
		middleware.Require(middleware.CitizenOrStaffWith(models.TaskPetitions)),
		controllers.HandleFeedbackFunc(container, "createFeedback"))
	auth.GET("/feedbacks", controllers.HandleFeedbackFunc(container, "getFeedbacks"))
	auth.GET("/feedbacks/stats",
		middleware.Require(middleware.StaffWith(models.TaskStatistics, models.TaskPetitions)),
		controllers.HandleFeedbackFunc(container, "getFeedbackStats"))
	auth.GET("/feedback/:id", controllers.HandleFeedbackFunc(container, "getFeedback"))

	feedbackDesk := auth.Group("/feedback")
	feedbackDesk.Use(middleware.Require(middleware.StaffWith(models.TaskPetitions)))
	feedbackDesk.PATCH("/:id/status", controllers.HandleFeedbackFunc(container, "updateFeedbackStatus"))
	feedbackDesk.PATCH("/:id/response", controllers.HandleFeedbackFunc(container, "respondFeedback"))
	feedbackDesk.POST("/merge", controllers.HandleFeedbackFunc(container, "mergeFeedbacks"))
	feedbackDesk.POST("/:id/notify", controllers.HandleFeedbackFunc(container, "notifyReporters"))

	// Notifications
	auth.GET("/notifications", controllers.HandleNotificationFunc(container, "getNotifications"))
	auth.PATCH("/notifications/:id/read", controllers.HandleNotificationFunc(container, "markRead"))

	// Dashboard
	auth.GET("/dashboard",
		middleware.Require(middleware.AnyStaff),
		controllers.HandleDashboardFunc(container, "getDashboard"))
}

package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/database"
)

// HealthCheckController serves the liveness and DB probes
type HealthCheckController struct {
	Pool *database.ConnectionPool
}

// NewHealthCheckController creates a new health check controller
func NewHealthCheckController(pool *database.ConnectionPool) *HealthCheckController {
	return &HealthCheckController{Pool: pool}
}

// Ping is the liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// PingDB checks database connectivity through the connection pool
// @Summary Database probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /health/db [get]
func (h *HealthCheckController) PingDB(c *gin.Context) {
	if err := h.Pool.HealthCheck(); err != nil {
		response.FailMessage(c, code.InternalError, "Không kết nối được cơ sở dữ liệu")
		return
	}
	response.Success(c, gin.H{"status": "healthy"})
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config stores all configuration of the application.
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // "auto" (default) or "drop" (recreate all tables)

	// Server
	ServerPort string

	// Redis (optional, dashboard cache)
	RedisHost string
	RedisPort string
	RedisDB   int

	// JWT Authentication
	JWTSecretKey string

	// Uploads
	UploadDir         string
	MaxUploadSize     int64 // bytes, per file
	MaxUploadFiles    int
	DefaultAdminPass  string
	DefaultAdminLogin string
}

// LoadConfig loads config from environment variables based on ENV_TYPE.
// Variables may be prefixed LOCAL_ or SERVER_ to keep both environments in
// one .env file; the unprefixed name is the fallback.
func LoadConfig() *Config {
	envType := strings.ToUpper(getEnv("ENV_TYPE", "LOCAL"))
	prefix := "LOCAL_"
	if envType == "SERVER" {
		prefix = "SERVER_"
	} else if envType != "LOCAL" {
		fmt.Printf("Warning: unknown ENV_TYPE '%s', defaulting to LOCAL\n", envType)
		envType = "LOCAL"
	}

	return &Config{
		EnvType: envType,

		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "quan_ly_dan_cu")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),

		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:     int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		MaxUploadFiles:    getEnvAsInt("MAX_UPLOAD_FILES", 5),
		DefaultAdminLogin: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminPass:  getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}
}

// Validate checks for fatal misconfiguration. A missing JWT secret must stop
// the process at startup instead of surfacing as auth failures at runtime.
func (c *Config) Validate() error {
	if len(c.JWTSecretKey) < 16 {
		return fmt.Errorf("JWT_SECRET_KEY must be set and at least 16 characters")
	}
	return nil
}

// GetDSN returns the MySQL connection string.
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
		"?charset=utf8mb4&parseTime=True&loc=Local"
}

// GetRedisAddr returns the Redis address, empty when Redis is not configured.
func (c *Config) GetRedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

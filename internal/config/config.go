package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the reconciliation UI service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	LoginUsername string
	LoginPassword string
	SessionTTL    time.Duration

	GoogleSheetURL string
	SheetTimeout   time.Duration

	UploadDir     string
	MaxUploadSize int64

	SKUDDBEnabled      bool
	SKUDDBHost         string
	SKUDDBPort         int
	SKUDDBUser         string
	SKUDDBPassword     string
	SKUDDBName         string
	SKUDDBConnTimeout  time.Duration
	SKUDDBQueryTimeout time.Duration

	DirectorySQLitePath string
	DirectoryListLimit  int
}

// FromEnv loads configuration from environment variables with sensible
// defaults. A local .env file supplies defaults for unset variables.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 30)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 120)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		LogLevel:        getEnv("APP_LOG_LEVEL", "info"),

		LoginUsername: getEnv("LOGIN_USERNAME", "admin"),
		LoginPassword: getEnv("LOGIN_PASSWORD", "admin"),
		SessionTTL:    time.Duration(getEnvInt("APP_SESSION_TTL_HOURS", 12)) * time.Hour,

		GoogleSheetURL: getEnv("GOOGLE_SHEET_URL", ""),
		SheetTimeout:   time.Duration(getEnvInt("APP_SHEET_TIMEOUT_SEC", 30)) * time.Second,

		UploadDir:     getEnv("APP_UPLOAD_DIR", "./uploads"),
		MaxUploadSize: int64(getEnvInt("APP_MAX_UPLOAD_MB", 32)) << 20,

		SKUDDBEnabled:      getEnvBool("APP_SKUD_DB_ENABLED", false),
		SKUDDBHost:         getEnv("APP_SKUD_DB_HOST", "127.0.0.1"),
		SKUDDBPort:         getEnvInt("APP_SKUD_DB_PORT", 3306),
		SKUDDBUser:         getEnv("APP_SKUD_DB_USER", "skud"),
		SKUDDBPassword:     getEnv("APP_SKUD_DB_PASSWORD", ""),
		SKUDDBName:         getEnv("APP_SKUD_DB_NAME", "skud"),
		SKUDDBConnTimeout:  time.Duration(getEnvInt("APP_SKUD_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		SKUDDBQueryTimeout: time.Duration(getEnvInt("APP_SKUD_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,

		DirectorySQLitePath: getEnv("APP_DIRECTORY_SQLITE_PATH", ""),
		DirectoryListLimit:  getEnvInt("APP_DIRECTORY_LIST_LIMIT", 500),
	}
}

// SKUDMySQLDSN returns a mysql driver DSN for the SKUD punch database.
func (c Config) SKUDMySQLDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("timeout", c.SKUDDBConnTimeout.String())
	params.Set("readTimeout", c.SKUDDBQueryTimeout.String())
	params.Set("writeTimeout", c.SKUDDBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.SKUDDBUser, c.SKUDDBPassword, c.SKUDDBHost, c.SKUDDBPort, c.SKUDDBName, params.Encode())
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with simple defaults.
type Config struct {
	ServerPort       string
	SwaggerServerURL string

	// 数据库配置
	DBDriver   string // mysql, sqlite or memory
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	// 上传文件配置
	StorageBackend string // disk or minio
	UploadDir      string // Base directory for all uploads: UploadDir/track, UploadDir/stem
	MaxUploadSize  int64

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string

	// Redis配置
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	// JWT配置
	JWTSecret string
	JWTTTL    time.Duration

	LogLevel string
	LogFile  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration parses values like "5m" or "24h".
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	uploadBase := getEnv("UPLOAD_DIR", "uploads")
	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		ServerPort:       port,
		SwaggerServerURL: getEnv("SWAGGER_SERVER_URL", "http://localhost:"+port+"/api/v1"),
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "127.0.0.1"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "root"),
		DBPassword:       os.Getenv("DB_PASSWORD"), // 密码不设默认值
		DBName:           getEnv("DB_NAME", "stemhub"),
		SQLitePath:       getEnv("SQLITE_PATH", "stemhub.db"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "disk"),
		UploadDir:        filepath.Clean(uploadBase),
		MaxUploadSize:    int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:   os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:   os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:      getEnv("MINIO_BUCKET", "stemhub"),
		MinioUseSSL:      getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:      getEnv("MINIO_REGION", "us-east-1"),
		RedisEnabled:     getEnvBool("REDIS_ENABLED", false),
		RedisHost:        getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:          getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库
		RedisCacheTTL:    getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           getEnvDuration("JWT_TTL", 24*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
	}
}

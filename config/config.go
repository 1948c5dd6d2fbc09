package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Order    OrderConfig
	Cron     CronConfig
}

type ServerConfig struct {
	Port string
	Env  string // "production" 時 cron 端點必須帶密鑰
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type OrderConfig struct {
	// ExpireMinutes 待付款訂單的寬限期，過期由 sweeper 回收庫存
	ExpireMinutes  int
	SweepBatchSize int
}

type CronConfig struct {
	Secret string
}

func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Order:    GetOrderConfig(),
		Cron:     CronConfig{Secret: getEnv("CRON_SECRET", "")},
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "8080", Env: "test"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Order:    OrderConfig{ExpireMinutes: 15, SweepBatchSize: 100},
		Cron:     CronConfig{Secret: ""},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetOrderConfig() OrderConfig {
	expire, err := strconv.Atoi(getEnv("ORDER_EXPIRE_MINUTES", "15"))
	if err != nil {
		panic(err)
	}
	batch, err := strconv.Atoi(getEnv("SWEEP_BATCH_SIZE", "100"))
	if err != nil {
		panic(err)
	}

	return OrderConfig{
		ExpireMinutes:  expire,
		SweepBatchSize: batch,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

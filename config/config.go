package config

import (
	"os"
	"strconv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
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

// AppConfig 引擎本身的設定
type AppConfig struct {
	// 服務費百分比，只對折扣後金額 > 0 的訂單收取
	ServiceFeePercent int
	// 釋出庫存事件的 consumer 識別字
	RestockConsumerID string
}

var AppCfg *Config

func LoadConfig() *Config {
	AppCfg = &Config{
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		App:      GetAppConfig(),
	}

	return AppCfg
}

func LoadTestConfig() *Config {
	testDBConfig := DatabaseConfig{
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
		Database: testDBConfig,
		Redis:    testRedisConfig,
		App: AppConfig{
			ServiceFeePercent: 5,
			RestockConsumerID: "test",
		},
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

func GetAppConfig() AppConfig {
	fee, err := strconv.Atoi(getEnv("SERVICE_FEE_PERCENT", "5"))
	if err != nil {
		panic(err)
	}

	return AppConfig{
		ServiceFeePercent: fee,
		RestockConsumerID: getEnv("RESTOCK_CONSUMER_ID", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

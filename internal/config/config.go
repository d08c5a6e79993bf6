// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	External ExternalConfig
	Engine   EngineConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	FactorTTLSeconds   int
	ForecastTTLSeconds int
}

// ExternalConfig drives the external factor adapter: upstream endpoints,
// per-request timeout and the bounded retry budget.
type ExternalConfig struct {
	WeatherBaseURL  string
	EconomicBaseURL string
	SearchAPIKey    string
	SearchEngineID  string
	TimeoutSeconds  int
	MaxAttempts     int
}

// EngineConfig bounds forecast requests and configures training.
type EngineConfig struct {
	MaxHorizonDays      int
	DefaultServiceLevel float64
	OrderingCost        float64
	TrainingFolds       int
	TrainingHoldout     float64
	WorkerCount         int
	SyntheticSeed       int64
}

// StorageConfig points at the S3-compatible bucket for backtest reports.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "forecast_engine")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FACTOR_TTL_SECONDS", 3600)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("EXTERNAL_WEATHER_BASE_URL", "https://api.open-meteo.com/v1")
		viper.SetDefault("EXTERNAL_ECONOMIC_BASE_URL", "https://api.worldbank.org/v2")
		viper.SetDefault("EXTERNAL_SEARCH_API_KEY", "")
		viper.SetDefault("EXTERNAL_SEARCH_ENGINE_ID", "")
		viper.SetDefault("EXTERNAL_TIMEOUT_SECONDS", 5)
		viper.SetDefault("EXTERNAL_MAX_ATTEMPTS", 2)
		viper.SetDefault("ENGINE_MAX_HORIZON_DAYS", 365)
		viper.SetDefault("ENGINE_DEFAULT_SERVICE_LEVEL", 0.90)
		viper.SetDefault("ENGINE_ORDERING_COST", 50.0)
		viper.SetDefault("ENGINE_TRAINING_FOLDS", 5)
		viper.SetDefault("ENGINE_TRAINING_HOLDOUT", 0.2)
		viper.SetDefault("ENGINE_WORKER_COUNT", 4)
		viper.SetDefault("ENGINE_SYNTHETIC_SEED", 42)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "forecast-reports")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				FactorTTLSeconds:   viper.GetInt("CACHE_FACTOR_TTL_SECONDS"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			External: ExternalConfig{
				WeatherBaseURL:  viper.GetString("EXTERNAL_WEATHER_BASE_URL"),
				EconomicBaseURL: viper.GetString("EXTERNAL_ECONOMIC_BASE_URL"),
				SearchAPIKey:    viper.GetString("EXTERNAL_SEARCH_API_KEY"),
				SearchEngineID:  viper.GetString("EXTERNAL_SEARCH_ENGINE_ID"),
				TimeoutSeconds:  viper.GetInt("EXTERNAL_TIMEOUT_SECONDS"),
				MaxAttempts:     viper.GetInt("EXTERNAL_MAX_ATTEMPTS"),
			},
			Engine: EngineConfig{
				MaxHorizonDays:      viper.GetInt("ENGINE_MAX_HORIZON_DAYS"),
				DefaultServiceLevel: viper.GetFloat64("ENGINE_DEFAULT_SERVICE_LEVEL"),
				OrderingCost:        viper.GetFloat64("ENGINE_ORDERING_COST"),
				TrainingFolds:       viper.GetInt("ENGINE_TRAINING_FOLDS"),
				TrainingHoldout:     viper.GetFloat64("ENGINE_TRAINING_HOLDOUT"),
				WorkerCount:         viper.GetInt("ENGINE_WORKER_COUNT"),
				SyntheticSeed:       viper.GetInt64("ENGINE_SYNTHETIC_SEED"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}

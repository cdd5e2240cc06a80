package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"3000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	FirebaseProject            string `env:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT" envDefault:"./serviceAccountKey.json"`
	StorageBucket              string `env:"FIREBASE_STORAGE_BUCKET"`

	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"agroconnect"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"your-secret-key"`
	JWTExpiry int64  `env:"JWT_EXPIRY" envDefault:"86400"` // seconds

	DispatchWorkers      int           `env:"DISPATCH_WORKERS" envDefault:"4"`
	DispatchQueueSize    int           `env:"DISPATCH_QUEUE_SIZE" envDefault:"256"`
	DispatchTaskTimeout  time.Duration `env:"DISPATCH_TASK_TIMEOUT" envDefault:"30s"`
	StoreRetryMaxElapsed time.Duration `env:"STORE_RETRY_MAX_ELAPSED" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
		if config.IsDevelopment() {
			config.LogLevel = "debug"
		}
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiry) * time.Second
}

// ServiceAccountPath returns the credentials file only when no inline JSON
// credentials are configured.
func (c *Config) ServiceAccountPath() string {
	if c.FirebaseServiceAccountJSON != "" {
		return ""
	}
	return c.FirebaseServiceAccountPath
}

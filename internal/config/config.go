package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// BaseURL - внешний адрес, который подставляется в ссылки
		// (например, ссылка подтверждения сброса пароля)
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
		// QueryTimeoutSec - таймаут на один вызов хранилища;
		// истекший таймаут всплывает как STORE_UNAVAILABLE, а не как тихий успех
		QueryTimeoutSec int `yaml:"query_timeout_sec"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	Admin struct {
		UserName string `yaml:"user_name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

var AppConfig *Config

// QueryTimeout возвращает таймаут вызова хранилища как time.Duration
func (c *Config) QueryTimeout() time.Duration {
	if c.Database.QueryTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Database.QueryTimeoutSec) * time.Second
}

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	serverEnv := os.Getenv("SERVER_ENV")
	portStr := os.Getenv("SERVER_PORT")
	jwtSecret := os.Getenv("JWT_SECRET")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		validateConfig(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Database.QueryTimeoutSec = 5
	cfg.Server.Env = serverEnv
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.Server.BaseURL = "http://localhost:4000"
	cfg.JWT.Secret = jwtSecret

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@hirepoint.com"
	cfg.Email.Enabled = false

	validateConfig(&cfg)
	AppConfig = &cfg
}

// validateConfig проверяет обязательные поля.
// Отсутствие ключа подписи - фатальная ошибка конфигурации,
// а не ошибка на каждый вызов.
func validateConfig(cfg *Config) {
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT signing secret is not configured")
	}
	if cfg.Database.DSN == "" {
		log.Fatal("Database DSN is not configured")
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

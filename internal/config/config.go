package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LineConfig struct {
	ChannelAccessToken string `yaml:"channel_access_token"`
}

// SMSConfig configures the generic HTTP SMS provider. Leaving APIURL or
// APIKey empty disables the SMS channel entirely.
type SMSConfig struct {
	APIURL   string `yaml:"api_url"`
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
}

type Config struct {
	Env        string       `yaml:"env"`
	Server     ServerConfig `yaml:"server"`
	DB         DBConfig     `yaml:"db"`
	Redis      RedisConfig  `yaml:"redis"`
	MQ         MQConfig     `yaml:"mq"`
	Line       LineConfig   `yaml:"line"`
	SMS        SMSConfig    `yaml:"sms"`
	CronSecret string       `yaml:"cron_secret"`
	JWTSecret  string       `yaml:"jwt_secret"`
}

// IsProduction reports whether the process runs with production settings.
// The manual GET trigger is rejected in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads config/base.yaml, overlays config/<APP_ENV>.yaml when present,
// then applies environment-variable overrides (highest precedence).
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = "config"
	}

	cfg := &Config{
		Env:    "local",
		Server: ServerConfig{Port: "8080"},
		SMS:    SMSConfig{SenderID: "SSO"},
	}

	if err := loadYAML(filepath.Join(configDir, "base.yaml"), cfg); err != nil {
		return nil, fmt.Errorf("failed to load base.yaml: %w", err)
	}

	env := getEnv("APP_ENV", cfg.Env)
	if env != "" && env != "base" {
		envFile := filepath.Join(configDir, env+".yaml")
		if _, err := os.Stat(envFile); err == nil {
			if err := loadYAML(envFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load %s.yaml: %w", env, err)
			}
		}
	}
	cfg.Env = env

	overrideFromEnv(cfg)
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if secret := os.Getenv("CRON_SECRET"); secret != "" {
		cfg.CronSecret = secret
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); token != "" {
		cfg.Line.ChannelAccessToken = token
	}
	if url := os.Getenv("SMS_API_URL"); url != "" {
		cfg.SMS.APIURL = url
	}
	if key := os.Getenv("SMS_API_KEY"); key != "" {
		cfg.SMS.APIKey = key
	}
	if sender := os.Getenv("SMS_SENDER_ID"); sender != "" {
		cfg.SMS.SenderID = sender
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

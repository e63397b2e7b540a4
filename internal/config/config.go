package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Upload    UploadConfig    `yaml:"upload"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	Domain string `yaml:"domain"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// RedisConfig is optional; an empty Addr disables the cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type UploadConfig struct {
	Dir       string `yaml:"dir"`
	BaseURL   string `yaml:"base_url"`
	MaxSizeMB int64  `yaml:"max_size_mb"`
}

type SchedulerConfig struct {
	PollSeconds int `yaml:"poll_seconds"`
}

// Load reads defaults, then the first config file found, then env overrides.
func Load(configFile string) *Config {
	c := &Config{
		Server:    ServerConfig{Port: 3000},
		Database:  DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "glowfit", SSLMode: "disable"},
		Log:       LogConfig{Level: "info", Console: true, MaxSizeMB: 50, MaxBackups: 7, MaxAgeDays: 14},
		Upload:    UploadConfig{Dir: "./uploads", BaseURL: "/uploads", MaxSizeMB: 300},
		Scheduler: SchedulerConfig{PollSeconds: 60},
	}

	paths := []string{"etc/config.yaml", "/etc/glowfit/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Server.Domain, "DOMAIN")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASSWORD")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Database.SSLMode, "DB_SSLMODE")
	envOverride(&c.JWT.Secret, "JWT_SECRET")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Redis.Addr, "REDIS_ADDR")
	envOverride(&c.Redis.Password, "REDIS_PASSWORD")
	envOverride(&c.Upload.Dir, "UPLOAD_DIR")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideInt(&c.Scheduler.PollSeconds, "SCHEDULER_POLL_SECONDS")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultAnalyzerURL    = "http://localhost:8000"
	DefaultWebAddr        = ":8080"
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = 60 * time.Second
	DefaultSessionTTL     = 30 * time.Minute
	DefaultConfigFile     = "config.yaml"
)

type Config struct {
	TelegramToken  string        `yaml:"telegram_token"`
	AnalyzerURL    string        `yaml:"analyzer_url"`
	WebAddr        string        `yaml:"web_addr"`
	CameraDevice   int           `yaml:"camera_device"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		AnalyzerURL:    DefaultAnalyzerURL,
		WebAddr:        DefaultWebAddr,
		LogLevel:       DefaultLogLevel,
		RequestTimeout: DefaultRequestTimeout,
		SessionTTL:     DefaultSessionTTL,
	}

	path := os.Getenv("PALM_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile читает YAML-файл, отсутствие файла не ошибка
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv переменные окружения перекрывают значения из файла
func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("ANALYZER_URL"); v != "" {
		c.AnalyzerURL = v
	}
	if v := os.Getenv("WEB_ADDR"); v != "" {
		c.WebAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CAMERA_DEVICE"); v != "" {
		device, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CAMERA_DEVICE: %w", err)
		}
		c.CameraDevice = device
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = timeout
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = ttl
	}
	return nil
}

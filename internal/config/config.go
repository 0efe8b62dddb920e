package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Kafka      `yaml:"kafka"`
	Cache      `yaml:"cache"`
	Logger     `yaml:"logger"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	DBName      string `yaml:"db_name"`
	SSLMode     string `yaml:"ssl_mode"`
	MaxConns    int32  `yaml:"max_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// Kafka содержит конфигурацию для подключения к кафке
// Topic читает консьюмер позиций заказа, OrderRequestsTopic пишет продюсер
type Kafka struct {
	Brokers            []string `yaml:"brokers"`
	Topic              string   `yaml:"topic"`
	GroupID            string   `yaml:"group_id"`
	OrderRequestsTopic string   `yaml:"order_requests_topic"`
}

// Cache содержит настройки LRU-кэша позиций заказа
type Cache struct {
	Capacity int `yaml:"capacity"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Path возвращает путь к файлу конфигурации
// перед этим подхватывает .env, если он есть, чтобы CONFIG_PATH можно было задать там
func Path() string {
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает и разбирает YAML-файл конфигурации, заполняя пропущенные поля значениями по умолчанию
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if configPath == "" {
		return nil, fmt.Errorf("%s: CONFIG_PATH is not set", op)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
		}
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal config: %w", op, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// validate проверяет поля, для которых нет разумного значения по умолчанию
func (c *Config) validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers must not be empty")
	}
	for _, b := range c.Kafka.Brokers {
		if b == "" {
			return errors.New("kafka.brokers must not contain empty addresses")
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTPServer.Port == "" {
		c.HTTPServer.Port = ":8080"
	}
	if c.HTTPServer.Timeout <= 0 {
		c.HTTPServer.Timeout = 5 * time.Second
	}
	if c.Postgres.Port == "" {
		c.Postgres.Port = "5432"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "order-items"
	}
	if c.Kafka.OrderRequestsTopic == "" {
		c.Kafka.OrderRequestsTopic = "order-requests"
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 1000
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "INFO"
	}
}

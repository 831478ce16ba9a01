package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultConfigPath = "src/internal/config/cfg.yml"

type Configuration struct {
	Logs       LogsSettings     `mapstructure:"logs"`
	App        Application      `mapstructure:"app"`
	Database   Database         `mapstructure:"database"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Redis      Redis            `mapstructure:"redis"`
	Security   SecuritySettings `mapstructure:"security"`
	Server     ServerSettings   `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Session    SessionConfig    `mapstructure:"session"`
	Pagination PaginationConfig `mapstructure:"pagination"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name     string `mapstructure:"name"`
	Timeout  int    `mapstructure:"timeout"`
	Version  string `mapstructure:"version"`
	Timezone string `mapstructure:"timezone"`
}

type Database struct {
	Url         string      `mapstructure:"url"`
	DbName      string      `mapstructure:"dbname"`
	Collections Collections `mapstructure:"collections"`
	Timeout     int         `mapstructure:"timeout"`
}

type Collections struct {
	Users    string `mapstructure:"users"`
	Sessions string `mapstructure:"sessions"`
	Uptimes  string `mapstructure:"uptimes"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Enabled        bool        `mapstructure:"enabled"`
	Url            string      `mapstructure:"url"`
	Exchange       string      `mapstructure:"exchange"`
	ExchangeType   string      `mapstructure:"exchange-type"`
	ReconnectDelay int         `mapstructure:"reconnect-delay"`
	Durable        bool        `mapstructure:"durable"`
	AutoDelete     bool        `mapstructure:"auto-delete"`
	Internal       bool        `mapstructure:"internal"`
	NoWait         bool        `mapstructure:"no-wait"`
	RoutingKeys    RoutingKeys `mapstructure:"routing-keys"`
}

type RoutingKeys struct {
	SessionStarted string `mapstructure:"session-started"`
	SessionEnded   string `mapstructure:"session-ended"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	JwtKey string `mapstructure:"jwt-key"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
}

type CacheConfig struct {
	SessionExpirationMinutes  int    `mapstructure:"session-expiration-minutes"`
	UserStatKey               string `mapstructure:"user-stat-key"`
	UserStatExpirationMinutes int    `mapstructure:"user-stat-expiration-minutes"`
}

type SessionConfig struct {
	LockBackend    string  `mapstructure:"lock-backend"`
	LockTTLSeconds int     `mapstructure:"lock-ttl-seconds"`
	MaxDailyHours  float64 `mapstructure:"max-daily-hours"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default-limit"`
	MaxLimit     int `mapstructure:"max-limit"`
}

// Location resolves App.Timezone, falling back to UTC for empty or unknown zones.
func (a Application) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		logrus.WithError(err).WithField("timezone", a.Timezone).Warn("Unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

func Load() *Configuration {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		logrus.Panicf("Error loading configuration: %s", err)
	}
	logrus.Info("Configuration loaded")

	return cfg
}

func LoadFrom(path string) (*Configuration, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	normalize(cfg)

	return cfg, nil
}

func read(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logs.level", "info")
	v.SetDefault("app.name", "hrms-backend")
	v.SetDefault("app.timeout", 10)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("database.dbname", "hrms")
	v.SetDefault("database.collections.users", "users")
	v.SetDefault("database.collections.sessions", "sessions")
	v.SetDefault("database.collections.uptimes", "uptimes")
	v.SetDefault("database.timeout", 10)
	v.SetDefault("queue.rabbitmq.exchange", "hrms.events")
	v.SetDefault("queue.rabbitmq.exchange-type", "topic")
	v.SetDefault("queue.rabbitmq.routing-keys.session-started", "session.started")
	v.SetDefault("queue.rabbitmq.routing-keys.session-ended", "session.ended")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("cache.session-expiration-minutes", 720)
	v.SetDefault("cache.user-stat-key", "user-stats")
	v.SetDefault("cache.user-stat-expiration-minutes", 5)
	v.SetDefault("session.lock-backend", "local")
	v.SetDefault("session.lock-ttl-seconds", 10)
	v.SetDefault("session.max-daily-hours", 24)
	v.SetDefault("pagination.default-limit", 50)
	v.SetDefault("pagination.max-limit", 100)
}

func applyEnvOverrides(cfg *Configuration) {
	mongoUri := os.Getenv("MONGODB_URL")
	if mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		cfg.Database.DbName = dbName
	}

	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	redisDB := os.Getenv("REDIS_DB")
	if redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey != "" {
		cfg.Security.JwtKey = jwtKey
	}

	timezone := os.Getenv("APP_TIMEZONE")
	if timezone != "" {
		cfg.App.Timezone = timezone
	}
}

// normalize keeps the daily cap inside [0, 24]; a day never holds more than 24 hours.
func normalize(cfg *Configuration) {
	if cfg.Session.MaxDailyHours <= 0 || cfg.Session.MaxDailyHours > 24 {
		cfg.Session.MaxDailyHours = 24
	}
	if cfg.Pagination.MaxLimit <= 0 {
		cfg.Pagination.MaxLimit = 100
	}
	if cfg.Pagination.DefaultLimit <= 0 || cfg.Pagination.DefaultLimit > cfg.Pagination.MaxLimit {
		cfg.Pagination.DefaultLimit = 50
	}
}

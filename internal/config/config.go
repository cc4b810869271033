package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	Redis    Redis    `mapstructure:"redis"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Auth     Auth     `mapstructure:"auth"`
	Derive   Derive   `mapstructure:"derive"`
	Retry    Retry    `mapstructure:"retry"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Database holds database master and slave configuration.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Storage holds configuration for the blob storage backend.
type Storage struct {
	Endpoint     string        `mapstructure:"endpoint"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	BucketName   string        `mapstructure:"bucket_name"`
	UseSSL       bool          `mapstructure:"use_ssl"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"` // lifetime of presigned links
}

// Redis holds configuration for the photo metadata cache.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"` // cache entry lifetime
}

// Kafka holds configuration for the activity log topic.
type Kafka struct {
	Topic   string   `mapstructure:"topic"`   // Kafka topic name
	Brokers []string `mapstructure:"brokers"` // List of Kafka broker addresses
}

// Auth holds bearer-token verification settings.
type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Derive holds thumbnail derivation settings.
type Derive struct {
	Mode      string        `mapstructure:"mode"`       // "local" or "remote"
	RemoteURL string        `mapstructure:"remote_url"` // remote processor endpoint
	Timeout   time.Duration `mapstructure:"timeout"`    // bound on a remote invocation
	Width     int           `mapstructure:"width"`
	Height    int           `mapstructure:"height"`
	Quality   int           `mapstructure:"quality"`
	Format    string        `mapstructure:"format"`
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "MINIO_ACCESS_KEY",
		"storage.secret_key":   "MINIO_SECRET_KEY",
		"redis.password":       "REDIS_PASSWORD",
		"auth.jwt_secret":      "JWT_SECRET",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// setDefaults applies derivation and cache defaults used when the config
// file leaves those keys out.
func setDefaults() {
	viper.SetDefault("derive.mode", "local")
	viper.SetDefault("derive.timeout", 300*time.Second)
	viper.SetDefault("derive.width", 300)
	viper.SetDefault("derive.height", 300)
	viper.SetDefault("derive.quality", 80)
	viper.SetDefault("derive.format", "jpeg")
	viper.SetDefault("storage.signed_url_ttl", 15*time.Minute)
	viper.SetDefault("redis.ttl", time.Hour)
}

// MustLoad loads the configuration from the specified directory.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Storage  StorageConfig
	Client   ClientConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds unified Redis connection settings.
// Supported modes: single, sentinel, cluster.
type RedisConfig struct {
	// Mode selects the client type ("single", "sentinel", "cluster").
	// Defaults to "single".
	Mode string `mapstructure:"mode"`

	// Addrs lists Redis addresses (host:port), used in all modes. For
	// single mode the first address wins.
	Addrs []string `mapstructure:"addrs"`

	// Addr is an alternative single-mode address, used when Addrs is empty.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName is required in sentinel mode.
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// SessionConfig holds session binding settings. TTL is owned by the session
// store; the cookie only mirrors it.
type SessionConfig struct {
	TTLHours     int    `mapstructure:"ttl_hours"`
	CookieDomain string `mapstructure:"cookie_domain"`
}

// AuthConfig holds credential hashing settings.
type AuthConfig struct {
	// BcryptCost is the hashing cost factor; 0 means bcrypt.DefaultCost.
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// OAuthProviderConfig holds one provider's client credentials. A provider
// with no client ID is disabled.
type OAuthProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// OAuthConfig holds the federated login settings.
type OAuthConfig struct {
	Google  OAuthProviderConfig
	Discord OAuthProviderConfig
}

// StorageConfig holds the object-storage bucket settings for video blobs.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	// PublicURL is the externally reachable base URL objects are served
	// from. Defaults to the endpoint with the chosen scheme.
	PublicURL string `mapstructure:"public_url"`
}

// ClientConfig holds the frontend origin and the OAuth redirect
// destinations on it.
type ClientConfig struct {
	URL         string `mapstructure:"url"`
	AuthSuccess string `mapstructure:"auth_success"`
	AuthFailure string `mapstructure:"auth_failure"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads the configuration from a file, with explicit environment
// variable bindings taking precedence over file values.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // fresh instance, no global viper state

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("session.ttl_hours", "SESSION_TTL_HOURS")
	vip.BindEnv("session.cookie_domain", "SESSION_COOKIE_DOMAIN")

	vip.BindEnv("auth.bcrypt_cost", "AUTH_BCRYPT_COST")

	vip.BindEnv("oauth.google.client_id", "GOOGLE_CLIENT_ID")
	vip.BindEnv("oauth.google.client_secret", "GOOGLE_CLIENT_SECRET")
	vip.BindEnv("oauth.google.redirect_url", "GOOGLE_REDIRECT_URL")
	vip.BindEnv("oauth.discord.client_id", "DISCORD_CLIENT_ID")
	vip.BindEnv("oauth.discord.client_secret", "DISCORD_CLIENT_SECRET")
	vip.BindEnv("oauth.discord.redirect_url", "DISCORD_REDIRECT_URL")

	vip.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	vip.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	vip.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	vip.BindEnv("storage.use_ssl", "STORAGE_USE_SSL")
	vip.BindEnv("storage.bucket", "STORAGE_BUCKET")
	vip.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")

	vip.BindEnv("client.url", "CLIENT_URL")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("[Config] File %q not found, using environment variables and defaults", configPath)
			} else {
				log.Printf("[Config] Warning: could not read %q: %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Loaded configuration ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Database Host: %s, DB: %s, User: %s", cfg.Database.Host, cfg.Database.DBName, cfg.Database.User)
		log.Printf("Redis Addr: %s (mode: %s)", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("Session TTL Hours: %d", cfg.Session.TTLHours)
		log.Printf("Google OAuth configured: %t", cfg.OAuth.Google.ClientID != "")
		log.Printf("Discord OAuth configured: %t", cfg.OAuth.Discord.ClientID != "")
		log.Printf("Storage Bucket: %s", cfg.Storage.Bucket)
		log.Printf("Client URL: %s", cfg.Client.URL)
		log.Printf("----------------------------")
	}

	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Database.Password == "" && os.Getenv("GIN_MODE") == "release" {
		return nil, fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 24
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "reviewbot-videos"
	}
	if cfg.Storage.PublicURL == "" && cfg.Storage.Endpoint != "" {
		scheme := "http"
		if cfg.Storage.UseSSL {
			scheme = "https"
		}
		cfg.Storage.PublicURL = fmt.Sprintf("%s://%s", scheme, cfg.Storage.Endpoint)
	}
	if cfg.Client.URL == "" {
		cfg.Client.URL = "http://localhost:3000"
	}
	if cfg.Client.AuthSuccess == "" {
		cfg.Client.AuthSuccess = cfg.Client.URL + "/auth/success"
	}
	if cfg.Client.AuthFailure == "" {
		cfg.Client.AuthFailure = cfg.Client.URL + "/auth/failure"
	}
}

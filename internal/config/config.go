package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const serviceName = "pump-client"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// QueryAPIConfig holds configuration for the backend query API
type QueryAPIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PageLimit       int           `mapstructure:"page_limit"`
	PageSleep       time.Duration `mapstructure:"page_sleep"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"` // cron spec, empty disables periodic refresh
	RequestsPerSec  float64       `mapstructure:"requests_per_second"` // 0 disables client-side throttling
	Burst           int           `mapstructure:"burst"`
}

// FeedConfig holds live update feed configuration
type FeedConfig struct {
	URL                  string        `mapstructure:"url"`
	ReconnectDelay       time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
	HandshakeTimeout     time.Duration `mapstructure:"handshake_timeout"`
}

// EthereumConfig holds execution layer configuration
type EthereumConfig struct {
	RPCURL                   string        `mapstructure:"rpc_url"`
	ChainID                  int64         `mapstructure:"chain_id"`
	PrivateKey               string        `mapstructure:"private_key"`
	PumpAddress              string        `mapstructure:"pump_address"`
	RouterAddress            string        `mapstructure:"router_address"`
	WETHAddress              string        `mapstructure:"weth_address"`
	ExplorerURL              string        `mapstructure:"explorer_url"`
	ConfirmationPollInterval time.Duration `mapstructure:"confirmation_poll_interval"`
}

// TradeConfig holds trade execution configuration
type TradeConfig struct {
	SlippageBps            int           `mapstructure:"slippage_bps"`
	Deadline               time.Duration `mapstructure:"deadline"`
	GraduationThresholdWei string        `mapstructure:"graduation_threshold_wei"`
}

// CacheConfig holds local trade cache configuration
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "postgres"
	Dir     string `mapstructure:"dir"`
	Key     string `mapstructure:"key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS configuration for cross-instance cache broadcasts
type NATSConfig struct {
	URL            string        `mapstructure:"url"` // empty disables cross-instance broadcasts
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
}

// ServerConfig holds control API server configuration
type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds notification worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// ClientConfig holds configuration for pump-client
type ClientConfig struct {
	BaseConfig `mapstructure:",squash"`
	API        QueryAPIConfig `mapstructure:"api"`
	Feed       FeedConfig     `mapstructure:"feed"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Trade      TradeConfig    `mapstructure:"trade"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Server     ServerConfig   `mapstructure:"server"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Worker     WorkerConfig   `mapstructure:"worker"`
}

// LoadClientConfig loads configuration for pump-client
func LoadClientConfig(configFile string, envPath string) (*ClientConfig, error) {
	v := configureViper(serviceName, configFile, envPath)

	// Set defaults
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.page_limit", 100)
	v.SetDefault("api.page_sleep", "250ms")
	v.SetDefault("api.refresh_schedule", "@every 5m")
	v.SetDefault("api.requests_per_second", 0)
	v.SetDefault("api.burst", 1)
	v.SetDefault("feed.reconnect_delay", "3s")
	v.SetDefault("feed.max_reconnect_attempts", 5)
	v.SetDefault("feed.handshake_timeout", "10s")
	v.SetDefault("ethereum.confirmation_poll_interval", "2s")
	v.SetDefault("trade.slippage_bps", 10000)
	v.SetDefault("trade.deadline", "20m")
	v.SetDefault("trade.graduation_threshold_wei", "1000000000000000000")
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", ".pump-client")
	v.SetDefault("cache.key", "app-state")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", serviceName)
	v.SetDefault("nats.subject_prefix", "pump.appstate")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8088)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("worker.pool_size", 4)
	v.SetDefault("worker.queue_size", 256)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that cannot be defaulted
func (c *ClientConfig) Validate() error {
	if c.API.PageLimit <= 0 {
		return fmt.Errorf("api.page_limit must be positive, got %d", c.API.PageLimit)
	}
	if c.API.RequestsPerSec < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative, got %v", c.API.RequestsPerSec)
	}
	if c.Feed.MaxReconnectAttempts < 0 {
		return fmt.Errorf("feed.max_reconnect_attempts must not be negative, got %d", c.Feed.MaxReconnectAttempts)
	}
	if c.Trade.SlippageBps < 0 || c.Trade.SlippageBps > 10000 {
		return fmt.Errorf("trade.slippage_bps must be within [0, 10000], got %d", c.Trade.SlippageBps)
	}
	switch c.Cache.Backend {
	case "file", "postgres":
	default:
		return fmt.Errorf("cache.backend must be file or postgres, got %q", c.Cache.Backend)
	}
	return nil
}

// configureViper reads config.yaml (or configFile) and PUMP_CLIENT_* environment variables
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", fmt.Sprintf("cmd/%s/", service), "config/"} {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("PUMP_CLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars for bound keys when there is no config file
	bindEnv(v, reflect.TypeOf(ClientConfig{}), "")
	return v
}

// bindEnv binds every leaf key of t, following mapstructure tags and squashed embeds
func bindEnv(v *viper.Viper, t reflect.Type, prefix string) {
	for i := range t.NumField() {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if opts == "squash" {
			bindEnv(v, field.Type, prefix)
			continue
		}
		if name == "" || name == "-" {
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			bindEnv(v, field.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when a setting is absent from the config file
const (
	DefaultDataPath        = "meterusage.csv"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultRPCListen       = ":50051"
	DefaultGatewayListen   = ":8000"
	DefaultBackend         = "localhost:50051"
	DefaultRequestTimeout  = 10 * time.Second
	DefaultHealthTimeout   = 2 * time.Second
	DefaultReadyTimeout    = 30 * time.Second
	DefaultMQTTBroker      = "localhost:1883"
	DefaultMQTTTopicPrefix = "electric_meter"
	DefaultMQTTClientID    = "gridserve"
)

// Config holds the application configuration
type Config struct {
	DataPath string        `yaml:"data_path,omitempty"` // CSV or SQLite file served by the RPC process
	Log      LogConfig     `yaml:"log,omitempty"`
	RPC      RPCConfig     `yaml:"rpc,omitempty"`
	Gateway  GatewayConfig `yaml:"gateway,omitempty"`
	MQTT     MQTTConfig    `yaml:"mqtt,omitempty"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// RPCConfig holds settings for the consumption RPC server
type RPCConfig struct {
	Listen        string `yaml:"listen,omitempty"`         // e.g., ":50051"
	MetricsListen string `yaml:"metrics_listen,omitempty"` // empty disables the metrics endpoint
}

// GatewayConfig holds settings for the HTTP gateway
type GatewayConfig struct {
	Listen         string        `yaml:"listen,omitempty"`          // e.g., ":8000"
	Backend        string        `yaml:"backend,omitempty"`         // RPC server address
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"` // per RPC call
	HealthTimeout  time.Duration `yaml:"health_timeout,omitempty"`  // per health probe
	ReadyTimeout   time.Duration `yaml:"ready_timeout,omitempty"`   // startup wait for the backend
	StaticDir      string        `yaml:"static_dir,omitempty"`      // frontend files served under /static/
}

// MQTTConfig holds MQTT broker configuration for the publish command
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker,omitempty"` // host:port
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	ClientID    string `yaml:"client_id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Default returns a config with every setting filled in
func Default() *Config {
	return &Config{
		DataPath: DefaultDataPath,
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		RPC:      RPCConfig{Listen: DefaultRPCListen},
		Gateway: GatewayConfig{
			Listen:         DefaultGatewayListen,
			Backend:        DefaultBackend,
			RequestTimeout: DefaultRequestTimeout,
			HealthTimeout:  DefaultHealthTimeout,
			ReadyTimeout:   DefaultReadyTimeout,
		},
		MQTT: MQTTConfig{
			Broker:      DefaultMQTTBroker,
			TopicPrefix: DefaultMQTTTopicPrefix,
			ClientID:    DefaultMQTTClientID,
		},
	}
}

// Validate rejects settings that cannot be defaulted away
func (c *Config) Validate() error {
	if c.Gateway.RequestTimeout < 0 {
		return fmt.Errorf("gateway.request_timeout must not be negative")
	}
	if c.Gateway.HealthTimeout < 0 {
		return fmt.Errorf("gateway.health_timeout must not be negative")
	}
	if c.Gateway.ReadyTimeout < 0 {
		return fmt.Errorf("gateway.ready_timeout must not be negative")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// GetDataPath returns the data file path, defaulting to ./meterusage.csv
func (c *Config) GetDataPath() string {
	if c.DataPath == "" {
		return DefaultDataPath
	}
	return c.DataPath
}

// GetLogLevel returns the log level, defaulting to info
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return DefaultLogLevel
	}
	return c.Log.Level
}

// GetLogFormat returns the log format, defaulting to text
func (c *Config) GetLogFormat() string {
	if c.Log.Format == "" {
		return DefaultLogFormat
	}
	return c.Log.Format
}

// GetRPCListen returns the RPC listen address
func (c *Config) GetRPCListen() string {
	if c.RPC.Listen == "" {
		return DefaultRPCListen
	}
	return c.RPC.Listen
}

// GetGatewayListen returns the HTTP listen address
func (c *Config) GetGatewayListen() string {
	if c.Gateway.Listen == "" {
		return DefaultGatewayListen
	}
	return c.Gateway.Listen
}

// GetBackend returns the RPC address the gateway and CLI commands dial
func (c *Config) GetBackend() string {
	if c.Gateway.Backend == "" {
		return DefaultBackend
	}
	return c.Gateway.Backend
}

// GetRequestTimeout returns the per-call RPC timeout
func (c *Config) GetRequestTimeout() time.Duration {
	if c.Gateway.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.Gateway.RequestTimeout
}

// GetHealthTimeout returns the timeout of a single health probe
func (c *Config) GetHealthTimeout() time.Duration {
	if c.Gateway.HealthTimeout <= 0 {
		return DefaultHealthTimeout
	}
	return c.Gateway.HealthTimeout
}

// GetReadyTimeout returns how long the gateway waits for the backend at startup
func (c *Config) GetReadyTimeout() time.Duration {
	if c.Gateway.ReadyTimeout <= 0 {
		return DefaultReadyTimeout
	}
	return c.Gateway.ReadyTimeout
}

// GetMQTT returns the MQTT settings with defaults applied
func (c *Config) GetMQTT() MQTTConfig {
	m := c.MQTT
	if m.Broker == "" {
		m.Broker = DefaultMQTTBroker
	}
	if m.TopicPrefix == "" {
		m.TopicPrefix = DefaultMQTTTopicPrefix
	}
	if m.ClientID == "" {
		m.ClientID = DefaultMQTTClientID
	}
	return m
}

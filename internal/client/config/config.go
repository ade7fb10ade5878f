package config

import "time"

// Config holds runtime settings for the StudyShare client.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ENDPOINT_ADDR"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	SessionDB          string        `env:"SESSION_DB"`
	MaxUploadSize      int64         `env:"MAX_UPLOAD_SIZE"`
	LogLevel           string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionDB = "studyshare.db"
	c.MaxUploadSize = 20 << 20
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config from defaults, then the config file, then
// the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

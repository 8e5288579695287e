package configx

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetStartupConfig() *StartupConfig
	GetGcpConfig() *GcpConfig
	GetLoggingConfig() *LoggingConfig
	GetEventsConfig() *EventsConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration for the application and is expected to be in the following YAML format:
/*
name: "recipe-service"
environment: "development"
version: "1.0"
logging:
  level: "debug"
server:
  port: "9876"
  concurrency: 10
  disableStartupMsg: false
db:
  host: localhost
  port: 5432
  name: recipes
  user: postgres
  password: secret
  maxConn: 10
startup:
  retryIntervalMilli: 1000
  maxAttempts: 0
  shutdownTimeoutMilli: 500
gcp:
  projectNumber: 620222630834
  project: mealforge-dev
  location: europe-west4
events:
  enabled: false
  topic: recipe-events
  archiveDataset: recipe_analytics
  archiveTable: recipe_events
*/
type BaseConfig struct {
	Name        string          `mapstructure:"name"`
	Environment string          `mapstructure:"environment"`
	Version     string          `mapstructure:"version"`
	Logging     *LoggingConfig  `mapstructure:"logging"`
	Server      *ServerConfig   `mapstructure:"server"`
	Database    *DatabaseConfig `mapstructure:"db"`
	Startup     *StartupConfig  `mapstructure:"startup"`
	Gcp         *GcpConfig      `mapstructure:"gcp"`
	Events      *EventsConfig   `mapstructure:"events"`
}

type ServerConfig struct {
	Port                  string `mapstructure:"port"`
	Concurrency           int    `mapstructure:"concurrency"`
	DisableStartupMessage bool   `mapstructure:"disableStartupMsg"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig - connection parameters for the backing Postgres instance.
// The `db` section keys map to the DB_HOST, DB_PORT, DB_NAME, DB_USER and
// DB_PASSWORD environment variables through the viper key replacer.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int32  `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConn  int32  `mapstructure:"maxConn"`
}

// StartupConfig - retry policy for the readiness gate and the shutdown budget.
// MaxAttempts 0 keeps retrying until the startup context is cancelled.
type StartupConfig struct {
	RetryIntervalMilli   int64 `mapstructure:"retryIntervalMilli"`
	MaxAttempts          int   `mapstructure:"maxAttempts"`
	ShutdownTimeoutMilli int64 `mapstructure:"shutdownTimeoutMilli"`
}

type GcpConfig struct {
	ProjectId     string `mapstructure:"project"`
	ProjectNumber string `mapstructure:"projectNumber"`
	Location      string `mapstructure:"location"`
}

// EventsConfig - domain event publishing; disabled by default.
type EventsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Topic          string `mapstructure:"topic"`
	ArchiveDataset string `mapstructure:"archiveDataset"`
	ArchiveTable   string `mapstructure:"archiveTable"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return checkIfLocalEnv(cfg.Environment)
}

func (cfg BaseConfig) GetServerConfig() *ServerConfig {
	return cfg.Server
}

func (cfg BaseConfig) GetDatabaseConfig() *DatabaseConfig {
	return cfg.Database
}

func (cfg BaseConfig) GetStartupConfig() *StartupConfig {
	return cfg.Startup
}

func (cfg BaseConfig) GetGcpConfig() *GcpConfig {
	return cfg.Gcp
}

func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	return cfg.Logging
}

func (cfg BaseConfig) GetEventsConfig() *EventsConfig {
	return cfg.Events
}

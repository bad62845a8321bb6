package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Redis      RedisConfig      `yaml:"redis"`
	Slack      SlackConfig      `yaml:"slack"`
	Reports    ReportsConfig    `yaml:"reports"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8090"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig selects the driver and connection. With driver "mysql" each
// request host maps to its own schema; "sqlite" uses a single shared database.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"    env:"DATABASE_DRIVER"    env-default:"mysql"`
	DSN      string `yaml:"dsn"       env:"DSN"`
	MaxConns int    `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"10"`
	LogLevel string `yaml:"log_level" env:"DATABASE_LOG_LEVEL" env-default:"warn"`
	Schema   string `yaml:"schema"    env:"DATABASE_SCHEMA"`

	// SSMParameter names an SSM parameter holding a yaml list of database
	// entries; SSMEntry picks the entry used to build the DSN.
	SSMParameter string `yaml:"ssm_parameter" env:"DATABASE_SSM_PARAMETER"`
	SSMEntry     string `yaml:"ssm_entry"     env:"DATABASE_SSM_ENTRY"`
}

type AuthConfig struct {
	SigningSecret string        `yaml:"signing_secret" env:"BACKOFFICE_SIGNING_SECRET"`
	Issuer        string        `yaml:"issuer"         env:"AUTH_ISSUER"    env-default:"backoffice"`
	TokenTTL      time.Duration `yaml:"token_ttl"      env:"AUTH_TOKEN_TTL" env-default:"1h"`
}

type AttendanceConfig struct {
	// Timezone decides which calendar day a punch belongs to.
	Timezone string `yaml:"timezone" env:"ATTENDANCE_TIMEZONE" env-default:"UTC"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"      env:"REDIS_ADDR"`
	Password  string `yaml:"password"  env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db"        env:"REDIS_DB"        env-default:"0"`
	Namespace string `yaml:"namespace" env:"REDIS_NAMESPACE" env-default:"backoffice"`
}

type SlackConfig struct {
	BotToken       string `yaml:"bot_token"        env:"SLACK_BOT_TOKEN"`
	InfoChannelID  string `yaml:"info_channel_id"  env:"SLACK_INFO_CHANNEL"`
	ErrorChannelID string `yaml:"error_channel_id" env:"SLACK_ERROR_CHANNEL"`
}

type ReportsConfig struct {
	Bucket string `yaml:"bucket" env:"REPORTS_BUCKET"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Location loads the configured attendance timezone.
func (c AttendanceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c SlackConfig) Enabled() bool {
	return c.BotToken != ""
}

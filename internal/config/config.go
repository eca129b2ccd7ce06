package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Blockfrost BlockfrostConfig `mapstructure:"blockfrost"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

func (a *AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// RewardTier maps every AQI at or below UpperBound (first match wins)
// to a fixed token amount and a display label.
type RewardTier struct {
	UpperBound int    `mapstructure:"upper_bound"`
	Tokens     int    `mapstructure:"tokens"`
	Level      string `mapstructure:"level"`
}

type AgentConfig struct {
	CooldownMinutes int          `mapstructure:"cooldown_minutes"`
	MaxAQI          int          `mapstructure:"max_aqi"`
	RewardTiers     []RewardTier `mapstructure:"reward_tiers"`
	BatchCron       string       `mapstructure:"batch_cron"`
}

func (a *AgentConfig) Cooldown() time.Duration {
	if a.CooldownMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.CooldownMinutes) * time.Minute
}

type BlockfrostConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ProjectID      string `mapstructure:"project_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Agent.MaxAQI == 0 {
		c.Agent.MaxAQI = 500
	}
	if c.Agent.CooldownMinutes == 0 {
		c.Agent.CooldownMinutes = 60
	}
	if len(c.Agent.RewardTiers) == 0 {
		c.Agent.RewardTiers = DefaultRewardTiers()
	}
	if c.Agent.BatchCron == "" {
		c.Agent.BatchCron = "0 0 * * * *"
	}
	if c.Blockfrost.TimeoutSeconds == 0 {
		c.Blockfrost.TimeoutSeconds = 30
	}
}

// DefaultRewardTiers is the standard AQI payout table: cleaner air
// earns more tokens.
func DefaultRewardTiers() []RewardTier {
	return []RewardTier{
		{UpperBound: 25, Tokens: 50, Level: "Excellent"},
		{UpperBound: 50, Tokens: 35, Level: "Good"},
		{UpperBound: 100, Tokens: 20, Level: "Moderate"},
		{UpperBound: 150, Tokens: 10, Level: "Unhealthy for Sensitive"},
		{UpperBound: 200, Tokens: 5, Level: "Unhealthy"},
		{UpperBound: 500, Tokens: 3, Level: "Very Unhealthy"},
	}
}

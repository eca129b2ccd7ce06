package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 3306
server:
  port: 8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Agent.MaxAQI)
	assert.Equal(t, time.Hour, cfg.Agent.Cooldown())
	assert.Equal(t, DefaultRewardTiers(), cfg.Agent.RewardTiers)
	assert.Equal(t, "0 0 * * * *", cfg.Agent.BatchCron)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
agent:
  cooldown_minutes: 30
  max_aqi: 400
  reward_tiers:
    - upper_bound: 100
      tokens: 7
      level: Fine
    - upper_bound: 400
      tokens: 1
      level: Bad
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Agent.Cooldown())
	assert.Equal(t, 400, cfg.Agent.MaxAQI)
	require.Len(t, cfg.Agent.RewardTiers, 2)
	assert.Equal(t, 7, cfg.Agent.RewardTiers[0].Tokens)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 3306, User: "eco", Password: "pw", DBName: "ecopulse",
	}
	assert.Equal(t,
		"eco:pw@tcp(db:3306)/ecopulse?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}

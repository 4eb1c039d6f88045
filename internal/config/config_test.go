package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"server": {"host": "0.0.0.0", "port": 8080},
		"store": {"id": 1, "name": "downtown", "checkouts": ["checkout-1"]}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3600, cfg.Express.EvaluationWindowSeconds)
	assert.Equal(t, 60, cfg.Express.EvaluationPeriodSeconds)
	assert.Equal(t, 0.5, cfg.Express.Threshold)
	assert.Equal(t, 8, cfg.Express.ItemLimit)
	assert.Equal(t, 300, cfg.Stock.CheckIntervalSeconds)
	assert.Equal(t, "ampl:", cfg.Optimizer.Prompt)
	assert.Equal(t, 30, cfg.Optimizer.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Bank.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Dispatch.ReservationTimeoutSeconds)
	assert.Equal(t, 5, cfg.Dispatch.StockQueryTimeoutSeconds)

	assert.Equal(t, time.Hour, cfg.Express.EvaluationWindow())
	assert.Equal(t, time.Minute, cfg.Express.EvaluationPeriod())
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	path := writeConfigFile(t, `{
		"express": {
			"evaluation_window_seconds": 120,
			"evaluation_period_seconds": 10,
			"threshold": 0.7,
			"item_limit": 5
		},
		"optimizer": {"command": "ampl", "prompt": "> "}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Express.EvaluationWindow())
	assert.Equal(t, 10*time.Second, cfg.Express.EvaluationPeriod())
	assert.Equal(t, 0.7, cfg.Express.Threshold)
	assert.Equal(t, 5, cfg.Express.ItemLimit)
	assert.Equal(t, "> ", cfg.Optimizer.Prompt)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{"server": `)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		DBName:   "retail_coordination",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=retail_coordination sslmode=disable",
		cfg.GetDSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"storage": { "type": "sqlite", "sqlite": { "dumpPath": "/tmp/x.db" } }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rclog.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))

	storage, err := Storage()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", storage.Type)
	assert.Equal(t, "/tmp/x.db", storage.Sqlite.DumpPath)
	// untouched sections keep their defaults
	assert.Equal(t, "./recordings", storage.Memory.OutputDir)
	assert.True(t, storage.Memory.CompressOutput)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rclog.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./recordings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, "ws://localhost:5231/ingest", viper.GetString("storage.websocket.url"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "rclog-metrics", viper.GetString("influx.org"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "rclog", viper.GetString("otel.serviceName"))
	assert.Equal(t, 10*time.Second, GetDuration("monitor.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestAccessors(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("k.s", "v")
	viper.Set("k.i", 7)
	viper.Set("k.b", true)
	assert.Equal(t, "v", GetString("k.s"))
	assert.Equal(t, 7, GetInt("k.i"))
	assert.True(t, GetBool("k.b"))
}

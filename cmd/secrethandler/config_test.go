package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(31337), cfg.ChainID)
	assert.Equal(t, 3, cfg.Verbosity)
	assert.True(t, cfg.AutoMine)
	assert.Equal(t, formatText, cfg.Format)
	assert.Equal(t, filepath.Join(cfg.DataDir, "chaindata"), cfg.ChainDir())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty datadir", func(c *Config) { c.DataDir = "" }},
		{"zero chain id", func(c *Config) { c.ChainID = 0 }},
		{"negative verbosity", func(c *Config) { c.Verbosity = -1 }},
		{"verbosity too high", func(c *Config) { c.Verbosity = 6 }},
		{"unknown format", func(c *Config) { c.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "datadir: /tmp/handler\nchainId: 5\nautoMine: false\n")

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, &cfg))
	assert.Equal(t, "/tmp/handler", cfg.DataDir)
	assert.Equal(t, uint64(5), cfg.ChainID)
	assert.False(t, cfg.AutoMine)
	assert.Equal(t, 3, cfg.Verbosity, "keys absent from the file keep their defaults")

	empty := writeFile(t, dir, "empty.yaml", "")
	require.NoError(t, LoadConfigFile(empty, &cfg))

	unknown := writeFile(t, dir, "unknown.yaml", "signerKey: 0x01\n")
	assert.Error(t, LoadConfigFile(unknown, &cfg))

	assert.Error(t, LoadConfigFile(filepath.Join(dir, "missing.yaml"), &cfg))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		envDataDir:   "/data",
		envChainID:   "11155111",
		envVerbosity: "5",
		envAutoMine:  "false",
		envSignerKey: "0xabc",
	}
	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg, func(k string) string { return env[k] }))
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, uint64(11155111), cfg.ChainID)
	assert.Equal(t, 5, cfg.Verbosity)
	assert.False(t, cfg.AutoMine)
	assert.Equal(t, "0xabc", cfg.SignerKey)

	bad := map[string]string{envChainID: "mainnet"}
	assert.Error(t, ApplyEnv(&cfg, func(k string) string { return bad[k] }))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.env", envSignerKey+"=0xfromfile\n"+envChainID+"=7\n")
	process := map[string]string{envChainID: "9"}

	getenv, err := loadEnv(func(k string) string { return process[k] }, path)
	require.NoError(t, err)
	assert.Equal(t, "0xfromfile", getenv(envSignerKey))
	assert.Equal(t, "9", getenv(envChainID), "process environment wins over the file")

	_, err = loadEnv(func(string) string { return "" }, filepath.Join(dir, "missing.env"))
	assert.Error(t, err, "an explicit env file must exist")
}

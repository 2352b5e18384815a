package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the command line.
const (
	envDataDir   = "SECRETHANDLER_DATADIR"
	envChainID   = "SECRETHANDLER_CHAIN_ID"
	envVerbosity = "SECRETHANDLER_VERBOSITY"
	envAutoMine  = "SECRETHANDLER_AUTOMINE"
	envSignerKey = "SECRETHANDLER_SIGNER_KEY"
)

const (
	formatText = "text"
	formatJSON = "json"

	defaultEnvFile = ".env"
)

// Config holds the resolved command line configuration. Values are taken
// from flags, then the environment (including a .env file), then the YAML
// config file, then the defaults.
type Config struct {
	DataDir   string `yaml:"datadir"`
	ChainID   uint64 `yaml:"chainId"`
	Verbosity int    `yaml:"verbosity"`
	AutoMine  bool   `yaml:"autoMine"`
	Format    string `yaml:"format"`

	// SignerKey is never read from the config file.
	SignerKey string `yaml:"-"`
}

// DefaultConfig returns the configuration of a local development ledger.
func DefaultConfig() Config {
	return Config{
		DataDir:   defaultDataDir(),
		ChainID:   31337,
		Verbosity: 3,
		AutoMine:  true,
		Format:    formatText,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".secrethandler"
	}
	return filepath.Join(home, ".secrethandler")
}

// ChainDir returns the directory holding the ledger database.
func (c *Config) ChainDir() string {
	return filepath.Join(c.DataDir, "chaindata")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if c.ChainID == 0 {
		return errors.New("config: chain id must be positive")
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: verbosity %d out of range 0-5", c.Verbosity)
	}
	switch c.Format {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("config: unknown output format %q", c.Format)
	}
	return nil
}

// LoadConfigFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// loadEnv returns a lookup over the process environment backed by the
// variables of a dotenv file. Process variables take precedence. A missing
// default .env file is not an error.
func loadEnv(getenv func(string) string, file string) (func(string) string, error) {
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}
	vars, err := godotenv.Read(file)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return getenv, nil
		}
		return nil, fmt.Errorf("config: read env file %s: %w", file, err)
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vars[key]
	}, nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(envDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := getenv(envChainID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envChainID, err)
		}
		cfg.ChainID = id
	}
	if v := getenv(envVerbosity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envVerbosity, err)
		}
		cfg.Verbosity = n
	}
	if v := getenv(envAutoMine); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envAutoMine, err)
		}
		cfg.AutoMine = on
	}
	if v := getenv(envSignerKey); v != "" {
		cfg.SignerKey = v
	}
	return nil
}

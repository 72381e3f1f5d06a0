// Package config loads and persists queuectl's configuration: a flat
// mapping with exactly two recognized keys, max_retries and backoff_base.
//
// This is deliberately not a general configuration framework. spec.md
// places config file reading/writing out of scope as an "external
// collaborator" and the state directory layout treats config.json as "a
// key/value mapping with two recognized keys" — so this package is a
// plain encoding/json struct, not a Viper-style layered loader (several
// example repos in the retrieval pack pull in github.com/spf13/viper for
// that; this domain has no use for its env/flag/remote-source merging).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Defaults match spec.md §3: 3 retries after the first attempt, base 2.
const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2
)

// ErrUnknownKey is returned by Set when key is not one of the two
// recognized configuration keys.
var ErrUnknownKey = errors.New("unknown config key")

// Config is the two-key mapping recognized by queuectl.
type Config struct {
	MaxRetries  int   `json:"max_retries"`
	BackoffBase int64 `json:"backoff_base"`
}

// Default returns the configuration used when no config.json exists yet.
func Default() Config {
	return Config{MaxRetries: DefaultMaxRetries, BackoffBase: DefaultBackoffBase}
}

// Load reads config.json at path. A missing file yields Default() rather
// than an error, since an unconfigured queue is a valid starting state.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Save writes c to config.json at path as pretty-printed JSON, truncating
// any prior contents.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Set validates key against the two recognized names, coerces value to an
// integer, and returns the updated Config. It does not persist; call Save
// on the result.
func (c Config) Set(key, value string) (Config, error) {
	var n int64
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return Config{}, fmt.Errorf("invalid integer value %q: %w", value, err)
	}
	switch key {
	case "max_retries":
		c.MaxRetries = int(n)
	case "backoff_base":
		c.BackoffBase = n
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c, nil
}

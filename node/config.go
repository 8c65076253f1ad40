package node

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/sync/psync"
)

type Config struct {
	// Sync is the sync group configuration.
	Sync *psync.Config `json:"sync"`
	// Transport is the forwarder URI. Empty uses the client configuration.
	Transport string `json:"transport"`
	// UserPrefix is the name prefix this node publishes under.
	UserPrefix string `json:"user_prefix"`
	// PublishIntervalMs is the period of new sequence numbers. Zero disables publishing.
	PublishIntervalMs int `json:"publish_interval_ms"`
	// StorageDir keeps sync replies in a Badger database instead of memory.
	StorageDir string `json:"storage_dir"`
	// MetricsAddr serves Prometheus metrics at /metrics when set.
	MetricsAddr string `json:"metrics_addr"`
	// HmacKey is a hex key shared by the group. Empty uses DigestSha256.
	HmacKey string `json:"hmac_key"`
	// LogLevel is one of TRACE, DEBUG, INFO, WARN, ERROR.
	LogLevel string `json:"log_level"`

	UserPrefixN enc.Name  `json:"-"`
	HmacKeyB    []byte    `json:"-"`
	LogLevelL   log.Level `json:"-"`
}

func (c *Config) Parse() (err error) {
	if c.Sync == nil {
		return fmt.Errorf("sync must be set")
	}
	if err = c.Sync.Parse(); err != nil {
		return err
	}

	c.UserPrefixN, err = enc.NameFromStr(c.UserPrefix)
	if err != nil || len(c.UserPrefixN) == 0 {
		return fmt.Errorf("failed to parse or invalid user prefix (%s): %w", c.UserPrefix, err)
	}

	if c.PublishIntervalMs < 0 {
		return fmt.Errorf("publish_interval_ms must not be negative")
	}

	if c.StorageDir != "" {
		path, err := filepath.Abs(c.StorageDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
		c.StorageDir = path
	}

	if c.HmacKey != "" {
		c.HmacKeyB, err = hex.DecodeString(c.HmacKey)
		if err != nil {
			return fmt.Errorf("invalid hmac key: %w", err)
		}
	}

	c.LogLevelL, err = log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	return nil
}

func (c *Config) PublishInterval() time.Duration {
	return time.Duration(c.PublishIntervalMs) * time.Millisecond
}

func DefaultConfig() *Config {
	return &Config{
		Sync:              psync.DefaultConfig(),
		Transport:         "",
		UserPrefix:        "", // invalid
		PublishIntervalMs: 5000,
		LogLevel:          "INFO",
	}
}

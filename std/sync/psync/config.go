package psync

import (
	"fmt"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// Config is the file form of FullProducerOpts.
type Config struct {
	// SyncPrefix is the shared sync group prefix.
	SyncPrefix string `json:"sync_prefix"`
	// ExpectedNumEntries sizes the IBLT.
	ExpectedNumEntries int `json:"expected_entries"`
	// SyncInterestLifetimeMs is the lifetime of sync Interests.
	SyncInterestLifetimeMs int `json:"sync_interest_lifetime_ms"`
	// SyncReplyFreshnessMs is the freshness of sync replies.
	SyncReplyFreshnessMs int `json:"sync_reply_freshness_ms"`

	// SyncPrefixN is the parsed sync prefix.
	SyncPrefixN enc.Name `json:"-"`
}

func (c *Config) Parse() (err error) {
	c.SyncPrefixN, err = enc.NameFromStr(c.SyncPrefix)
	if err != nil || len(c.SyncPrefixN) == 0 {
		return fmt.Errorf("failed to parse or invalid sync prefix (%s): %w", c.SyncPrefix, err)
	}
	if c.ExpectedNumEntries <= 0 {
		return fmt.Errorf("expected_entries must be positive, got %d", c.ExpectedNumEntries)
	}
	if c.SyncInterestLifetimeMs <= 0 {
		return fmt.Errorf("sync_interest_lifetime_ms must be positive")
	}
	if c.SyncReplyFreshnessMs <= 0 {
		return fmt.Errorf("sync_reply_freshness_ms must be positive")
	}
	return nil
}

func (c *Config) SyncInterestLifetime() time.Duration {
	return time.Duration(c.SyncInterestLifetimeMs) * time.Millisecond
}

func (c *Config) SyncReplyFreshness() time.Duration {
	return time.Duration(c.SyncReplyFreshnessMs) * time.Millisecond
}

func DefaultConfig() *Config {
	return &Config{
		SyncPrefix:             "", // invalid
		ExpectedNumEntries:     DefaultExpectedNumEntries,
		SyncInterestLifetimeMs: int(DefaultSyncInterestLifetime / time.Millisecond),
		SyncReplyFreshnessMs:   int(DefaultSyncReplyFreshness / time.Millisecond),
	}
}

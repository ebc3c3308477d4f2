// Package cache memoizes predictor output. Only model probabilities are
// cached; biomarker flags are always recomputed from the panel.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// RemoteStore is a shared second tier, typically Redis.
type RemoteStore interface {
	GetProbability(ctx context.Context, key string) (float64, bool, error)
	SetProbability(ctx context.Context, key string, probability float64, ttl time.Duration) error
}

// Stats represents cache performance statistics
type Stats struct {
	MemoryHits    int64     `json:"memory_hits"`
	MemoryMisses  int64     `json:"memory_misses"`
	RemoteHits    int64     `json:"remote_hits"`
	RemoteMisses  int64     `json:"remote_misses"`
	RemoteErrors  int64     `json:"remote_errors"`
	TotalRequests int64     `json:"total_requests"`
	LastReset     time.Time `json:"last_reset"`
}

// Config represents configuration for the tiered cache
type Config struct {
	MaxItems int
	TTL      time.Duration
}

// Tiered implements domain.ProbabilityCache with an in-process LRU in front
// of an optional remote store. Remote failures are logged and treated as
// misses.
type Tiered struct {
	memory *expirable.LRU[string, float64]
	remote RemoteStore
	ttl    time.Duration
	logger *logrus.Logger

	statsMu sync.Mutex
	stats   Stats
}

// NewTiered creates a tiered cache. remote may be nil.
func NewTiered(cfg Config, remote RemoteStore, logger *logrus.Logger) *Tiered {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	return &Tiered{
		memory: expirable.NewLRU[string, float64](cfg.MaxItems, nil, cfg.TTL),
		remote: remote,
		ttl:    cfg.TTL,
		logger: logger,
		stats:  Stats{LastReset: time.Now()},
	}
}

// Get looks in memory first, then in the remote store. A remote hit is
// copied into memory.
func (c *Tiered) Get(ctx context.Context, key string) (float64, bool) {
	c.record(func(s *Stats) { s.TotalRequests++ })

	if p, ok := c.memory.Get(key); ok {
		c.record(func(s *Stats) { s.MemoryHits++ })
		return p, true
	}
	c.record(func(s *Stats) { s.MemoryMisses++ })

	if c.remote == nil {
		return 0, false
	}

	p, ok, err := c.remote.GetProbability(ctx, key)
	if err != nil {
		c.record(func(s *Stats) { s.RemoteErrors++ })
		c.logger.WithError(err).Warn("Remote cache lookup failed")
		return 0, false
	}
	if !ok {
		c.record(func(s *Stats) { s.RemoteMisses++ })
		return 0, false
	}

	c.record(func(s *Stats) { s.RemoteHits++ })
	c.memory.Add(key, p)
	return p, true
}

// Set writes to both tiers.
func (c *Tiered) Set(ctx context.Context, key string, probability float64) {
	c.memory.Add(key, probability)

	if c.remote == nil {
		return
	}
	if err := c.remote.SetProbability(ctx, key, probability, c.ttl); err != nil {
		c.record(func(s *Stats) { s.RemoteErrors++ })
		c.logger.WithError(err).Warn("Remote cache write failed")
	}
}

// Len returns the number of in-memory entries.
func (c *Tiered) Len() int {
	return c.memory.Len()
}

// Purge empties the in-memory tier and resets statistics.
func (c *Tiered) Purge() {
	c.memory.Purge()
	c.statsMu.Lock()
	c.stats = Stats{LastReset: time.Now()}
	c.statsMu.Unlock()
}

// Stats returns a snapshot of the counters.
func (c *Tiered) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Tiered) record(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}

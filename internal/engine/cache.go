package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guidance cache: 2-tier, keyed by profile fingerprint. L1 is in-memory and
// lost on restart; L2 Redis survives restarts. Entries past the freshness TTL
// are kept for one extra TTL window so a stale artifact can still be served
// when the generator is down.
var guidanceCache *tieredCache

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1              sync.Map      // fingerprint → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
}

type cacheEntry struct {
	data     []byte // marshaled GuidanceArtifact
	storedAt time.Time
	origin   Origin
}

// fallbackTTLDivisor shortens the freshness window for template-fallback
// artifacts: they are placeholders worth regenerating, not guidance worth a
// full TTL. One 24th of the TTL is an hour at the default 24h.
const fallbackTTLDivisor = 24

// cachePayload is the L2 wire format; storedAt must survive the Redis
// round-trip for freshness checks after restart.
type cachePayload struct {
	Artifact GuidanceArtifact `json:"artifact"`
	StoredAt time.Time        `json:"storedAt"`
}

// InitCache sets up the 2-tier guidance cache. Call after Init().
// redisURL can be empty to disable L2.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	guidanceCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// freshFor returns the freshness window for an artifact origin.
func (c *tieredCache) freshFor(origin Origin) time.Duration {
	if origin == OriginFallback {
		return c.ttl / fallbackTTLDivisor
	}
	return c.ttl
}

// fresh reports whether an entry stored at t is still within its origin's
// freshness window.
func (c *tieredCache) fresh(t time.Time, origin Origin) bool {
	return time.Since(t) < c.freshFor(origin)
}

// CacheGet returns the fresh artifact for a fingerprint, trying L1 then L2.
// On L2 hit, populates L1. Stale entries are left in place for CacheGetStale.
func CacheGet(ctx context.Context, fingerprint string) (GuidanceArtifact, bool) {
	out, ok := cacheLookup(ctx, fingerprint, true)
	if ok {
		cacheHits.Add(1)
	} else {
		cacheMisses.Add(1)
	}
	return out, ok
}

// CacheGetStale returns the artifact for a fingerprint regardless of age.
// Used only for degraded serving when generation fails; does not count as a
// hit or miss.
func CacheGetStale(ctx context.Context, fingerprint string) (GuidanceArtifact, bool) {
	return cacheLookup(ctx, fingerprint, false)
}

func cacheLookup(ctx context.Context, fingerprint string, mustBeFresh bool) (GuidanceArtifact, bool) {
	if guidanceCache == nil {
		return GuidanceArtifact{}, false
	}

	// L1 check
	if val, ok := guidanceCache.l1.Load(fingerprint); ok {
		entry := val.(*cacheEntry)
		if !mustBeFresh || guidanceCache.fresh(entry.storedAt, entry.origin) {
			var out GuidanceArtifact
			if json.Unmarshal(entry.data, &out) == nil {
				slog.Debug("cache: L1 hit", slog.String("fingerprint", fingerprint), slog.Bool("fresh", guidanceCache.fresh(entry.storedAt, entry.origin)))
				return out, true
			}
			guidanceCache.l1.Delete(fingerprint) // corrupt
		}
	}

	// L2 check
	if guidanceCache.rdb != nil {
		data, err := guidanceCache.rdb.Get(ctx, fingerprint).Bytes()
		if err == nil {
			var payload cachePayload
			if json.Unmarshal(data, &payload) == nil {
				if !mustBeFresh || guidanceCache.fresh(payload.StoredAt, payload.Artifact.Origin) {
					slog.Debug("cache: L2 hit", slog.String("fingerprint", fingerprint))
					if artData, err := json.Marshal(payload.Artifact); err == nil {
						guidanceCache.l1.Store(fingerprint, &cacheEntry{data: artData, storedAt: payload.StoredAt, origin: payload.Artifact.Origin})
					}
					return payload.Artifact, true
				}
			}
		}
	}

	return GuidanceArtifact{}, false
}

// CachePut upserts the artifact for a fingerprint in both tiers.
// Key-scoped write: concurrent puts for different fingerprints never touch
// each other; same-key puts are last-writer-wins.
func CachePut(ctx context.Context, fingerprint string, artifact GuidanceArtifact) {
	if guidanceCache == nil {
		return
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		return
	}
	now := time.Now()

	guidanceCache.evictIfNeeded()

	guidanceCache.l1.Store(fingerprint, &cacheEntry{data: data, storedAt: now, origin: artifact.Origin})

	if guidanceCache.rdb != nil {
		payload, err := json.Marshal(cachePayload{Artifact: artifact, StoredAt: now})
		if err != nil {
			return
		}
		// Expire at twice the freshness window: the second half is the
		// stale-serving grace period.
		if err := guidanceCache.rdb.Set(ctx, fingerprint, payload, 2*guidanceCache.freshFor(artifact.Origin)).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes entries past the stale grace period first, then oldest entries if
// still over limit.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})

	if count < c.maxEntries {
		return
	}

	// Phase 1: remove entries past the grace period
	cutoff := time.Now().Add(-2 * c.ttl)
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && entry.storedAt.Before(cutoff) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	if count < c.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	var oldest struct {
		key any
		at  time.Time
	}
	for count >= c.maxEntries {
		oldest.key = nil
		oldest.at = time.Now().Add(time.Hour) // far future
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok {
				if entry.storedAt.Before(oldest.at) {
					oldest.key = key
					oldest.at = entry.storedAt
				}
			}
			return true
		})
		if oldest.key == nil {
			break
		}
		c.l1.Delete(oldest.key)
		count--
	}
}

// cleanupLoop periodically removes L1 entries past the stale grace period.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * c.ttl)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.storedAt.Before(cutoff) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}

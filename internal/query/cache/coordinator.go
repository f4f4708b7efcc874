// Package cache implements the multi-tier query-result cache. Results
// are keyed by query signature, stored in one sturdyc client per tier
// (each tier owns its TTL), and evicted proactively when a mutation
// touches an entity type or user they depend on.
package cache

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/mirrosha26/CoreBackend/internal/config"
	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/query/signature"
)

const evictionPercentage = 10

// Deps declares what a cached payload transitively depends on. A
// mutation on any listed entity type, or on the user, evicts the entry.
type Deps struct {
	Entities []domain.EntityType
	UserID   int64
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Sets          uint64
	Invalidations uint64
	LiveKeys      int
}

// HitRate returns the fraction of gets served from cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Coordinator is the multi-tier result cache. Reads and writes are
// safe under concurrent requests; a write race on one key resolves
// last-write-wins, which is acceptable because the tier TTL bounds the
// loser's lifetime.
type Coordinator struct {
	moderate      *sturdyc.Client[domain.CardConnection]
	heavy         *sturdyc.Client[domain.CardConnection]
	comprehensive *sturdyc.Client[domain.CardConnection]

	registry *keyRegistry
	log      *slog.Logger

	hits          atomic.Uint64
	misses        atomic.Uint64
	sets          atomic.Uint64
	invalidations atomic.Uint64
}

// New creates a Coordinator with one cache client per tier.
func New(cfg config.CacheConfig, log *slog.Logger) *Coordinator {
	return &Coordinator{
		moderate:      newTierClient(cfg, cfg.TTLModerate),
		heavy:         newTierClient(cfg, cfg.TTLHeavy),
		comprehensive: newTierClient(cfg, cfg.TTLComprehensive),
		registry:      newKeyRegistry(),
		log:           log.With("component", "query_cache"),
	}
}

func newTierClient(cfg config.CacheConfig, ttl time.Duration) *sturdyc.Client[domain.CardConnection] {
	return sturdyc.New[domain.CardConnection](cfg.Capacity, cfg.NumShards, ttl, evictionPercentage)
}

// Get returns the cached payload for the signature in the given tier.
// Lightweight queries always miss: they are computed fresh.
func (c *Coordinator) Get(sig signature.Signature, tier domain.CacheTier) (domain.CardConnection, bool) {
	client := c.client(tier)
	if client == nil {
		return domain.CardConnection{}, false
	}

	payload, ok := client.Get(string(sig))
	if ok {
		c.hits.Add(1)
		return payload, true
	}
	c.misses.Add(1)
	return domain.CardConnection{}, false
}

// Put stores a payload under the signature in the tier's client and
// registers its dependencies for proactive invalidation. Lightweight
// results are dropped.
func (c *Coordinator) Put(sig signature.Signature, payload domain.CardConnection, tier domain.CacheTier, deps Deps) {
	client := c.client(tier)
	if client == nil {
		return
	}

	client.Set(string(sig), payload)
	c.registry.register(sig, entry{
		tier:     tier,
		entities: deps.Entities,
		userID:   deps.UserID,
	})
	c.sets.Add(1)
}

// InvalidateEntity evicts every entry depending on the entity's type.
// Granularity is the entity type, not the id: cached payloads are
// filtered lists, so any member of the type may appear in any of them.
// Must be called synchronously by the write path before it reports
// success, so a read issued right after the write never sees the
// pre-mutation payload.
func (c *Coordinator) InvalidateEntity(entityType domain.EntityType, entityID int64) {
	evicted := c.evict(c.registry.takeByEntity(entityType))
	if evicted > 0 {
		c.invalidations.Add(uint64(evicted))
		c.log.Debug("invalidated cache entries",
			slog.String("entity_type", string(entityType)),
			slog.Int64("entity_id", entityID),
			slog.Int("evicted", evicted),
		)
	}
}

// InvalidateUser evicts every entry personalized for the user.
func (c *Coordinator) InvalidateUser(userID int64) {
	evicted := c.evict(c.registry.takeByUser(userID))
	if evicted > 0 {
		c.invalidations.Add(uint64(evicted))
		c.log.Debug("invalidated user cache entries",
			slog.Int64("user_id", userID),
			slog.Int("evicted", evicted),
		)
	}
}

func (c *Coordinator) evict(taken map[signature.Signature]domain.CacheTier) int {
	for sig, tier := range taken {
		if client := c.client(tier); client != nil {
			client.Delete(string(sig))
		}
	}
	return len(taken)
}

// Snapshot returns current cache counters.
func (c *Coordinator) Snapshot() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Sets:          c.sets.Load(),
		Invalidations: c.invalidations.Load(),
		LiveKeys:      c.registry.size(),
	}
}

func (c *Coordinator) client(tier domain.CacheTier) *sturdyc.Client[domain.CardConnection] {
	switch tier {
	case domain.TierModerate:
		return c.moderate
	case domain.TierHeavy:
		return c.heavy
	case domain.TierComprehensive:
		return c.comprehensive
	default:
		return nil
	}
}

package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrosha26/CoreBackend/internal/config"
	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/query/signature"
)

func newCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	cfg := config.CacheConfig{
		Capacity:         1000,
		NumShards:        4,
		TTLModerate:      5 * time.Minute,
		TTLHeavy:         15 * time.Minute,
		TTLComprehensive: 30 * time.Minute,
	}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func payload(total int) domain.CardConnection {
	return domain.CardConnection{
		Nodes:      []domain.Card{{ID: 1, Name: "Acme"}},
		TotalCount: total,
	}
}

func TestCoordinator_PutGet(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)
	sig := signature.Signature("query:v4:0000000000000001")

	_, ok := c.Get(sig, domain.TierModerate)
	require.False(t, ok)

	c.Put(sig, payload(7), domain.TierModerate, Deps{Entities: []domain.EntityType{domain.EntityCard}})

	got, ok := c.Get(sig, domain.TierModerate)
	require.True(t, ok)
	assert.Equal(t, 7, got.TotalCount)

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, 1, stats.LiveKeys)
}

// Lightweight results are computed fresh on every request.
func TestCoordinator_LightweightNeverStored(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)
	sig := signature.Signature("query:v4:0000000000000002")

	c.Put(sig, payload(1), domain.TierLightweight, Deps{})

	_, ok := c.Get(sig, domain.TierLightweight)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Snapshot().LiveKeys)
}

func TestCoordinator_TiersAreIsolated(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)
	sig := signature.Signature("query:v4:0000000000000003")

	c.Put(sig, payload(1), domain.TierHeavy, Deps{})

	_, ok := c.Get(sig, domain.TierModerate)
	assert.False(t, ok)
	_, ok = c.Get(sig, domain.TierHeavy)
	assert.True(t, ok)
}

func TestCoordinator_InvalidateEntity(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)

	cardSig := signature.Signature("query:v4:000000000000000a")
	partSig := signature.Signature("query:v4:000000000000000b")

	c.Put(cardSig, payload(1), domain.TierModerate, Deps{
		Entities: []domain.EntityType{domain.EntityCard, domain.EntitySignal},
	})
	c.Put(partSig, payload(2), domain.TierHeavy, Deps{
		Entities: []domain.EntityType{domain.EntityParticipant},
	})

	c.InvalidateEntity(domain.EntitySignal, 99)

	_, ok := c.Get(cardSig, domain.TierModerate)
	assert.False(t, ok, "entry depending on signals must be evicted")

	_, ok = c.Get(partSig, domain.TierHeavy)
	assert.True(t, ok, "unrelated entry must survive")

	assert.Equal(t, uint64(1), c.Snapshot().Invalidations)
}

func TestCoordinator_InvalidateUser(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)

	mine := signature.Signature("query:v4:0000000000000010")
	theirs := signature.Signature("query:v4:0000000000000011")
	shared := signature.Signature("query:v4:0000000000000012")

	deps := []domain.EntityType{domain.EntityCard}
	c.Put(mine, payload(1), domain.TierHeavy, Deps{Entities: deps, UserID: 1})
	c.Put(theirs, payload(2), domain.TierHeavy, Deps{Entities: deps, UserID: 2})
	c.Put(shared, payload(3), domain.TierHeavy, Deps{Entities: deps})

	c.InvalidateUser(1)

	_, ok := c.Get(mine, domain.TierHeavy)
	assert.False(t, ok)
	_, ok = c.Get(theirs, domain.TierHeavy)
	assert.True(t, ok)
	_, ok = c.Get(shared, domain.TierHeavy)
	assert.True(t, ok)
}

// Re-registering a signature under new deps must drop the old links:
// a stale entity link would otherwise evict the fresh entry.
func TestCoordinator_ReRegisterReplacesDeps(t *testing.T) {
	t.Parallel()
	c := newCoordinator(t)
	sig := signature.Signature("query:v4:0000000000000020")

	c.Put(sig, payload(1), domain.TierModerate, Deps{
		Entities: []domain.EntityType{domain.EntityNote},
	})
	c.Put(sig, payload(2), domain.TierModerate, Deps{
		Entities: []domain.EntityType{domain.EntityCard},
	})

	c.InvalidateEntity(domain.EntityNote, 1)

	got, ok := c.Get(sig, domain.TierModerate)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalCount)
}

func TestStats_HitRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Stats{}.HitRate())
	assert.Equal(t, 0.75, Stats{Hits: 3, Misses: 1}.HitRate())
}

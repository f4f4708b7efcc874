package cache

import (
	"sync"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/query/signature"
)

// entry records where a cached signature lives and what it depends on,
// so invalidation can find and evict it.
type entry struct {
	tier     domain.CacheTier
	entities []domain.EntityType
	userID   int64
}

// keyRegistry tracks live cache keys by the entity types and user they
// transitively depend on. It deliberately over-approximates: an entity
// mutation evicts every entry depending on that entity's type, which
// trades precision for a guarantee that no stale payload survives a
// write.
type keyRegistry struct {
	mu       sync.Mutex
	keys     map[signature.Signature]entry
	byEntity map[domain.EntityType]map[signature.Signature]struct{}
	byUser   map[int64]map[signature.Signature]struct{}
}

func newKeyRegistry() *keyRegistry {
	return &keyRegistry{
		keys:     make(map[signature.Signature]entry),
		byEntity: make(map[domain.EntityType]map[signature.Signature]struct{}),
		byUser:   make(map[int64]map[signature.Signature]struct{}),
	}
}

func (r *keyRegistry) register(sig signature.Signature, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.keys[sig]; ok {
		r.unlinkLocked(sig, old)
	}
	r.keys[sig] = e

	for _, et := range e.entities {
		set, ok := r.byEntity[et]
		if !ok {
			set = make(map[signature.Signature]struct{})
			r.byEntity[et] = set
		}
		set[sig] = struct{}{}
	}
	if e.userID != 0 {
		set, ok := r.byUser[e.userID]
		if !ok {
			set = make(map[signature.Signature]struct{})
			r.byUser[e.userID] = set
		}
		set[sig] = struct{}{}
	}
}

// takeByEntity removes and returns all signatures depending on the
// entity type, with the tier each lives in.
func (r *keyRegistry) takeByEntity(et domain.EntityType) map[signature.Signature]domain.CacheTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takeLocked(r.byEntity[et])
}

// takeByUser removes and returns all signatures personalized for the
// user.
func (r *keyRegistry) takeByUser(userID int64) map[signature.Signature]domain.CacheTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takeLocked(r.byUser[userID])
}

func (r *keyRegistry) takeLocked(set map[signature.Signature]struct{}) map[signature.Signature]domain.CacheTier {
	if len(set) == 0 {
		return nil
	}
	taken := make(map[signature.Signature]domain.CacheTier, len(set))
	for sig := range set {
		if e, ok := r.keys[sig]; ok {
			taken[sig] = e.tier
			r.unlinkLocked(sig, e)
			delete(r.keys, sig)
		}
	}
	return taken
}

func (r *keyRegistry) unlinkLocked(sig signature.Signature, e entry) {
	for _, et := range e.entities {
		delete(r.byEntity[et], sig)
	}
	if e.userID != 0 {
		delete(r.byUser[e.userID], sig)
	}
}

func (r *keyRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

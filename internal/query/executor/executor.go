// Package executor orchestrates query execution: admission control,
// cache lookup, prefetch planning, store fetches, batch loading,
// privacy filtering and cache population. One Execute call handles one
// query; the only state shared across concurrent calls is the cache
// coordinator and the store's connection pool.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"github.com/mirrosha26/CoreBackend/internal/config"
	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/loader"
	"github.com/mirrosha26/CoreBackend/internal/query/cache"
	"github.com/mirrosha26/CoreBackend/internal/query/complexity"
	"github.com/mirrosha26/CoreBackend/internal/query/planner"
	"github.com/mirrosha26/CoreBackend/internal/query/signature"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/card"
)

// Request is the single logical operation the core exposes: a
// selection tree plus filters, pagination, sort and the requester's
// privacy context.
type Request struct {
	Tree       domain.SelectionTree
	Filter     domain.CardFilter
	Pagination domain.Pagination
	SortBy     domain.SortBy
	SortOrder  domain.SortOrder
	Privacy    domain.PrivacyContext
	// CardID selects a single root card instead of a filtered list.
	CardID *int64
}

// Result is a resolved query: nodes, pagination metadata and
// execution diagnostics.
type Result struct {
	Connection  domain.CardConnection
	Diagnostics domain.Diagnostics
}

// QueryExecutor is the boundary any API front end calls.
type QueryExecutor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// ---------------------------------------------------------------------------
// Store interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type cardRepo interface {
	List(ctx context.Context, q card.Query) ([]domain.Card, error)
	Count(ctx context.Context, q card.Query) (int, error)
	GetByID(ctx context.Context, cardID int64) (domain.Card, error)
}

// Executor coordinates the components per incoming query.
type Executor struct {
	analyzer *complexity.Analyzer
	cache    *cache.Coordinator
	cards    cardRepo
	repos    *loader.Repos
	backoff  time.Duration
	log      *slog.Logger
}

// New creates an Executor.
func New(
	cfg config.QueryConfig,
	analyzer *complexity.Analyzer,
	coordinator *cache.Coordinator,
	cards cardRepo,
	repos *loader.Repos,
	log *slog.Logger,
) *Executor {
	return &Executor{
		analyzer: analyzer,
		cache:    coordinator,
		cards:    cards,
		repos:    repos,
		backoff:  cfg.RetryBackoff,
		log:      log.With("component", "query_executor"),
	}
}

// Execute runs one query through the full state machine:
//
//	ADMITTED → CACHE_CHECK → {hit: DONE} |
//	{miss: PLANNING → FETCHING → ASSEMBLING → CACHE_STORE → DONE}
//
// Admission failures (complexity, auth, validation) short-circuit
// before any cache or store access. Transient store errors are retried
// once with backoff. CACHE_STORE is skipped if the context was
// cancelled so aborted queries never populate the cache.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := e.admit(&req); err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(req.Tree)
	if err := e.analyzer.CheckBudget(req.Tree, analysis); err != nil {
		return nil, err
	}

	trending := req.Filter.Trending != nil && *req.Filter.Trending
	sigReq := signature.Request{
		Tree:       req.Tree,
		Filter:     req.Filter,
		Pagination: req.Pagination,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		Privacy:    req.Privacy,
		CardID:     req.CardID,
	}
	tier := cache.TierFor(analysis.Complexity, sigReq.Personalized(), trending)
	sig := signature.Build(sigReq)

	diag := domain.Diagnostics{
		Complexity: analysis.Complexity,
		Depth:      analysis.Depth,
		Tier:       tier,
	}

	if payload, ok := e.cache.Get(sig, tier); ok {
		diag.CacheHit = true
		diag.Duration = time.Since(start)
		return &Result{Connection: payload, Diagnostics: diag}, nil
	}

	spec := planner.Plan(req.Tree)

	conn, dbQueries, err := e.fetch(ctx, req, spec)
	if err != nil {
		return nil, err
	}
	diag.DBQueries = dbQueries

	// Aborted queries must not populate the cache: a partially
	// resolved payload under a valid signature would be served as
	// complete.
	if ctx.Err() == nil && tier.Cacheable() {
		e.cache.Put(sig, *conn, tier, cache.Deps{
			Entities: dependsOn(req.Tree),
			UserID:   depUserID(sigReq),
		})
	}

	diag.Duration = time.Since(start)
	return &Result{Connection: *conn, Diagnostics: diag}, nil
}

// admit validates arguments and identity before anything else runs.
func (e *Executor) admit(req *Request) error {
	if err := req.Filter.Validate(); err != nil {
		return err
	}
	req.Pagination.Normalize()

	personalizedOp := req.Filter.Personalized() ||
		req.Tree.Root.Kind == domain.FieldUserFeed ||
		req.Tree.Has(domain.FieldNotes) ||
		req.Tree.Has(domain.FieldUserData)
	if personalizedOp && req.Privacy.Anonymous() {
		return fmt.Errorf("personalized query requires identity: %w", domain.ErrUnauthorized)
	}
	return nil
}

// fetch runs PLANNING → FETCHING → ASSEMBLING and returns the
// assembled connection plus the store round-trip count.
func (e *Executor) fetch(ctx context.Context, req Request, spec planner.Spec) (*domain.CardConnection, int, error) {
	if req.CardID != nil {
		return e.fetchOne(ctx, req, spec)
	}

	q := card.Query{
		Filter:     req.Filter,
		Pagination: req.Pagination,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		UserID:     req.Privacy.UserID,
	}

	var (
		nodes []domain.Card
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.withRetry(gctx, func() error {
			var err error
			nodes, err = e.cards.List(gctx, q)
			return err
		})
	})
	g.Go(func() error {
		return e.withRetry(gctx, func() error {
			var err error
			total, err = e.cards.Count(gctx, q)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	dbQueries := 2

	loaded, err := e.resolveRelations(ctx, nodes, req, spec)
	if err != nil {
		return nil, dbQueries, err
	}
	dbQueries += loaded

	// Single privacy-enforcement point: every cached payload has
	// already passed through this filter for its signature's context.
	applyPrivacy(nodes, req.Privacy)

	return &domain.CardConnection{
		Nodes:       nodes,
		TotalCount:  total,
		HasNextPage: req.Pagination.Offset()+len(nodes) < total,
	}, dbQueries, nil
}

// fetchOne resolves a single root card.
func (e *Executor) fetchOne(ctx context.Context, req Request, spec planner.Spec) (*domain.CardConnection, int, error) {
	var node domain.Card
	err := e.withRetry(ctx, func() error {
		var err error
		node, err = e.cards.GetByID(ctx, *req.CardID)
		return err
	})
	if err != nil {
		return nil, 1, err
	}

	nodes := []domain.Card{node}
	loaded, err := e.resolveRelations(ctx, nodes, req, spec)
	if err != nil {
		return nil, 1 + loaded, err
	}

	applyPrivacy(nodes, req.Privacy)

	return &domain.CardConnection{
		Nodes:       nodes,
		TotalCount:  1,
		HasNextPage: false,
	}, 1 + loaded, nil
}

// resolveRelations fills the requested relations of the fetched cards.
// Eager relations run as unconditional batched queries over the whole
// page; deferred relations go through the per-execution loaders, which
// dedupe keys and preserve request order. Returns the number of store
// round trips issued.
func (e *Executor) resolveRelations(ctx context.Context, nodes []domain.Card, req Request, spec planner.Spec) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}

	signalLimit := spec.SignalsLimit
	if sel, ok := req.Tree.Find(domain.FieldSignals); ok && signalLimit == 0 {
		signalLimit = sel.Args.First
	}

	loaders := loader.New(e.repos, signalLimit, req.Privacy.UserID)
	ctx = loader.WithLoaders(ctx, loaders)

	cardIDs := make([]int64, len(nodes))
	byID := make(map[int64]*domain.Card, len(nodes))
	for i := range nodes {
		cardIDs[i] = nodes[i].ID
		byID[nodes[i].ID] = &nodes[i]
	}

	// Eager joins and deferred loads converge on the same loaders so
	// the dedup and round-trip accounting live in one place; "eager"
	// means resolved for the full page up front rather than per field.
	if spec.JoinCategories || spec.Defers(planner.RelationCategories) || req.Tree.Has(domain.FieldCategories) {
		if err := loadInto(ctx, loaders.CategoriesByCardID, cardIDs, func(id int64, v []domain.Category) {
			byID[id].Categories = v
		}); err != nil {
			return loaders.Batches(), err
		}
	}

	if spec.JoinSignals || spec.Defers(planner.RelationSignals) {
		if err := loadInto(ctx, loaders.SignalsByCardID, cardIDs, func(id int64, v []domain.Signal) {
			byID[id].Signals = v
		}); err != nil {
			return loaders.Batches(), err
		}

		if spec.JoinSignalParticipants || spec.Defers(planner.RelationSignalParticipants) {
			if err := e.resolveSignalParticipants(ctx, loaders, nodes); err != nil {
				return loaders.Batches(), err
			}
		}
	}

	if spec.Defers(planner.RelationTeamMembers) {
		if err := loadInto(ctx, loaders.TeamMembersByCardID, cardIDs, func(id int64, v []domain.TeamMember) {
			byID[id].TeamMembers = v
		}); err != nil {
			return loaders.Batches(), err
		}
	}

	if spec.Defers(planner.RelationNotes) && req.Privacy.UserID != 0 {
		if err := loadInto(ctx, loaders.NotesByCardID, cardIDs, func(id int64, v []domain.Note) {
			byID[id].Notes = v
		}); err != nil {
			return loaders.Batches(), err
		}
	}

	return loaders.Batches(), nil
}

// resolveSignalParticipants batch-loads every participant referenced by
// the loaded signals. All cards' signals share one batch, so a page of
// 50 cards costs one participant round trip, not 50.
func (e *Executor) resolveSignalParticipants(ctx context.Context, loaders *loader.Loaders, nodes []domain.Card) error {
	type slot struct {
		signal *domain.Signal
		assoc  bool
	}

	var keys []int64
	var slots []slot
	for i := range nodes {
		for j := range nodes[i].Signals {
			s := &nodes[i].Signals[j]
			if s.ParticipantID != nil {
				keys = append(keys, *s.ParticipantID)
				slots = append(slots, slot{signal: s})
			}
			if s.AssociatedParticipantID != nil {
				keys = append(keys, *s.AssociatedParticipantID)
				slots = append(slots, slot{signal: s, assoc: true})
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	thunks := make([]dataloader.Thunk[*domain.Participant], len(keys))
	for i, key := range keys {
		thunks[i] = loaders.ParticipantByID.Load(ctx, key)
	}
	for i, thunk := range thunks {
		p, err := thunk()
		if err != nil {
			return err
		}
		if slots[i].assoc {
			slots[i].signal.AssociatedParticipant = p
		} else {
			slots[i].signal.Participant = p
		}
	}
	return nil
}

// loadInto loads one relation for every card through the loader and
// assigns results in key order.
func loadInto[V any](ctx context.Context, l *dataloader.Loader[int64, V], keys []int64, assign func(id int64, v V)) error {
	thunks := make([]dataloader.Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.Load(ctx, key)
	}
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return err
		}
		assign(keys[i], v)
	}
	return nil
}

// dependsOn derives the entity types a query result transitively
// depends on, for cache invalidation registration.
func dependsOn(tree domain.SelectionTree) []domain.EntityType {
	deps := []domain.EntityType{domain.EntityCard, domain.EntitySignal}
	if tree.Has(domain.FieldParticipant) || tree.Has(domain.FieldAssociatedParticipant) ||
		tree.Has(domain.FieldParticipants) || tree.Has(domain.FieldSignals) {
		deps = append(deps, domain.EntityParticipant)
	}
	if tree.Has(domain.FieldCategories) {
		deps = append(deps, domain.EntityCategory)
	}
	if tree.Has(domain.FieldNotes) || tree.Has(domain.FieldUserData) {
		deps = append(deps, domain.EntityNote)
	}
	return deps
}

func depUserID(sigReq signature.Request) int64 {
	if sigReq.Personalized() {
		return sigReq.Privacy.UserID
	}
	return 0
}

// Package planner decides, per query, which card relations the store
// should resolve eagerly in the main query and which are deferred to
// the batch loader. Eager joins win when a relation is small and
// uniformly needed; batch loading wins when it is large, optional, or
// carries per-node arguments.
package planner

import "github.com/mirrosha26/CoreBackend/internal/domain"

// Relation names a card relation that can be batch-loaded.
type Relation string

const (
	RelationSignals     Relation = "signals"
	RelationCategories  Relation = "categories"
	RelationTeamMembers Relation = "team_members"
	RelationNotes       Relation = "notes"
	// RelationSignalParticipants resolves the participant of each
	// loaded signal.
	RelationSignalParticipants Relation = "signal_participants"
)

// eagerSignalLimit is the largest per-card signal window worth
// joining into the main query. Above it the join over-fetches and the
// batch loader is cheaper.
const eagerSignalLimit = 10

// Spec enumerates the relations to join eagerly versus defer.
type Spec struct {
	// JoinCategories prefetches card categories in the main query.
	JoinCategories bool
	// JoinSignals prefetches up to SignalsLimit signals per card.
	JoinSignals  bool
	SignalsLimit int
	// JoinSignalParticipants joins participants into the signal
	// prefetch so eager signals arrive fully resolved.
	JoinSignalParticipants bool

	// Deferred relations are resolved per-card through the batch
	// loader after the main query returns.
	Deferred []Relation
}

// Defers reports whether the relation was deferred to the loader.
func (s Spec) Defers(rel Relation) bool {
	for _, d := range s.Deferred {
		if d == rel {
			return true
		}
	}
	return false
}

// Plan walks the selection tree and produces a prefetch spec.
func Plan(tree domain.SelectionTree) Spec {
	var spec Spec

	// Categories form a small, bounded set and are requested on every
	// node of the list when present: always an eager join.
	if tree.Has(domain.FieldCategories) {
		spec.JoinCategories = true
	}

	if sel, ok := tree.Find(domain.FieldSignals); ok {
		limit := sel.Args.First
		if limit == 0 {
			limit = sel.Args.PageSize
		}
		wantsParticipants := hasChild(sel, domain.FieldParticipant) ||
			hasChild(sel, domain.FieldAssociatedParticipant)

		if limit > 0 && limit <= eagerSignalLimit {
			spec.JoinSignals = true
			spec.SignalsLimit = limit
			spec.JoinSignalParticipants = wantsParticipants
		} else {
			// Unbounded or large windows over-fetch as joins.
			spec.Deferred = append(spec.Deferred, RelationSignals)
			if wantsParticipants {
				spec.Deferred = append(spec.Deferred, RelationSignalParticipants)
			}
		}
	}

	// Team members and notes are requested conditionally and are not
	// needed on every query shape: defer them.
	if tree.Has(domain.FieldTeamMembers) {
		spec.Deferred = append(spec.Deferred, RelationTeamMembers)
	}
	if tree.Has(domain.FieldNotes) || hasUserData(tree) {
		spec.Deferred = append(spec.Deferred, RelationNotes)
	}

	return spec
}

func hasChild(sel domain.Selection, kind domain.FieldKind) bool {
	for _, child := range sel.Children {
		if child.Kind == kind {
			return true
		}
		if hasChild(child, kind) {
			return true
		}
	}
	return false
}

func hasUserData(tree domain.SelectionTree) bool {
	return tree.Has(domain.FieldUserData) || argsWantUserData(tree)
}

func argsWantUserData(tree domain.SelectionTree) bool {
	want := false
	tree.Walk(func(sel domain.Selection, _ int) {
		if sel.Args.IncludeUserData {
			want = true
		}
	})
	return want
}

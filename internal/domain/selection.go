package domain

// FieldKind is the tagged variant of a known selection field. Resolvers,
// the complexity analyzer and the prefetch planner dispatch on it with
// exhaustive switches instead of matching runtime field names.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldCards
	FieldUserFeed
	FieldCard
	FieldNodes
	FieldEdges
	FieldPageInfo
	FieldSignals
	FieldParticipant
	FieldAssociatedParticipant
	FieldParticipants
	FieldCategories
	FieldTeamMembers
	FieldUserData
	FieldNotes
	FieldSavedFilters
	FieldStages
	FieldRoundStatuses
	FieldSignalsCount
	FieldLatestSignalDate
	FieldRecentProjectsCount
	FieldUniqueParticipantsCount
	FieldIntrospection
)

// SelectionArgs carries the arguments of a selection node that affect
// cost and prefetch planning.
type SelectionArgs struct {
	// First bounds the cardinality of a list field. 0 means unbounded.
	First int
	// PageSize is the declared page size on paginated list fields.
	PageSize            int
	IncludeSignals      bool
	IncludeRecentCounts bool
	IncludeUserData     bool
	Search              bool
}

// Selection is one node of the requested field tree.
type Selection struct {
	Kind     FieldKind
	Name     string
	Args     SelectionArgs
	Children []Selection
}

// SelectionTree is the root of the requested field tree for one query.
type SelectionTree struct {
	// Operation is the root field name as requested by the caller.
	Operation string
	Root      Selection
}

// IsIntrospection reports whether the tree is a schema-introspection
// query, which is admitted under a separate fixed budget.
func (t SelectionTree) IsIntrospection() bool {
	return t.Root.Kind == FieldIntrospection
}

// IsList reports whether the field kind yields a list of child nodes.
func (k FieldKind) IsList() bool {
	switch k {
	case FieldCards, FieldUserFeed, FieldNodes, FieldEdges, FieldSignals,
		FieldParticipants, FieldCategories, FieldTeamMembers, FieldNotes,
		FieldSavedFilters, FieldStages, FieldRoundStatuses:
		return true
	}
	return false
}

// Relation reports whether resolving the field requires following a
// relation to another entity (a join or a batch load).
func (k FieldKind) Relation() bool {
	switch k {
	case FieldSignals, FieldParticipant, FieldAssociatedParticipant,
		FieldParticipants, FieldCategories, FieldTeamMembers, FieldNotes:
		return true
	}
	return false
}

// Walk visits every node of the selection depth-first, parents before
// children. The visitor receives the node and its depth (root = 1).
func (t SelectionTree) Walk(fn func(sel Selection, depth int)) {
	var walk func(sel Selection, depth int)
	walk = func(sel Selection, depth int) {
		fn(sel, depth)
		for _, child := range sel.Children {
			walk(child, depth+1)
		}
	}
	walk(t.Root, 1)
}

// Has reports whether any node in the tree has the given kind.
func (t SelectionTree) Has(kind FieldKind) bool {
	found := false
	t.Walk(func(sel Selection, _ int) {
		if sel.Kind == kind {
			found = true
		}
	})
	return found
}

// Find returns the first node with the given kind, depth-first.
func (t SelectionTree) Find(kind FieldKind) (Selection, bool) {
	var hit Selection
	found := false
	t.Walk(func(sel Selection, _ int) {
		if !found && sel.Kind == kind {
			hit = sel
			found = true
		}
	})
	return hit, found
}

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

func tree(children ...domain.Selection) domain.SelectionTree {
	return domain.SelectionTree{
		Operation: "cards",
		Root: domain.Selection{
			Kind: domain.FieldCards,
			Name: "cards",
			Children: []domain.Selection{{
				Kind:     domain.FieldNodes,
				Name:     "nodes",
				Children: children,
			}},
		},
	}
}

func TestPlan_CategoriesAlwaysEager(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(domain.Selection{Kind: domain.FieldCategories, Name: "categories"}))

	assert.True(t, spec.JoinCategories)
	assert.False(t, spec.Defers(RelationCategories))
}

func TestPlan_BoundedSignalsEager(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(domain.Selection{
		Kind: domain.FieldSignals,
		Name: "signals",
		Args: domain.SelectionArgs{First: 5},
		Children: []domain.Selection{
			{Kind: domain.FieldParticipant, Name: "participant"},
		},
	}))

	assert.True(t, spec.JoinSignals)
	assert.Equal(t, 5, spec.SignalsLimit)
	assert.True(t, spec.JoinSignalParticipants)
	assert.False(t, spec.Defers(RelationSignals))
}

func TestPlan_UnboundedSignalsDeferred(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(domain.Selection{Kind: domain.FieldSignals, Name: "signals"}))

	assert.False(t, spec.JoinSignals)
	assert.True(t, spec.Defers(RelationSignals))
	assert.False(t, spec.Defers(RelationSignalParticipants))
}

func TestPlan_LargeSignalWindowDeferred(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(domain.Selection{
		Kind: domain.FieldSignals,
		Name: "signals",
		Args: domain.SelectionArgs{First: 50},
		Children: []domain.Selection{
			{Kind: domain.FieldParticipant, Name: "participant"},
		},
	}))

	assert.False(t, spec.JoinSignals)
	assert.True(t, spec.Defers(RelationSignals))
	assert.True(t, spec.Defers(RelationSignalParticipants))
}

func TestPlan_ConditionalRelationsDeferred(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(
		domain.Selection{Kind: domain.FieldTeamMembers, Name: "teamMembers"},
		domain.Selection{Kind: domain.FieldNotes, Name: "notes"},
	))

	assert.True(t, spec.Defers(RelationTeamMembers))
	assert.True(t, spec.Defers(RelationNotes))
}

func TestPlan_UserDataArgImpliesNotes(t *testing.T) {
	t.Parallel()

	tr := tree()
	tr.Root.Args.IncludeUserData = true

	spec := Plan(tr)
	assert.True(t, spec.Defers(RelationNotes))
}

func TestPlan_ScalarOnlyQueryLoadsNothing(t *testing.T) {
	t.Parallel()

	spec := Plan(tree(domain.Selection{Kind: domain.FieldSignalsCount, Name: "signalsCount"}))

	assert.False(t, spec.JoinCategories)
	assert.False(t, spec.JoinSignals)
	assert.Empty(t, spec.Deferred)
}

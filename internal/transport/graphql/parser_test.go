package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

func TestParseQuery_SelectionTree(t *testing.T) {
	t.Parallel()

	query := `
	query Feed {
		cards(pageSize: 40, search: "fintech") {
			nodes {
				name
				signals(first: 5) {
					participant { name }
				}
				categories { name }
			}
			pageInfo { hasNextPage }
		}
	}`

	got, err := ParseQuery(query, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "cards", got.Tree.Operation)
	assert.Equal(t, domain.FieldCards, got.Tree.Root.Kind)
	assert.Equal(t, 40, got.Tree.Root.Args.PageSize)
	assert.True(t, got.Tree.Root.Args.Search)

	assert.True(t, got.Tree.Has(domain.FieldSignals))
	assert.True(t, got.Tree.Has(domain.FieldParticipant))
	assert.True(t, got.Tree.Has(domain.FieldCategories))
	assert.True(t, got.Tree.Has(domain.FieldPageInfo))

	sig, ok := got.Tree.Find(domain.FieldSignals)
	require.True(t, ok)
	assert.Equal(t, 5, sig.Args.First)

	require.NotNil(t, got.Filter.Search)
	assert.Equal(t, "fintech", *got.Filter.Search)
	assert.Equal(t, 40, got.Pagination.PageSize)
}

func TestParseQuery_FilterArguments(t *testing.T) {
	t.Parallel()

	query := `
	query {
		cards(
			categories: ["ai", "fintech"],
			stages: ["seed"],
			featured: true,
			minSignals: 3,
			cardType: "SAVED",
			sortBy: "signals_count",
			sortOrder: "ASC",
			page: 2,
			pageSize: 50,
		) {
			nodes { name }
		}
	}`

	got, err := ParseQuery(query, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"ai", "fintech"}, got.Filter.Categories)
	assert.Equal(t, []string{"seed"}, got.Filter.Stages)
	require.NotNil(t, got.Filter.Featured)
	assert.True(t, *got.Filter.Featured)
	require.NotNil(t, got.Filter.MinSignals)
	assert.Equal(t, 3, *got.Filter.MinSignals)
	assert.Equal(t, domain.CardTypeSaved, got.Filter.CardType)
	assert.Equal(t, domain.SortBySignalsCount, got.SortBy)
	assert.Equal(t, domain.SortASC, got.SortOrder)
	assert.Equal(t, 2, got.Pagination.Page)
	assert.Equal(t, 50, got.Pagination.PageSize)
}

func TestParseQuery_Variables(t *testing.T) {
	t.Parallel()

	query := `
	query Cards($search: String, $cats: [String!], $size: Int) {
		cards(search: $search, categories: $cats, pageSize: $size) {
			nodes { name }
		}
	}`
	vars := map[string]any{
		"search": "robotics",
		"cats":   []any{"deeptech"},
		"size":   float64(30), // JSON numbers arrive as float64
	}

	got, err := ParseQuery(query, vars, "")
	require.NoError(t, err)

	require.NotNil(t, got.Filter.Search)
	assert.Equal(t, "robotics", *got.Filter.Search)
	assert.Equal(t, []string{"deeptech"}, got.Filter.Categories)
	assert.Equal(t, 30, got.Pagination.PageSize)
}

func TestParseQuery_SingleCard(t *testing.T) {
	t.Parallel()

	got, err := ParseQuery(`query { card(id: "42") { name signals { participant { name } } } }`, nil, "")
	require.NoError(t, err)

	assert.Equal(t, domain.FieldCard, got.Tree.Root.Kind)
	require.NotNil(t, got.CardID)
	assert.Equal(t, int64(42), *got.CardID)
}

func TestParseQuery_Introspection(t *testing.T) {
	t.Parallel()

	got, err := ParseQuery(`query { __schema { types { name } } }`, nil, "")
	require.NoError(t, err)
	assert.True(t, got.Tree.IsIntrospection())
}

func TestParseQuery_InlineFragmentsFlattened(t *testing.T) {
	t.Parallel()

	query := `
	query {
		cards {
			nodes {
				... on SignalCard {
					signalsCount
				}
			}
		}
	}`

	got, err := ParseQuery(query, nil, "")
	require.NoError(t, err)
	assert.True(t, got.Tree.Has(domain.FieldSignalsCount))
}

func TestParseQuery_OperationSelection(t *testing.T) {
	t.Parallel()

	query := `
	query A { cards { nodes { name } } }
	query B { userFeed { nodes { name } } }`

	got, err := ParseQuery(query, nil, "B")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldUserFeed, got.Tree.Root.Kind)

	_, err = ParseQuery(query, nil, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseQuery(query, nil, "C")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseQuery_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseQuery(`query { cards {`, nil, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseQuery_RejectsMutation(t *testing.T) {
	t.Parallel()

	_, err := ParseQuery(`mutation { addNote(cardId: "1", text: "x") { id } }`, nil, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestParse_Mutation(t *testing.T) {
	t.Parallel()

	q, m, err := Parse(`mutation { saveToFolder(cardId: "42", folderId: "3") { id } }`, nil, "")
	require.NoError(t, err)
	require.Nil(t, q)
	require.NotNil(t, m)

	assert.Equal(t, "saveToFolder", m.Name)
	assert.Equal(t, int64(42), m.CardID)
	assert.Equal(t, int64(3), m.FolderID)
}

func TestParse_MutationWithVariables(t *testing.T) {
	t.Parallel()

	query := `mutation AddNote($card: ID!, $text: String!) {
		addNote(cardId: $card, text: $text) { id }
	}`
	vars := map[string]any{"card": "7", "text": "worth a look"}

	_, m, err := Parse(query, vars, "")
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, int64(7), m.CardID)
	assert.Equal(t, "worth a look", m.Text)
}

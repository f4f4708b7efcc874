package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

func listTree(children ...domain.Selection) domain.SelectionTree {
	return domain.SelectionTree{
		Operation: "cards",
		Root: domain.Selection{
			Kind:     domain.FieldCards,
			Name:     "cards",
			Children: children,
		},
	}
}

func baseRequest() Request {
	return Request{
		Tree:       listTree(domain.Selection{Kind: domain.FieldNodes, Name: "nodes"}),
		Pagination: domain.Pagination{Page: 1, PageSize: 20},
		SortBy:     domain.SortByLatestSignalDate,
		SortOrder:  domain.SortDESC,
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	req := baseRequest()
	assert.Equal(t, Build(req), Build(req))
}

// Set-valued filters must not depend on input ordering.
func TestBuild_FilterOrderIndependent(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	a.Filter.Categories = []string{"fintech", "ai", "biotech"}
	a.Filter.Participants = []int64{30, 10, 20}

	b := baseRequest()
	b.Filter.Categories = []string{"biotech", "fintech", "ai"}
	b.Filter.Participants = []int64{10, 20, 30}

	assert.Equal(t, Build(a), Build(b))
}

func TestBuild_DiffersOnFilter(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	b := baseRequest()
	b.Filter.Categories = []string{"ai"}

	assert.NotEqual(t, Build(a), Build(b))
}

func TestBuild_DiffersOnPageAndSort(t *testing.T) {
	t.Parallel()

	a := baseRequest()

	paged := baseRequest()
	paged.Pagination.Page = 2
	assert.NotEqual(t, Build(a), Build(paged))

	sorted := baseRequest()
	sorted.SortBy = domain.SortByName
	assert.NotEqual(t, Build(a), Build(sorted))
}

func TestBuild_DiffersOnShape(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	b := baseRequest()
	b.Tree = listTree(
		domain.Selection{Kind: domain.FieldNodes, Name: "nodes"},
		domain.Selection{Kind: domain.FieldPageInfo, Name: "pageInfo"},
	)

	assert.NotEqual(t, Build(a), Build(b))
}

func TestBuild_DiffersOnCardID(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	id := int64(42)
	b := baseRequest()
	b.CardID = &id

	assert.NotEqual(t, Build(a), Build(b))
}

// A query that touches no user-dependent field or store scope shares
// one key across all users.
func TestBuild_NonPersonalizedIgnoresPrivacy(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	a.Filter.CardType = domain.CardTypeWorthFollowing
	a.Privacy = domain.PrivacyContext{UserID: 1, VisiblePrivateParticipants: []int64{5}}

	b := baseRequest()
	b.Filter.CardType = domain.CardTypeWorthFollowing
	b.Privacy = domain.PrivacyContext{UserID: 2}

	require.False(t, a.Personalized())
	assert.Equal(t, Build(a), Build(b))
}

// The default ALL listing excludes the requester's deleted cards, so
// authenticated users must never share a key even for scalar-only
// trees. Anonymous requests carry no such scope and still share.
func TestBuild_AuthenticatedListingsSeparateUsers(t *testing.T) {
	t.Parallel()

	a := baseRequest()
	a.Privacy = domain.PrivacyContext{UserID: 1}

	b := baseRequest()
	b.Privacy = domain.PrivacyContext{UserID: 2}

	require.True(t, a.Personalized())
	assert.NotEqual(t, Build(a), Build(b))

	anonA := baseRequest()
	anonB := baseRequest()
	require.False(t, anonA.Personalized())
	assert.Equal(t, Build(anonA), Build(anonB))
}

// Two users with different private-participant visibility must never
// share a key when the tree can surface participants.
func TestBuild_PersonalizedSeparatesPrivacyContexts(t *testing.T) {
	t.Parallel()

	tree := listTree(domain.Selection{
		Kind: domain.FieldNodes,
		Name: "nodes",
		Children: []domain.Selection{
			{Kind: domain.FieldSignals, Name: "signals"},
		},
	})

	a := baseRequest()
	a.Tree = tree
	a.Privacy = domain.PrivacyContext{UserID: 1, VisiblePrivateParticipants: []int64{5}}

	b := baseRequest()
	b.Tree = tree
	b.Privacy = domain.PrivacyContext{UserID: 2, VisiblePrivateParticipants: []int64{7}}

	require.True(t, a.Personalized())
	assert.NotEqual(t, Build(a), Build(b))
}

// The visible set is canonicalized, so its ordering is irrelevant.
func TestBuild_VisibleSetOrderIndependent(t *testing.T) {
	t.Parallel()

	tree := listTree(domain.Selection{Kind: domain.FieldSignals, Name: "signals"})

	a := baseRequest()
	a.Tree = tree
	a.Privacy = domain.PrivacyContext{UserID: 1, VisiblePrivateParticipants: []int64{9, 3, 3, 5}}

	b := baseRequest()
	b.Tree = tree
	b.Privacy = domain.PrivacyContext{UserID: 1, VisiblePrivateParticipants: []int64{3, 5, 9}}

	assert.Equal(t, Build(a), Build(b))
}

func TestPersonalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  func() Request
		want bool
	}{
		{
			name: "plain list",
			req:  baseRequest,
			want: false,
		},
		{
			name: "saved card type",
			req: func() Request {
				r := baseRequest()
				r.Filter.CardType = domain.CardTypeSaved
				return r
			},
			want: true,
		},
		{
			name: "folder filter",
			req: func() Request {
				r := baseRequest()
				id := int64(3)
				r.Filter.FolderID = &id
				return r
			},
			want: true,
		},
		{
			name: "notes selection",
			req: func() Request {
				r := baseRequest()
				r.Tree = listTree(domain.Selection{Kind: domain.FieldNotes, Name: "notes"})
				return r
			},
			want: true,
		},
		{
			name: "user feed root",
			req: func() Request {
				r := baseRequest()
				r.Tree.Root.Kind = domain.FieldUserFeed
				r.Tree.Root.Name = "userFeed"
				r.Privacy = domain.PrivacyContext{UserID: 7}
				return r
			},
			want: true,
		},
		{
			name: "all listing with identity",
			req: func() Request {
				r := baseRequest()
				r.Privacy = domain.PrivacyContext{UserID: 7}
				return r
			},
			want: true,
		},
		{
			name: "worth following with identity",
			req: func() Request {
				r := baseRequest()
				r.Filter.CardType = domain.CardTypeWorthFollowing
				r.Privacy = domain.PrivacyContext{UserID: 7}
				return r
			},
			want: false,
		},
		{
			name: "single card with identity",
			req: func() Request {
				r := baseRequest()
				id := int64(42)
				r.CardID = &id
				r.Privacy = domain.PrivacyContext{UserID: 7}
				return r
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req().Personalized())
		})
	}
}

func TestBuild_Format(t *testing.T) {
	t.Parallel()

	sig := string(Build(baseRequest()))
	assert.Regexp(t, `^query:v4:[0-9a-f]{16}$`, sig)
}

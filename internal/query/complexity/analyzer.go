// Package complexity statically scores a selection tree before
// execution and rejects over-budget queries. Scoring runs on the
// tagged tree only; no store access happens before admission.
package complexity

import (
	"math"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// Field weights reflect the relative database cost of resolving each
// field. Relation-bearing list fields carry the highest weights.
var fieldWeights = map[domain.FieldKind]int{
	domain.FieldCards:                    10,
	domain.FieldUserFeed:                 8,
	domain.FieldParticipants:             6,
	domain.FieldCard:                     5,
	domain.FieldRecentProjectsCount:      5,
	domain.FieldSavedFilters:             4,
	domain.FieldSignals:                  3,
	domain.FieldCategories:               3,
	domain.FieldUniqueParticipantsCount:  3,
	domain.FieldNodes:                    2,
	domain.FieldEdges:                    2,
	domain.FieldTeamMembers:              2,
	domain.FieldUserData:                 2,
	domain.FieldSignalsCount:             2,
	domain.FieldLatestSignalDate:         2,
	domain.FieldParticipant:              2,
	domain.FieldAssociatedParticipant:    2,
	domain.FieldNotes:                    2,
	domain.FieldPageInfo:                 1,
	domain.FieldStages:                   1,
	domain.FieldRoundStatuses:            1,
}

const (
	defaultWeight = 1

	multIncludeSignals      = 1.5
	multIncludeRecentCounts = 2.0
	multIncludeUserData     = 1.3
	multSearch              = 1.2

	// Declared page sizes are scored relative to the default window.
	pageSizeBaseline = 20.0
)

// Analysis holds the computed admission metrics for one query.
type Analysis struct {
	Complexity int
	Depth      int
}

// Analyzer scores selection trees against configured budgets.
type Analyzer struct {
	maxComplexity           int
	maxDepth                int
	introspectionComplexity int
}

// New creates an Analyzer with the given budgets.
func New(maxComplexity, maxDepth, introspectionComplexity int) *Analyzer {
	return &Analyzer{
		maxComplexity:           maxComplexity,
		maxDepth:                maxDepth,
		introspectionComplexity: introspectionComplexity,
	}
}

// Analyze computes the complexity score and depth of the tree.
// The score is monotonic: adding a field or nesting level never
// decreases it, because every node contributes at least 1.
func (a *Analyzer) Analyze(tree domain.SelectionTree) Analysis {
	return Analysis{
		Complexity: scoreNode(tree.Root, 1.0),
		Depth:      depthOf(tree.Root, 1),
	}
}

// CheckBudget admits or rejects a scored query. Introspection queries
// use a separate fixed budget; depth violations fail independently of
// score. The returned error is a *domain.ComplexityError.
func (a *Analyzer) CheckBudget(tree domain.SelectionTree, analysis Analysis) error {
	maxComplexity := a.maxComplexity
	if tree.IsIntrospection() {
		maxComplexity = a.introspectionComplexity
	}

	if analysis.Depth > a.maxDepth || analysis.Complexity > maxComplexity {
		return &domain.ComplexityError{
			Complexity:    analysis.Complexity,
			MaxComplexity: maxComplexity,
			Depth:         analysis.Depth,
			MaxDepth:      a.maxDepth,
		}
	}
	return nil
}

// Weight returns the configured weight of a field kind.
func Weight(kind domain.FieldKind) int {
	if w, ok := fieldWeights[kind]; ok {
		return w
	}
	return defaultWeight
}

// scoreNode computes weight(node)*multiplier(node) plus the cost of
// the node's subtree. List fields multiply their children by the
// declared page size relative to the baseline window.
func scoreNode(sel domain.Selection, inherited float64) int {
	mult := inherited * argMultiplier(sel.Args)

	own := float64(Weight(sel.Kind)) * mult * pageMultiplier(sel)

	nested := 0
	childMult := mult
	if sel.Kind.IsList() {
		childMult *= pageMultiplier(sel)
	}
	for _, child := range sel.Children {
		nested += scoreNode(child, childMult)
	}

	score := int(math.Ceil(own)) + nested
	if score < 1 {
		score = 1
	}
	return score
}

func argMultiplier(args domain.SelectionArgs) float64 {
	mult := 1.0
	if args.IncludeSignals {
		mult *= multIncludeSignals
	}
	if args.IncludeRecentCounts {
		mult *= multIncludeRecentCounts
	}
	if args.IncludeUserData {
		mult *= multIncludeUserData
	}
	if args.Search {
		mult *= multSearch
	}
	return mult
}

// pageMultiplier scales list fields by their declared window so that
// requesting 100 nested items costs five times the default 20.
func pageMultiplier(sel domain.Selection) float64 {
	size := sel.Args.PageSize
	if size == 0 {
		size = sel.Args.First
	}
	if size <= 0 {
		return 1.0
	}
	return math.Max(1.0, float64(size)/pageSizeBaseline)
}

func depthOf(sel domain.Selection, current int) int {
	max := current
	for _, child := range sel.Children {
		if d := depthOf(child, current+1); d > max {
			max = d
		}
	}
	return max
}

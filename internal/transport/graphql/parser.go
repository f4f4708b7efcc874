// Package graphql is the GraphQL front end of the query core. It
// parses incoming documents into tagged selection trees, maps root
// arguments onto domain filters and presents domain errors as GraphQL
// errors.
package graphql

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// fieldKinds maps schema field names onto tagged selection variants.
// Unknown fields become FieldScalar and score the default weight, so a
// schema addition degrades cost estimation instead of failing parsing.
var fieldKinds = map[string]domain.FieldKind{
	"cards":                   domain.FieldCards,
	"signalCards":             domain.FieldCards,
	"userFeed":                domain.FieldUserFeed,
	"card":                    domain.FieldCard,
	"signalCard":              domain.FieldCard,
	"nodes":                   domain.FieldNodes,
	"edges":                   domain.FieldEdges,
	"pageInfo":                domain.FieldPageInfo,
	"signals":                 domain.FieldSignals,
	"participant":             domain.FieldParticipant,
	"associatedParticipant":   domain.FieldAssociatedParticipant,
	"participants":            domain.FieldParticipants,
	"categories":              domain.FieldCategories,
	"teamMembers":             domain.FieldTeamMembers,
	"userData":                domain.FieldUserData,
	"notes":                   domain.FieldNotes,
	"savedFilters":            domain.FieldSavedFilters,
	"stages":                  domain.FieldStages,
	"roundStatuses":           domain.FieldRoundStatuses,
	"signalsCount":            domain.FieldSignalsCount,
	"latestSignalDate":        domain.FieldLatestSignalDate,
	"recentProjectsCount":     domain.FieldRecentProjectsCount,
	"uniqueParticipantsCount": domain.FieldUniqueParticipantsCount,
	"__schema":                domain.FieldIntrospection,
	"__type":                  domain.FieldIntrospection,
}

// ParsedQuery is the outcome of parsing one GraphQL read operation.
type ParsedQuery struct {
	Tree       domain.SelectionTree
	Filter     domain.CardFilter
	Pagination domain.Pagination
	SortBy     domain.SortBy
	SortOrder  domain.SortOrder
	CardID     *int64
}

// ParseQuery parses a GraphQL document and converts the selected read
// operation into a tagged selection tree plus domain filter arguments.
func ParseQuery(query string, variables map[string]any, operationName string) (*ParsedQuery, error) {
	q, m, err := Parse(query, variables, operationName)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return nil, domain.NewValidationError("operation", "expected a query operation")
	}
	return q, nil
}

// Parse parses a GraphQL document and returns exactly one of a read
// operation or a mutation.
func Parse(query string, variables map[string]any, operationName string) (*ParsedQuery, *Mutation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, nil, fmt.Errorf("parse query: %w: %v", domain.ErrValidation, err)
	}

	op, err := selectOperation(doc, operationName)
	if err != nil {
		return nil, nil, err
	}

	root, err := rootField(op)
	if err != nil {
		return nil, nil, err
	}
	vr := valueResolver{variables: variables}

	switch op.Operation {
	case ast.Query:
		q, err := buildQuery(root, vr)
		return q, nil, err
	case ast.Mutation:
		m, err := buildMutation(root, vr)
		return nil, m, err
	default:
		return nil, nil, domain.NewValidationError("operation", "unsupported operation type")
	}
}

func rootField(op *ast.OperationDefinition) (*ast.Field, error) {
	if len(op.SelectionSet) == 0 {
		return nil, domain.NewValidationError("query", "empty selection set")
	}
	root, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		return nil, domain.NewValidationError("query", "root selection must be a field")
	}
	return root, nil
}

func buildQuery(root *ast.Field, vr valueResolver) (*ParsedQuery, error) {
	parsed := &ParsedQuery{
		Tree: domain.SelectionTree{
			Operation: root.Name,
			Root:      buildSelection(root, vr),
		},
		SortBy:    domain.SortByLatestSignalDate,
		SortOrder: domain.SortDESC,
	}
	if err := applyRootArguments(parsed, root, vr); err != nil {
		return nil, err
	}
	return parsed, nil
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, domain.NewValidationError("operationName",
				"required when the document defines multiple operations")
		}
		return doc.Operations[0], nil
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op, nil
		}
	}
	return nil, domain.NewValidationError("operationName", "operation not found in document")
}

// buildSelection converts one AST field and its subtree into a tagged
// selection. Fragment spreads are inlined from the parsed document by
// gqlparser, so only inline fragments need flattening here.
func buildSelection(f *ast.Field, vr valueResolver) domain.Selection {
	kind := domain.FieldScalar
	if k, ok := fieldKinds[f.Name]; ok {
		kind = k
	}

	sel := domain.Selection{
		Kind: kind,
		Name: f.Name,
		Args: extractArgs(f, vr),
	}
	sel.Children = buildChildren(f.SelectionSet, vr)
	return sel
}

func buildChildren(set ast.SelectionSet, vr valueResolver) []domain.Selection {
	var children []domain.Selection
	for _, s := range set {
		switch node := s.(type) {
		case *ast.Field:
			children = append(children, buildSelection(node, vr))
		case *ast.InlineFragment:
			children = append(children, buildChildren(node.SelectionSet, vr)...)
		}
	}
	return children
}

// extractArgs pulls the cost-affecting arguments off a field.
func extractArgs(f *ast.Field, vr valueResolver) domain.SelectionArgs {
	var args domain.SelectionArgs
	for _, a := range f.Arguments {
		switch a.Name {
		case "first", "limit":
			args.First, _ = vr.intValue(a.Value)
		case "pageSize":
			args.PageSize, _ = vr.intValue(a.Value)
		case "includeSignals":
			args.IncludeSignals, _ = vr.boolValue(a.Value)
		case "includeRecentCounts":
			args.IncludeRecentCounts, _ = vr.boolValue(a.Value)
		case "includeUserData":
			args.IncludeUserData, _ = vr.boolValue(a.Value)
		case "search":
			if s, ok := vr.stringValue(a.Value); ok && s != "" {
				args.Search = true
			}
		}
	}
	return args
}

// applyRootArguments maps root-field arguments onto the domain filter,
// pagination and sort.
func applyRootArguments(p *ParsedQuery, root *ast.Field, vr valueResolver) error {
	for _, a := range root.Arguments {
		switch a.Name {
		case "id":
			id, ok := vr.int64Value(a.Value)
			if !ok {
				return domain.NewValidationError("id", "must be an integer id")
			}
			p.CardID = &id
		case "search":
			if s, ok := vr.stringValue(a.Value); ok && s != "" {
				p.Filter.Search = &s
			}
		case "categories":
			p.Filter.Categories, _ = vr.stringListValue(a.Value)
		case "participants":
			p.Filter.Participants, _ = vr.int64ListValue(a.Value)
		case "stages":
			p.Filter.Stages, _ = vr.stringListValue(a.Value)
		case "roundStatuses":
			p.Filter.RoundStatuses, _ = vr.stringListValue(a.Value)
		case "featured":
			p.Filter.Featured = vr.boolPtr(a.Value)
		case "isOpen":
			p.Filter.IsOpen = vr.boolPtr(a.Value)
		case "trending":
			p.Filter.Trending = vr.boolPtr(a.Value)
		case "startDate":
			t, err := vr.timeValue(a.Value)
			if err != nil {
				return domain.NewValidationError("startDate", "must be an RFC 3339 timestamp")
			}
			p.Filter.StartDate = t
		case "endDate":
			t, err := vr.timeValue(a.Value)
			if err != nil {
				return domain.NewValidationError("endDate", "must be an RFC 3339 timestamp")
			}
			p.Filter.EndDate = t
		case "minSignals":
			p.Filter.MinSignals = vr.intPtr(a.Value)
		case "maxSignals":
			p.Filter.MaxSignals = vr.intPtr(a.Value)
		case "cardType":
			if s, ok := vr.stringValue(a.Value); ok {
				p.Filter.CardType = domain.CardType(s)
			}
		case "folderId":
			if id, ok := vr.int64Value(a.Value); ok {
				p.Filter.FolderID = &id
			}
		case "sortBy":
			if s, ok := vr.stringValue(a.Value); ok {
				p.SortBy = domain.SortBy(s)
			}
		case "sortOrder":
			if s, ok := vr.stringValue(a.Value); ok {
				p.SortOrder = domain.SortOrder(s)
			}
		case "page":
			p.Pagination.Page, _ = vr.intValue(a.Value)
		case "pageSize", "first":
			p.Pagination.PageSize, _ = vr.intValue(a.Value)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// AST value resolution
// ---------------------------------------------------------------------------

// valueResolver resolves AST argument values, following variable
// references into the request's variables map.
type valueResolver struct {
	variables map[string]any
}

func (vr valueResolver) resolve(v *ast.Value) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch v.Kind {
	case ast.Variable:
		val, ok := vr.variables[v.Raw]
		return val, ok
	case ast.NullValue:
		return nil, false
	case ast.ListValue:
		items := make([]any, 0, len(v.Children))
		for _, child := range v.Children {
			if item, ok := vr.resolve(child.Value); ok {
				items = append(items, item)
			}
		}
		return items, true
	default:
		return v.Raw, true
	}
}

func (vr valueResolver) stringValue(v *ast.Value) (string, bool) {
	raw, ok := vr.resolve(v)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func (vr valueResolver) intValue(v *ast.Value) (int, bool) {
	id, ok := vr.int64Value(v)
	return int(id), ok
}

func (vr valueResolver) int64Value(v *ast.Value) (int64, bool) {
	raw, ok := vr.resolve(v)
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	case float64: // JSON numbers decode as float64
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func (vr valueResolver) boolValue(v *ast.Value) (bool, bool) {
	raw, ok := vr.resolve(v)
	if !ok {
		return false, false
	}
	switch b := raw.(type) {
	case bool:
		return b, true
	case string:
		return b == "true", true
	}
	return false, false
}

func (vr valueResolver) boolPtr(v *ast.Value) *bool {
	if b, ok := vr.boolValue(v); ok {
		return &b
	}
	return nil
}

func (vr valueResolver) intPtr(v *ast.Value) *int {
	if n, ok := vr.intValue(v); ok {
		return &n
	}
	return nil
}

func (vr valueResolver) timeValue(v *ast.Value) (*time.Time, error) {
	s, ok := vr.stringValue(v)
	if !ok || s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Date-only values are accepted for filter boundaries.
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (vr valueResolver) stringListValue(v *ast.Value) ([]string, bool) {
	raw, ok := vr.resolve(v)
	if !ok {
		return nil, false
	}
	switch items := raw.(type) {
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		return []string{items}, true
	}
	return nil, false
}

func (vr valueResolver) int64ListValue(v *ast.Value) ([]int64, bool) {
	raw, ok := vr.resolve(v)
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		if id, ok := vr.int64FromAny(raw); ok {
			return []int64{id}, true
		}
		return nil, false
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if id, ok := vr.int64FromAny(item); ok {
			out = append(out, id)
		}
	}
	return out, true
}

func (vr valueResolver) int64FromAny(raw any) (int64, bool) {
	switch n := raw.(type) {
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Package signature produces deterministic cache keys for queries.
// Two logically identical queries must map to byte-identical
// signatures regardless of input ordering, and no signature may be
// shared across users with different private-participant visibility.
package signature

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// version is bumped whenever the encoding changes, so stale entries
// from older deployments can never be read back.
const version = "v4"

// Signature is an opaque, deterministic cache key for one query.
type Signature string

// Request bundles everything that identifies a query result.
type Request struct {
	Tree       domain.SelectionTree
	Filter     domain.CardFilter
	Pagination domain.Pagination
	SortBy     domain.SortBy
	SortOrder  domain.SortOrder
	Privacy    domain.PrivacyContext
	// CardID is set for single-card queries; nil for list queries.
	CardID *int64
}

// Personalized reports whether the request's results depend on the
// requesting user. Personalized requests embed the privacy context in
// their signature; only provably user-independent requests may share a
// context-free key.
func (r Request) Personalized() bool {
	if r.Tree.Root.Kind == domain.FieldUserFeed {
		return true
	}
	// The store applies user scope (deleted-card exclusion, saved
	// folders, notes) to list queries, so even a scalar-only listing is
	// user-dependent once an identity is present. Single-card fetches
	// bypass the filter and stay shareable.
	if r.CardID == nil && r.Filter.UserScoped(r.Privacy.UserID) {
		return true
	}
	if r.Filter.Personalized() {
		return true
	}
	// Any relation field may surface private participants, so the
	// visible-private set is part of the result's identity.
	return r.Tree.Has(domain.FieldSignals) ||
		r.Tree.Has(domain.FieldParticipant) ||
		r.Tree.Has(domain.FieldAssociatedParticipant) ||
		r.Tree.Has(domain.FieldParticipants) ||
		r.Tree.Has(domain.FieldUserData) ||
		r.Tree.Has(domain.FieldNotes)
}

// Build computes the signature for a request. The canonical encoding
// sorts every set-valued filter and the visible-private set, so the
// signature is independent of argument ordering.
func Build(r Request) Signature {
	var b strings.Builder
	b.Grow(512)

	b.WriteString(version)
	writeField(&b, "op", r.Tree.Operation)
	writeField(&b, "shape", shapeFingerprint(r.Tree))
	writeField(&b, "sort", string(r.SortBy)+"/"+string(r.SortOrder))
	writeField(&b, "page", strconv.Itoa(r.Pagination.Page)+"x"+strconv.Itoa(r.Pagination.PageSize))

	if r.CardID != nil {
		writeField(&b, "card", strconv.FormatInt(*r.CardID, 10))
	}

	encodeFilter(&b, r.Filter)

	if r.Personalized() {
		writeField(&b, "user", strconv.FormatInt(r.Privacy.UserID, 10))
		writeField(&b, "visible", joinInt64(r.Privacy.CanonicalVisibleSet()))
	}

	sum := xxhash.Sum64String(b.String())
	return Signature(fmt.Sprintf("query:%s:%016x", version, sum))
}

func encodeFilter(b *strings.Builder, f domain.CardFilter) {
	writeField(b, "type", string(f.CardType))
	writeOpt(b, "search", f.Search)
	writeField(b, "cats", joinSorted(f.Categories))
	writeField(b, "parts", joinInt64Sorted(f.Participants))
	writeField(b, "stages", joinSorted(f.Stages))
	writeField(b, "rounds", joinSorted(f.RoundStatuses))
	writeOptBool(b, "featured", f.Featured)
	writeOptBool(b, "open", f.IsOpen)
	writeOptBool(b, "trending", f.Trending)
	writeOptTime(b, "from", f.StartDate)
	writeOptTime(b, "to", f.EndDate)
	writeOptInt(b, "minsig", f.MinSignals)
	writeOptInt(b, "maxsig", f.MaxSignals)
	if f.FolderID != nil {
		writeField(b, "folder", strconv.FormatInt(*f.FolderID, 10))
	}
}

// shapeFingerprint encodes the selection tree structure: field kinds,
// cost-affecting arguments and nesting, in declaration order.
func shapeFingerprint(tree domain.SelectionTree) string {
	var b strings.Builder
	var walk func(sel domain.Selection)
	walk = func(sel domain.Selection) {
		b.WriteString(strconv.Itoa(int(sel.Kind)))
		if sel.Args != (domain.SelectionArgs{}) {
			fmt.Fprintf(&b, "(%d,%d,%t,%t,%t,%t)",
				sel.Args.First, sel.Args.PageSize,
				sel.Args.IncludeSignals, sel.Args.IncludeRecentCounts,
				sel.Args.IncludeUserData, sel.Args.Search)
		}
		if len(sel.Children) > 0 {
			b.WriteByte('{')
			for i, child := range sel.Children {
				if i > 0 {
					b.WriteByte(',')
				}
				walk(child)
			}
			b.WriteByte('}')
		}
	}
	walk(tree.Root)
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
}

func writeOpt(b *strings.Builder, name string, v *string) {
	if v != nil {
		writeField(b, name, *v)
	}
}

func writeOptBool(b *strings.Builder, name string, v *bool) {
	if v != nil {
		writeField(b, name, strconv.FormatBool(*v))
	}
}

func writeOptInt(b *strings.Builder, name string, v *int) {
	if v != nil {
		writeField(b, name, strconv.Itoa(*v))
	}
}

func writeOptTime(b *strings.Builder, name string, v *time.Time) {
	if v != nil {
		writeField(b, name, v.UTC().Format(time.RFC3339))
	}
}

func joinSorted(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, ",")
}

func joinInt64Sorted(values []int64) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return joinInt64(sorted)
}

func joinInt64(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

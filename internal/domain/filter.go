package domain

import "time"

// SortBy determines the sort column for card listings.
type SortBy string

const (
	SortByLatestSignalDate SortBy = "latest_signal_date"
	SortBySignalsCount     SortBy = "signals_count"
	SortByCreatedAt        SortBy = "created_at"
	SortByName             SortBy = "name"
	SortByTrending         SortBy = "trending"
)

// SortOrder is ASC or DESC.
type SortOrder string

const (
	SortASC  SortOrder = "ASC"
	SortDESC SortOrder = "DESC"
)

// CardType selects which slice of a user's cards a query targets.
type CardType string

const (
	CardTypeAll            CardType = "ALL"
	CardTypeSaved          CardType = "SAVED"
	CardTypeNotes          CardType = "NOTES"
	CardTypeDeleted        CardType = "DELETED"
	CardTypeWorthFollowing CardType = "WORTH_FOLLOWING"
)

// CardFilter contains filtering parameters for card queries.
// Slice fields are treated as sets: ordering does not affect the
// query signature.
type CardFilter struct {
	Search        *string
	Categories    []string
	Participants  []int64
	Stages        []string
	RoundStatuses []string
	Featured      *bool
	IsOpen        *bool
	Trending      *bool
	StartDate     *time.Time
	EndDate       *time.Time
	MinSignals    *int
	MaxSignals    *int
	CardType      CardType
	FolderID      *int64
}

// Pagination is a page window. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize applies defaults and clamps values.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// Offset returns the row offset of the window.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Validate checks filter arguments and reports the offending field.
func (f *CardFilter) Validate() error {
	if f.MinSignals != nil && *f.MinSignals < 0 {
		return NewValidationError("minSignals", "must be non-negative")
	}
	if f.MaxSignals != nil && f.MinSignals != nil && *f.MaxSignals < *f.MinSignals {
		return NewValidationError("maxSignals", "must be >= minSignals")
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return NewValidationError("endDate", "must not precede startDate")
	}
	switch f.CardType {
	case "", CardTypeAll, CardTypeSaved, CardTypeNotes, CardTypeDeleted, CardTypeWorthFollowing:
	default:
		return NewValidationError("cardType", "unknown card type")
	}
	return nil
}

// Personalized reports whether the filter depends on user-specific
// state (saved folders, notes, deletions). Personalized queries must
// never share cache entries across users.
func (f *CardFilter) Personalized() bool {
	switch f.CardType {
	case CardTypeSaved, CardTypeNotes, CardTypeDeleted:
		return true
	}
	return f.FolderID != nil
}

// UserScoped reports whether a card listing for this filter reads
// user-specific state when executed for the given user. Beyond the
// explicitly personalized card types, the default ALL listing excludes
// the requester's deleted cards, so it is user-scoped for any
// authenticated user even though the filter itself carries no
// user-specific fields.
func (f *CardFilter) UserScoped(userID int64) bool {
	if f.Personalized() {
		return true
	}
	switch f.CardType {
	case "", CardTypeAll:
		return userID != 0
	}
	return false
}

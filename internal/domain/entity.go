// Package domain contains the core entities of the signal-tracking
// platform and the value types shared across all layers: filters,
// selection trees, privacy contexts and error taxonomy.
package domain

import "time"

// EntityType identifies a persisted entity class. Used as the unit of
// cache invalidation and batch-load keying.
type EntityType string

const (
	EntityCard        EntityType = "card"
	EntityParticipant EntityType = "participant"
	EntityCategory    EntityType = "category"
	EntitySignal      EntityType = "signal"
	EntityNote        EntityType = "note"
	EntityFolder      EntityType = "folder"
	EntitySavedFilter EntityType = "saved_filter"
)

// Card is a tracked project/startup ("signal card").
type Card struct {
	ID               int64
	Slug             string
	Name             string
	Description      string
	Stage            string
	RoundStatus      string
	IsOpen           bool
	Featured         bool
	SignalsCount     int
	LatestSignalDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Relations populated by the executor according to the prefetch
	// plan. Nil slices mean "not requested", not "empty".
	Categories  []Category
	Signals     []Signal
	TeamMembers []TeamMember
	Notes       []Note
}

// Participant is an investor, fund or individual tracked by the
// platform. Private participants are visible only to users that have
// them in their privacy context.
type Participant struct {
	ID                  int64
	Slug                string
	Name                string
	AdditionalName      string
	Type                string
	Private             bool
	MonthlySignalsCount int
	AssociatedWithID    *int64
}

// Category groups cards; categories form a two-level hierarchy.
type Category struct {
	ID       int64
	Slug     string
	Name     string
	ParentID *int64
}

// Signal is a recorded expression of interest by a participant toward
// a card.
type Signal struct {
	ID                      int64
	CardID                  int64
	ParticipantID           *int64
	AssociatedParticipantID *int64
	Type                    string
	SourceURL               string
	CreatedAt               time.Time

	// ParticipantPrivate and AssociatedPrivate mirror the private flag
	// of the referenced participants. The store sets them on every
	// fetched signal so privacy can be enforced even when the
	// participant rows themselves were not requested.
	ParticipantPrivate bool
	AssociatedPrivate  bool

	// Resolved relations (batch-loaded).
	Participant           *Participant
	AssociatedParticipant *Participant
}

// TeamMember is a person listed on a card.
type TeamMember struct {
	ID     int64
	CardID int64
	Name   string
	Role   string
	URL    string
}

// Note is a user's private note attached to a card.
type Note struct {
	ID        int64
	UserID    int64
	CardID    int64
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Folder is a user's named collection of cards.
type Folder struct {
	ID        int64
	UserID    int64
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// SavedFilter is a user's persisted filter preset.
type SavedFilter struct {
	ID        int64
	UserID    int64
	Name      string
	IsDefault bool
	Filter    CardFilter
	CreatedAt time.Time
	UpdatedAt time.Time
}

package graphql

import (
	"time"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// Wire views of domain entities. Relation slices use omitempty so a
// relation that was never requested (nil in the domain entity) is
// absent from the response rather than rendered as an empty list.

type cardView struct {
	ID               int64              `json:"id"`
	Slug             string             `json:"slug"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Stage            string             `json:"stage,omitempty"`
	RoundStatus      string             `json:"roundStatus,omitempty"`
	IsOpen           bool               `json:"isOpen"`
	Featured         bool               `json:"featured"`
	SignalsCount     int                `json:"signalsCount"`
	LatestSignalDate *time.Time         `json:"latestSignalDate,omitempty"`
	Categories       []categoryView     `json:"categories,omitempty"`
	Signals          []signalView       `json:"signals,omitempty"`
	TeamMembers      []teamMemberView   `json:"teamMembers,omitempty"`
	Notes            []noteView         `json:"notes,omitempty"`
}

type signalView struct {
	ID                    int64            `json:"id"`
	Type                  string           `json:"type"`
	SourceURL             string           `json:"sourceUrl,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
	Participant           *participantView `json:"participant,omitempty"`
	AssociatedParticipant *participantView `json:"associatedParticipant,omitempty"`
}

type participantView struct {
	ID                  int64  `json:"id"`
	Slug                string `json:"slug"`
	Name                string `json:"name"`
	AdditionalName      string `json:"additionalName,omitempty"`
	Type                string `json:"type"`
	Private             bool   `json:"private"`
	MonthlySignalsCount int    `json:"monthlySignalsCount"`
}

type categoryView struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type teamMemberView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	URL  string `json:"url,omitempty"`
}

type noteView struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"cardId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type folderView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

type connectionView struct {
	Nodes       []cardView `json:"nodes"`
	TotalCount  int        `json:"totalCount"`
	HasNextPage bool       `json:"hasNextPage"`
}

type diagnosticsView struct {
	Complexity int    `json:"complexity"`
	Depth      int    `json:"depth"`
	Tier       string `json:"tier"`
	CacheHit   bool   `json:"cacheHit"`
	DBQueries  int    `json:"dbQueries"`
	DurationMS int64  `json:"durationMs"`
}

func toConnectionView(conn domain.CardConnection) connectionView {
	nodes := make([]cardView, len(conn.Nodes))
	for i, c := range conn.Nodes {
		nodes[i] = toCardView(c)
	}
	return connectionView{
		Nodes:       nodes,
		TotalCount:  conn.TotalCount,
		HasNextPage: conn.HasNextPage,
	}
}

func toCardView(c domain.Card) cardView {
	v := cardView{
		ID:               c.ID,
		Slug:             c.Slug,
		Name:             c.Name,
		Description:      c.Description,
		Stage:            c.Stage,
		RoundStatus:      c.RoundStatus,
		IsOpen:           c.IsOpen,
		Featured:         c.Featured,
		SignalsCount:     c.SignalsCount,
		LatestSignalDate: c.LatestSignalDate,
	}
	if c.Categories != nil {
		v.Categories = make([]categoryView, len(c.Categories))
		for i, cat := range c.Categories {
			v.Categories[i] = categoryView{ID: cat.ID, Slug: cat.Slug, Name: cat.Name}
		}
	}
	if c.Signals != nil {
		v.Signals = make([]signalView, len(c.Signals))
		for i, s := range c.Signals {
			v.Signals[i] = toSignalView(s)
		}
	}
	if c.TeamMembers != nil {
		v.TeamMembers = make([]teamMemberView, len(c.TeamMembers))
		for i, tm := range c.TeamMembers {
			v.TeamMembers[i] = teamMemberView{ID: tm.ID, Name: tm.Name, Role: tm.Role, URL: tm.URL}
		}
	}
	if c.Notes != nil {
		v.Notes = make([]noteView, len(c.Notes))
		for i, n := range c.Notes {
			v.Notes[i] = toNoteView(n)
		}
	}
	return v
}

func toSignalView(s domain.Signal) signalView {
	return signalView{
		ID:                    s.ID,
		Type:                  s.Type,
		SourceURL:             s.SourceURL,
		CreatedAt:             s.CreatedAt,
		Participant:           toParticipantView(s.Participant),
		AssociatedParticipant: toParticipantView(s.AssociatedParticipant),
	}
}

func toParticipantView(p *domain.Participant) *participantView {
	if p == nil {
		return nil
	}
	return &participantView{
		ID:                  p.ID,
		Slug:                p.Slug,
		Name:                p.Name,
		AdditionalName:      p.AdditionalName,
		Type:                p.Type,
		Private:             p.Private,
		MonthlySignalsCount: p.MonthlySignalsCount,
	}
}

func toNoteView(n domain.Note) noteView {
	return noteView{
		ID:        n.ID,
		CardID:    n.CardID,
		Text:      n.Text,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toDiagnosticsView(d domain.Diagnostics) diagnosticsView {
	return diagnosticsView{
		Complexity: d.Complexity,
		Depth:      d.Depth,
		Tier:       string(d.Tier),
		CacheHit:   d.CacheHit,
		DBQueries:  d.DBQueries,
		DurationMS: d.Duration.Milliseconds(),
	}
}

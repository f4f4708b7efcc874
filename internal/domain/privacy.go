package domain

import (
	"slices"
)

// PrivacyContext determines which private participants a requester may
// see. The zero value is the anonymous context: no private data is
// visible. The same context must be applied whether data comes from
// cache or from a fresh fetch.
type PrivacyContext struct {
	// UserID is the requesting user, 0 for anonymous.
	UserID int64
	// VisiblePrivateParticipants lists the private participant ids the
	// user is permitted to see (the participants they follow).
	VisiblePrivateParticipants []int64
}

// Anonymous reports whether the context carries no identity.
func (pc PrivacyContext) Anonymous() bool { return pc.UserID == 0 }

// CanSee reports whether the participant is visible in this context.
// Public participants are always visible.
func (pc PrivacyContext) CanSee(p *Participant) bool {
	if p == nil || !p.Private {
		return true
	}
	return slices.Contains(pc.VisiblePrivateParticipants, p.ID)
}

// CanSeeRef reports whether a participant reference with the given
// private flag is visible. Used where only the id and flag were
// fetched, not the participant row itself.
func (pc PrivacyContext) CanSeeRef(id *int64, private bool) bool {
	if id == nil || !private {
		return true
	}
	return slices.Contains(pc.VisiblePrivateParticipants, *id)
}

// CanonicalVisibleSet returns the visible-private set sorted and
// deduplicated. Two contexts with the same visibility produce equal
// canonical sets regardless of input ordering, which is required for
// cache-key determinism.
func (pc PrivacyContext) CanonicalVisibleSet() []int64 {
	if len(pc.VisiblePrivateParticipants) == 0 {
		return nil
	}
	set := slices.Clone(pc.VisiblePrivateParticipants)
	slices.Sort(set)
	return slices.Compact(set)
}

package executor

import "github.com/mirrosha26/CoreBackend/internal/domain"

// applyPrivacy strips private participants the requester may not see
// from the assembled payload, in place. This runs on every fetch path
// before the payload is returned or cached, so a cached entry is
// always pre-filtered for the privacy context baked into its
// signature.
func applyPrivacy(nodes []domain.Card, privacy domain.PrivacyContext) {
	for i := range nodes {
		filterSignals(&nodes[i], privacy)
	}
}

// filterSignals drops a signal entirely when its participant is
// hidden: a signal without its source is not meaningful, and keeping
// it with a redacted participant would leak the participant's
// existence through counts. The check uses the private flags carried
// on the signal row itself, so it holds even when the query never
// selected participants and none were batch-loaded.
func filterSignals(c *domain.Card, privacy domain.PrivacyContext) {
	if c.Signals == nil {
		return
	}

	kept := c.Signals[:0]
	for _, s := range c.Signals {
		if !privacy.CanSeeRef(s.ParticipantID, s.ParticipantPrivate) || !privacy.CanSee(s.Participant) {
			continue
		}
		hideAssoc := !privacy.CanSeeRef(s.AssociatedParticipantID, s.AssociatedPrivate) ||
			(s.AssociatedParticipant != nil && !privacy.CanSee(s.AssociatedParticipant))
		if hideAssoc {
			s.AssociatedParticipant = nil
			s.AssociatedParticipantID = nil
		}
		kept = append(kept, s)
	}
	c.Signals = kept
}

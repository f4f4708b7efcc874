package cache

import "github.com/mirrosha26/CoreBackend/internal/domain"

// Complexity-score thresholds for tier selection.
const (
	moderateThreshold      = 5
	heavyThreshold         = 10
	comprehensiveThreshold = 20
)

// TierFor assigns a cache tier from a query's complexity score and
// personalization. Scores at or below the moderate threshold are never
// cached. Personalized queries in the moderate band are demoted to
// lightweight: per-user entries for cheap queries churn the cache
// without saving meaningful work. Trending queries cap at moderate
// because their ordering decays too fast for the longer tiers.
func TierFor(score int, personalized, trending bool) domain.CacheTier {
	var tier domain.CacheTier
	switch {
	case score > comprehensiveThreshold:
		tier = domain.TierComprehensive
	case score > heavyThreshold:
		tier = domain.TierHeavy
	case score > moderateThreshold:
		tier = domain.TierModerate
	default:
		return domain.TierLightweight
	}

	if personalized && tier == domain.TierModerate {
		return domain.TierLightweight
	}
	if trending && tier != domain.TierLightweight {
		return domain.TierModerate
	}
	return tier
}

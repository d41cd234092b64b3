package planner

import (
	"time"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// Assemble merges the repaired plan, the resolved travel estimate, and the
// normalized venue shortlist into the payload handed to persistence. It is
// a pure merge: no network, no fallbacks. Source provenance on the travel
// estimate and the resolved locations passes through untouched so callers
// can render "estimated" badges without re-deriving them.
func Assemble(
	destination types.ResolvedLocation,
	origin *types.ResolvedLocation,
	travel *types.TravelEstimate,
	plan *types.StructuredItineraryPlan,
	lodging []types.NormalizedVenue,
	activities []types.NormalizedVenue,
	daysRequested int,
) types.ItineraryPayload {
	degraded := plan == nil
	if plan != nil && daysRequested > 0 && len(plan.Days) < daysRequested {
		// Partial recovery: fewer days than requested is surfaced, never
		// silently truncated.
		degraded = true
	}
	return types.ItineraryPayload{
		Destination:   destination,
		Origin:        origin,
		Travel:        travel,
		Plan:          plan,
		Lodging:       lodging,
		Activities:    activities,
		DaysRequested: daysRequested,
		Degraded:      degraded,
		GeneratedAt:   time.Now().UTC(),
	}
}

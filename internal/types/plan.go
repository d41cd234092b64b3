package types

import "time"

// PlanSummary is the headline block of a generated itinerary.
type PlanSummary struct {
	Title           string   `json:"title"`
	Tagline         string   `json:"tagline,omitempty"`
	DailyHighlights []string `json:"daily_highlights,omitempty"`
}

// PlanSegment is a single scheduled stop inside a day.
type PlanSegment struct {
	Time          string  `json:"time,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Address       string  `json:"address,omitempty"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
	Category      string  `json:"category,omitempty"`
	EstimatedCost string  `json:"estimated_cost,omitempty"`
	Tips          string  `json:"tips,omitempty"`
}

// PlanDay is one day of the generated itinerary.
type PlanDay struct {
	Day      int           `json:"day"`
	Date     string        `json:"date,omitempty"`
	Theme    string        `json:"theme,omitempty"`
	Meals    []PlanSegment `json:"meals,omitempty"`
	Segments []PlanSegment `json:"segments"`
}

// StructuredItineraryPlan is the schema the model is constrained to return.
// A shorter-than-requested Days slice is a degraded result, surfaced via
// ItineraryPayload.Degraded rather than silently truncated.
type StructuredItineraryPlan struct {
	Summary PlanSummary `json:"summary"`
	Days    []PlanDay   `json:"days"`
}

// PlanRequest is the inbound planning request from the HTTP layer.
type PlanRequest struct {
	Destination         string   `json:"destination"`
	Origin              string   `json:"origin,omitempty"`
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
	DurationDays        int      `json:"duration_days,omitempty"`
	Interests           []string `json:"interests,omitempty"`
	Budget              *float64 `json:"budget,omitempty"`
	BudgetMin           *float64 `json:"budget_min,omitempty"`
	BudgetMax           *float64 `json:"budget_max,omitempty"`
	GroupSize           int      `json:"group_size,omitempty"`
	TravelStyles        []string `json:"travel_styles,omitempty"`
	AccommodationStyle  string   `json:"accommodation_style,omitempty"`
	SelectedExperiences []string `json:"selected_experiences,omitempty"`
	SelectedStays       []string `json:"selected_stays,omitempty"`
}

// ItineraryPayload is the composed object handed to the persistence
// collaborator. Provenance tags on Travel and the venues are preserved so a
// caller can render "estimated" badges without re-deriving them.
type ItineraryPayload struct {
	Destination   ResolvedLocation         `json:"destination"`
	Origin        *ResolvedLocation        `json:"origin,omitempty"`
	Travel        *TravelEstimate          `json:"travel,omitempty"`
	Plan          *StructuredItineraryPlan `json:"plan"`
	Lodging       []NormalizedVenue        `json:"lodging,omitempty"`
	Activities    []NormalizedVenue        `json:"activities,omitempty"`
	DaysRequested int                      `json:"days_requested"`
	Degraded      bool                     `json:"degraded"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// PlanResponse is the HTTP response for a planning request. Plan stays nil
// with OK true when structured-output recovery was exhausted, which callers
// must distinguish from a transport error.
type PlanResponse struct {
	OK        bool                     `json:"ok"`
	Plan      *StructuredItineraryPlan `json:"plan"`
	Itinerary *ItineraryPayload        `json:"itinerary,omitempty"`
	Raw       string                   `json:"raw,omitempty"`
}

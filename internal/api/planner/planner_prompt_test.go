package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

func TestBuildItineraryPromptDeterministic(t *testing.T) {
	budget := 2400.0
	req := types.PlanRequest{
		Destination:         "Penang",
		Origin:              "Kuala Lumpur",
		StartDate:           "2026-03-06",
		EndDate:             "2026-03-08",
		Interests:           []string{"street food", "heritage"},
		Budget:              &budget,
		GroupSize:           2,
		TravelStyles:        []string{"relaxed"},
		AccommodationStyle:  "boutique hotel",
		SelectedExperiences: []string{"Clan jetties at sunset"},
		SelectedStays:       []string{"Seven Terraces"},
	}

	first := BuildItineraryPrompt(req, 1500)
	second := BuildItineraryPrompt(req, 1500)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "Plan a 3-day trip to Penang departing from Kuala Lumpur.")
	assert.Contains(t, first, "Travel dates: 2026-03-06 to 2026-03-08.")
	assert.Contains(t, first, "Group size: 2 travellers.")
	assert.Contains(t, first, "Total budget: around RM 2400.")
	assert.Contains(t, first, "Traveller interests: street food, heritage.")
	assert.Contains(t, first, "  - Clan jetties at sunset")
	assert.Contains(t, first, "  - Seven Terraces")
	assert.Contains(t, first, "calling the create_itinerary function exactly once")
}

func TestBuildItineraryPromptDefaultBudget(t *testing.T) {
	req := types.PlanRequest{Destination: "Langkawi", DurationDays: 2}

	prompt := BuildItineraryPrompt(req, 1500)

	assert.Contains(t, prompt, "Total budget: around RM 1500.")
	assert.NotContains(t, prompt, "Travel dates:")
	assert.NotContains(t, prompt, "Group size:")
}

func TestBuildItineraryPromptBudgetRange(t *testing.T) {
	lo, hi := 800.0, 2000.0
	req := types.PlanRequest{Destination: "Melaka", DurationDays: 2, BudgetMin: &lo, BudgetMax: &hi}

	prompt := BuildItineraryPrompt(req, 1500)

	assert.Contains(t, prompt, "Total budget: RM 800 to RM 2000.")
}

func TestTripDurationDays(t *testing.T) {
	tests := []struct {
		name string
		req  types.PlanRequest
		want int
	}{
		{"explicit duration wins", types.PlanRequest{DurationDays: 5, StartDate: "2026-03-06", EndDate: "2026-03-07"}, 5},
		{"inclusive date span", types.PlanRequest{StartDate: "2026-03-06", EndDate: "2026-03-08"}, 3},
		{"single date", types.PlanRequest{StartDate: "2026-03-06", EndDate: "2026-03-06"}, 1},
		{"reversed dates", types.PlanRequest{StartDate: "2026-03-08", EndDate: "2026-03-06"}, 1},
		{"unparseable dates", types.PlanRequest{StartDate: "next week", EndDate: "later"}, 1},
		{"nothing at all", types.PlanRequest{}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TripDurationDays(tc.req))
		})
	}
}

func TestItineraryToolConfig(t *testing.T) {
	cfg := ItineraryToolConfig(0.4)

	if assert.NotNil(t, cfg.ToolConfig) && assert.NotNil(t, cfg.ToolConfig.FunctionCallingConfig) {
		assert.Equal(t, genai.FunctionCallingConfigModeAny, cfg.ToolConfig.FunctionCallingConfig.Mode)
		assert.Equal(t, []string{CreateItineraryFunction}, cfg.ToolConfig.FunctionCallingConfig.AllowedFunctionNames)
	}
	if assert.Len(t, cfg.Tools, 1) && assert.Len(t, cfg.Tools[0].FunctionDeclarations, 1) {
		decl := cfg.Tools[0].FunctionDeclarations[0]
		assert.Equal(t, CreateItineraryFunction, decl.Name)
		assert.Contains(t, decl.Parameters.Properties, "summary")
		assert.Contains(t, decl.Parameters.Properties, "days")
	}
}

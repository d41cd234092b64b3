package planner

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// CreateItineraryFunction is the single structured call the model is
// constrained to make.
const CreateItineraryFunction = "create_itinerary"

// DefaultBudget is assumed when a request specifies no budget at all.
const DefaultBudget = 1500

// BuildItineraryPrompt renders the trip constraints into a deterministic
// instruction string: identical input always yields an identical prompt.
// Reproducible prompts are what make model-drift debugging possible.
func BuildItineraryPrompt(req types.PlanRequest, defaultBudget float64) string {
	if defaultBudget <= 0 {
		defaultBudget = DefaultBudget
	}
	days := TripDurationDays(req)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Plan a %d-day trip to %s", days, req.Destination))
	if req.Origin != "" {
		b.WriteString(fmt.Sprintf(" departing from %s", req.Origin))
	}
	b.WriteString(".\n")
	if req.StartDate != "" && req.EndDate != "" {
		b.WriteString(fmt.Sprintf("Travel dates: %s to %s.\n", req.StartDate, req.EndDate))
	}
	if req.GroupSize > 0 {
		b.WriteString(fmt.Sprintf("Group size: %d travellers.\n", req.GroupSize))
	}
	b.WriteString(budgetLine(req, defaultBudget))
	if len(req.Interests) > 0 {
		b.WriteString(fmt.Sprintf("Traveller interests: %s.\n", strings.Join(req.Interests, ", ")))
	}
	if len(req.TravelStyles) > 0 {
		b.WriteString(fmt.Sprintf("Travel style: %s.\n", strings.Join(req.TravelStyles, ", ")))
	}
	if req.AccommodationStyle != "" {
		b.WriteString(fmt.Sprintf("Preferred accommodation: %s.\n", req.AccommodationStyle))
	}
	if len(req.SelectedExperiences) > 0 {
		b.WriteString("The traveller has already picked these experiences; schedule them with priority:\n")
		for _, exp := range req.SelectedExperiences {
			b.WriteString(fmt.Sprintf("  - %s\n", exp))
		}
	}
	if len(req.SelectedStays) > 0 {
		b.WriteString("The traveller has shortlisted these stays; prefer them when assigning lodging:\n")
		for _, stay := range req.SelectedStays {
			b.WriteString(fmt.Sprintf("  - %s\n", stay))
		}
	}
	b.WriteString("\nEach day needs a theme, meal suggestions, and timed segments with an address, ")
	b.WriteString("coordinates, an estimated cost in MYR, and a practical tip where useful.\n")
	b.WriteString(fmt.Sprintf(
		"Respond by calling the %s function exactly once with the complete itinerary. "+
			"Do not reply with free-form prose.", CreateItineraryFunction))
	return b.String()
}

func budgetLine(req types.PlanRequest, defaultBudget float64) string {
	switch {
	case req.BudgetMin != nil && req.BudgetMax != nil:
		return fmt.Sprintf("Total budget: RM %.0f to RM %.0f.\n", *req.BudgetMin, *req.BudgetMax)
	case req.Budget != nil:
		return fmt.Sprintf("Total budget: around RM %.0f.\n", *req.Budget)
	default:
		return fmt.Sprintf("Total budget: around RM %.0f.\n", defaultBudget)
	}
}

// TripDurationDays derives the trip length: an explicit duration wins, then
// the inclusive date span, then a single day.
func TripDurationDays(req types.PlanRequest) int {
	if req.DurationDays > 0 {
		return req.DurationDays
	}
	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 == nil && err2 == nil && !end.Before(start) {
		return int(end.Sub(start).Hours()/24) + 1
	}
	return 1
}

// ItineraryToolConfig declares the create_itinerary function schema and
// forces the model into single-function-call mode.
func ItineraryToolConfig(temperature float32) *genai.GenerateContentConfig {
	segmentSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"time":           {Type: genai.TypeString},
			"title":          {Type: genai.TypeString},
			"description":    {Type: genai.TypeString},
			"address":        {Type: genai.TypeString},
			"lat":            {Type: genai.TypeNumber},
			"lng":            {Type: genai.TypeNumber},
			"category":       {Type: genai.TypeString},
			"estimated_cost": {Type: genai.TypeString},
			"tips":           {Type: genai.TypeString},
		},
		Required: []string{"title"},
	}

	planFunc := &genai.FunctionDeclaration{
		Name:        CreateItineraryFunction,
		Description: "Record the complete multi-day travel itinerary.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":            {Type: genai.TypeString},
						"tagline":          {Type: genai.TypeString},
						"daily_highlights": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					},
					Required: []string{"title"},
				},
				"days": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"day":      {Type: genai.TypeInteger},
							"date":     {Type: genai.TypeString},
							"theme":    {Type: genai.TypeString},
							"meals":    {Type: genai.TypeArray, Items: segmentSchema},
							"segments": {Type: genai.TypeArray, Items: segmentSchema},
						},
						Required: []string{"day", "segments"},
					},
				},
			},
			Required: []string{"summary", "days"},
		},
	}

	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](temperature),
		Tools:       []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{planFunc}}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{CreateItineraryFunction},
			},
		},
	}
}

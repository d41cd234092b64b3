package planner

import (
	"encoding/json"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// maxRepairIterations bounds the progressive-truncation loop so arbitrary
// model output cannot make recovery spin forever.
const maxRepairIterations = 4000

const finishReasonMalformedCall = "MALFORMED_FUNCTION_CALL"

// Repairer recovers a structured itinerary plan from a model response.
// Models fail in predictable, distinct ways: a clean function call, a
// specific malformed-call diagnostic shape, or prose-wrapped JSON. The
// stages are tried in that order; nil means every stage was exhausted.
type Repairer struct {
	logger        *slog.Logger
	maxIterations int
}

func NewRepairer(maxIterations int, logger *slog.Logger) *Repairer {
	if maxIterations <= 0 {
		maxIterations = maxRepairIterations
	}
	return &Repairer{logger: logger, maxIterations: maxIterations}
}

// ExtractPlan never returns an error: a nil plan is the signal that no
// candidate part could be recovered.
func (r *Repairer) ExtractPlan(resp *genai.GenerateContentResponse) *types.StructuredItineraryPlan {
	if resp == nil {
		return nil
	}

	// Stage 1: the model answered through the structured call mechanism.
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.FunctionCall == nil {
				continue
			}
			if part.FunctionCall.Name != CreateItineraryFunction {
				continue
			}
			if plan := planFromArgs(part.FunctionCall.Args); plan != nil {
				return plan
			}
		}
	}

	// Stage 2: the model produced a malformed call and the diagnostic
	// carries the arguments in summary=..., days=... form.
	for _, candidate := range resp.Candidates {
		if candidate == nil || string(candidate.FinishReason) != finishReasonMalformedCall {
			continue
		}
		if plan := r.repairMalformedCall(candidate.FinishMessage); plan != nil {
			r.logger.Debug("Recovered plan from malformed function call diagnostic")
			return plan
		}
	}

	// Stage 3: lenient recovery from whatever text came back.
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			if plan := r.repairLooseJSON(part.Text); plan != nil {
				r.logger.Debug("Recovered plan from free-text response")
				return plan
			}
		}
	}

	return nil
}

func planFromArgs(args map[string]any) *types.StructuredItineraryPlan {
	if args == nil {
		return nil
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil
	}
	var plan types.StructuredItineraryPlan
	if err := json.Unmarshal(encoded, &plan); err != nil {
		return nil
	}
	if !planUsable(&plan) {
		return nil
	}
	return &plan
}

// repairMalformedCall splices the summary=<X>, days=<Y> argument dump from
// the model's failure diagnostic back into a synthetic JSON object, then
// runs it through the lenient parser since either half may be truncated.
func (r *Repairer) repairMalformedCall(message string) *types.StructuredItineraryPlan {
	sumIdx := strings.Index(message, "summary=")
	if sumIdx == -1 {
		return nil
	}
	rest := message[sumIdx+len("summary="):]

	daysIdx := strings.Index(rest, "days=")
	if daysIdx == -1 {
		return nil
	}
	summaryPart := strings.TrimSpace(rest[:daysIdx])
	summaryPart = strings.TrimRight(summaryPart, ", ")
	daysPart := strings.TrimSpace(rest[daysIdx+len("days="):])
	daysPart = strings.TrimRight(daysPart, ")")

	synthetic := `{"summary":` + summaryPart + `,"days":` + daysPart + `}`
	return r.repairLooseJSON(synthetic)
}

// repairLooseJSON strips code fences and newlines, then alternates bracket
// rebalancing with single-character truncation until a parse succeeds or
// the iteration cap is hit.
func (r *Repairer) repairLooseJSON(text string) *types.StructuredItineraryPlan {
	s := cleanModelText(text)
	for i := 0; i < r.maxIterations && len(s) > 0; i++ {
		candidate := closeBrackets(s)
		var plan types.StructuredItineraryPlan
		if err := json.Unmarshal([]byte(candidate), &plan); err == nil && planUsable(&plan) {
			return &plan
		}
		s = s[:len(s)-1]
	}
	return nil
}

func planUsable(plan *types.StructuredItineraryPlan) bool {
	return plan.Summary.Title != "" || len(plan.Days) > 0
}

// cleanModelText removes markdown fences and surrounding prose, slicing from
// the first JSON opener to the end. The tail is left ragged on purpose: the
// repair loop trims it better than a last-brace heuristic would.
func cleanModelText(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "\n", "")
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}
	return s[start:]
}

// closeBrackets appends the closing characters for any unmatched trailing
// '{' or '[' (and an unterminated string). It never removes characters.
func closeBrackets(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			stack = append(stack, c)
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

package models

// InferenceStrategy identifies which inference branch produced a field list.
type InferenceStrategy string

const (
	// StrategyHeuristic means the pattern-matching engine matched the text.
	StrategyHeuristic InferenceStrategy = "heuristic"
	// StrategyAI means the structured-extraction backend returned the fields.
	StrategyAI InferenceStrategy = "ai"
	// StrategyFallback means a deterministic fallback field set was used.
	StrategyFallback InferenceStrategy = "fallback"
)

// InferenceResult is the tagged output of the field inference engine.
// Callers branch on Strategy instead of inferring it from field contents.
// Warning is set when a fallback fired; it is advisory, never an error.
type InferenceResult struct {
	Strategy InferenceStrategy `json:"strategy"`
	Fields   []FormField       `json:"fields"`
	Warning  string            `json:"warning,omitempty"`
}

// UsedFallback reports whether the deterministic fallback branch fired.
func (r *InferenceResult) UsedFallback() bool {
	return r.Strategy == StrategyFallback
}

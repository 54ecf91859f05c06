// -----------------------------------------------------------------------
// Field Inference Engine - typed field lists from extracted document text
// Two interchangeable strategies: heuristic pattern matching and
// LLM-backed structured extraction with a deterministic fallback
// -----------------------------------------------------------------------

package inference

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
	"github.com/ternarybob/formforge/internal/services/llm"
)

const (
	warnHeuristicFallback = "no recognizable field labels found; using minimal fallback fields"
	warnAIFallback        = "automatic field extraction failed; using sample fields"
)

// Service implements interfaces.FieldInferencer
type Service struct {
	ai     *aiExtractor
	logger arbor.ILogger
}

var _ interfaces.FieldInferencer = (*Service)(nil)

// NewService creates a field inference service. The provider may be nil, in
// which case the AI strategy always resolves to the sample fallback.
func NewService(provider llm.Provider, retry *llm.RetryConfig, logger arbor.ILogger) *Service {
	return &Service{
		ai:     newAIExtractor(provider, retry, logger),
		logger: logger,
	}
}

// Infer runs exactly one strategy and returns a tagged result. Inference
// never hard-fails on backend errors: both strategies degrade to a
// deterministic fallback field set with an advisory warning.
func (s *Service) Infer(ctx context.Context, text string, strategy models.InferenceStrategy) (*models.InferenceResult, error) {
	switch strategy {
	case models.StrategyHeuristic:
		return s.inferWithHeuristics(text), nil
	case models.StrategyAI:
		return s.inferWithAI(ctx, text), nil
	default:
		return nil, fmt.Errorf("unknown inference strategy: %s", strategy)
	}
}

func (s *Service) inferWithHeuristics(text string) *models.InferenceResult {
	fields, matched := inferHeuristic(text)
	if !matched {
		s.logger.Debug().Msg("Heuristic inference found no field labels, using fallback fields")
		return &models.InferenceResult{
			Strategy: models.StrategyFallback,
			Fields:   fields,
			Warning:  warnHeuristicFallback,
		}
	}

	s.logger.Debug().Int("fields", len(fields)).Msg("Heuristic inference matched field labels")
	return &models.InferenceResult{
		Strategy: models.StrategyHeuristic,
		Fields:   fields,
	}
}

func (s *Service) inferWithAI(ctx context.Context, text string) *models.InferenceResult {
	fields, err := s.ai.extract(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("AI field extraction failed, using sample schema")
		return &models.InferenceResult{
			Strategy: models.StrategyFallback,
			Fields:   sampleSchema(),
			Warning:  warnAIFallback,
		}
	}

	s.logger.Debug().Int("fields", len(fields)).Msg("AI field extraction succeeded")
	return &models.InferenceResult{
		Strategy: models.StrategyAI,
		Fields:   fields,
	}
}

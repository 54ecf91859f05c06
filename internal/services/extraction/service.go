// -----------------------------------------------------------------------
// Text Extraction Engine - plain text from PDF or image documents
// PDF path reads the native text layer; image path delegates to OCR
// -----------------------------------------------------------------------

package extraction

import (
	"context"
	"errors"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
)

// ErrExtractionFailed is the single domain error surfaced by the engine.
// The underlying backend error is logged, not propagated, so callers see a
// uniform error surface.
var ErrExtractionFailed = errors.New("failed to extract text from the document")

// Service implements interfaces.TextExtractor
type Service struct {
	config  *common.OCRConfig
	logger  arbor.ILogger
	pdfText *pdfTextExtractor
}

var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new text extraction service
func NewService(config *common.OCRConfig, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		logger:  logger,
		pdfText: newPDFTextExtractor(logger),
	}
}

// Extract turns a raw document into plain text. Extraction is synchronous,
// processes pages strictly in order, and does not retry or cache.
func (s *Service) Extract(ctx context.Context, document []byte, kind interfaces.DocumentKind, onProgress interfaces.ProgressFunc) (string, error) {
	switch kind {
	case interfaces.DocumentKindPDF:
		text, err := s.pdfText.extract(document, onProgress)
		if err != nil {
			s.logger.Error().Err(err).Msg("PDF text extraction failed")
			return "", ErrExtractionFailed
		}
		return text, nil

	case interfaces.DocumentKindImage:
		return s.extractWithOCR(ctx, document, kind, onProgress)

	default:
		s.logger.Error().Str("kind", string(kind)).Msg("Unsupported document kind")
		return "", ErrExtractionFailed
	}
}

// ExtractScanned routes a PDF without a usable text layer through the OCR
// backend, rendering each page to an image first.
func (s *Service) ExtractScanned(ctx context.Context, document []byte, onProgress interfaces.ProgressFunc) (string, error) {
	return s.extractWithOCR(ctx, document, interfaces.DocumentKindPDF, onProgress)
}

// extractWithOCR runs the scoped OCR worker: create, use, guaranteed
// terminate on every exit path.
func (s *Service) extractWithOCR(ctx context.Context, document []byte, kind interfaces.DocumentKind, onProgress interfaces.ProgressFunc) (string, error) {
	worker, err := newOCRWorker(s.config, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("OCR worker initialization failed")
		return "", ErrExtractionFailed
	}
	defer worker.terminate()

	text, err := worker.recognize(ctx, document, kind, onProgress)
	if err != nil {
		s.logger.Error().Err(err).Msg("OCR recognition failed")
		return "", ErrExtractionFailed
	}

	return text, nil
}

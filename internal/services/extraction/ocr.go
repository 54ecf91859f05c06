package extraction

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
)

// ocrWorker is a scoped tesseract acquisition: a temp workspace plus the
// recognition processes spawned inside it. It must be terminated on every
// exit path, success or failure, so repeated extractions don't leak
// workspaces or child processes.
type ocrWorker struct {
	config *common.OCRConfig
	logger arbor.ILogger
	dir    string
}

// newOCRWorker creates the worker's temp workspace.
func newOCRWorker(config *common.OCRConfig, logger arbor.ILogger) (*ocrWorker, error) {
	dir, err := os.MkdirTemp("", "formforge-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR workspace: %w", err)
	}
	return &ocrWorker{config: config, logger: logger, dir: dir}, nil
}

// terminate releases all worker resources. Safe to call more than once.
func (w *ocrWorker) terminate() {
	if w.dir != "" {
		os.RemoveAll(w.dir)
		w.dir = ""
	}
}

// recognizeImage runs tesseract on a single image and returns its text.
// The language model and page-segmentation mode come from config; PSM 1
// enables automatic orientation and script detection, and inter-word spacing
// is preserved so downstream line heuristics see the original layout.
func (w *ocrWorker) recognizeImage(ctx context.Context, imagePath string) (string, error) {
	binary := w.config.Binary
	if binary == "" {
		binary = "tesseract"
	}
	language := w.config.Language
	if language == "" {
		language = "eng"
	}
	psm := w.config.PSM
	if psm == 0 {
		psm = 1
	}

	cmd := exec.CommandContext(ctx, binary, imagePath, "stdout",
		"-l", language,
		"--psm", strconv.Itoa(psm),
		"-c", "preserve_interword_spaces=1",
	)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w (%s)", err, strings.TrimSpace(errOut.String()))
	}

	return strings.TrimSpace(out.String()), nil
}

// recognize performs OCR over a document. Images are recognized directly;
// PDFs are rendered page by page to PNG first (go-fitz/MuPDF). Progress is
// reported only during the recognition phase, 0-100 proportional to pages.
func (w *ocrWorker) recognize(ctx context.Context, document []byte, kind interfaces.DocumentKind, onProgress interfaces.ProgressFunc) (string, error) {
	images, err := w.prepareImages(document, kind)
	if err != nil {
		return "", err
	}

	var fullText strings.Builder
	for i, imagePath := range images {
		if onProgress != nil {
			onProgress(i*100/len(images), "recognizing text")
		}

		text, err := w.recognizeImage(ctx, imagePath)
		if err != nil {
			return "", fmt.Errorf("recognition failed on page %d: %w", i+1, err)
		}

		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fullText.WriteString(text)

		if onProgress != nil {
			onProgress((i+1)*100/len(images), "recognizing text")
		}
	}

	return strings.TrimSpace(fullText.String()), nil
}

// prepareImages writes the recognition inputs into the workspace: the raw
// image for image documents, one rendered PNG per page for PDFs.
func (w *ocrWorker) prepareImages(document []byte, kind interfaces.DocumentKind) ([]string, error) {
	if kind == interfaces.DocumentKindImage {
		path := filepath.Join(w.dir, "input.img")
		if err := os.WriteFile(path, document, 0644); err != nil {
			return nil, fmt.Errorf("failed to write image: %w", err)
		}
		return []string{path}, nil
	}

	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	defer doc.Close()

	dpi := w.config.DPI
	if dpi <= 0 {
		dpi = 150
	}

	var paths []string
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		path := filepath.Join(w.dir, fmt.Sprintf("page_%04d.png", i+1))
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create page image: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to encode page image: %w", err)
		}
		f.Close()
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("document produced no page images")
	}
	return paths, nil
}

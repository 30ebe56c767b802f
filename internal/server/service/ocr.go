package service

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/go-taken/ocr-gateway/internal/ocr"
)

// Processor defines the OCR dependency.
type Processor interface {
	Recognize(ctx context.Context, kind ocr.Kind, job ocr.Job) (ocr.Result, error)
}

// OCRService orchestrates OCR processing.
type OCRService struct {
	processor Processor
	tempDir   string
}

// NewOCRService creates OCRService. Workspaces are created under tempDir,
// or the OS default when it is empty.
func NewOCRService(proc Processor, tempDir string) *OCRService {
	return &OCRService{processor: proc, tempDir: tempDir}
}

// Process persists the upload into a request-scoped workspace, classifies it
// and runs the matching pipeline. The workspace is removed before returning.
func (s *OCRService) Process(ctx context.Context, up ocr.Upload, opts ocr.Options) (ocr.Result, error) {
	if up.Body == nil {
		return ocr.Result{}, ocr.ErrMissingInput
	}
	log := zerolog.Ctx(ctx)

	ws, err := ocr.NewWorkspace(s.tempDir)
	if err != nil {
		return ocr.Result{}, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Error().Err(err).Str("dir", ws.Dir).Msg("remove workspace")
		}
	}()

	inputPath, size, err := ws.SaveUpload(up.Body, up.Filename)
	if err != nil {
		return ocr.Result{}, eris.Wrapf(err, "persist upload (%s)", up.Filename)
	}
	if size == 0 {
		return ocr.Result{}, ocr.ErrMissingInput
	}

	head, err := ocr.ReadHead(inputPath, ocr.SniffLen)
	if err != nil {
		return ocr.Result{}, err
	}
	kind, err := ocr.Sniff(head, up.ContentType, up.Filename)
	if err != nil {
		log.Info().Str("filename", up.Filename).Str("content_type", up.ContentType).Msg("rejected unsupported upload")
		return ocr.Result{}, err
	}

	log.Info().
		Str("kind", kind.String()).
		Int64("bytes", size).
		Str("lang", opts.Language).
		Msg("processing upload")

	return s.processor.Recognize(ctx, kind, ocr.Job{
		InputPath: inputPath,
		WorkDir:   ws.Dir,
		Options:   opts,
	})
}

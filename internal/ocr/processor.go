package ocr

import (
	"context"

	"github.com/rotisserie/eris"
)

// Engine turns a persisted job into text.
type Engine interface {
	Recognize(ctx context.Context, job Job) (Result, error)
}

// Processor routes jobs to the engine for their kind.
type Processor struct {
	Image    Engine
	Document Engine
}

// NewProcessor wires the tesseract and ocrmypdf pipelines onto runner.
func NewProcessor(tools Tools, runner Runner, counter PageCounter) *Processor {
	return &Processor{
		Image:    NewTesseractEngine(tools.Tesseract, runner),
		Document: NewOCRmyPDFEngine(tools.OCRmyPDF, runner, counter),
	}
}

// Recognize dispatches job according to kind.
func (p *Processor) Recognize(ctx context.Context, kind Kind, job Job) (Result, error) {
	switch kind {
	case KindPDF:
		return p.Document.Recognize(ctx, job)
	case KindImage:
		return p.Image.Recognize(ctx, job)
	default:
		return Result{}, eris.Wrapf(ErrUnsupportedFormat, "kind %s", kind)
	}
}

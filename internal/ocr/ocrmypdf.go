package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	outputPDFName = "out.pdf"
	sidecarName   = "out.txt"
)

// OCRmyPDFEngine force-OCRs PDFs with ocrmypdf and reads back the sidecar
// transcript.
type OCRmyPDFEngine struct {
	Binary string
	Runner Runner
	// Pages counts pages of the processed document. Optional.
	Pages PageCounter
}

// NewOCRmyPDFEngine returns an engine using binary, runner and counter.
func NewOCRmyPDFEngine(binary string, runner Runner, counter PageCounter) *OCRmyPDFEngine {
	if binary == "" {
		binary = "ocrmypdf"
	}
	return &OCRmyPDFEngine{Binary: binary, Runner: runner, Pages: counter}
}

// Recognize runs ocrmypdf inside job.WorkDir. The page count is best-effort
// and left nil when it cannot be determined.
func (e *OCRmyPDFEngine) Recognize(ctx context.Context, job Job) (Result, error) {
	log := zerolog.Ctx(ctx)
	outputPDF := filepath.Join(job.WorkDir, outputPDFName)
	sidecar := filepath.Join(job.WorkDir, sidecarName)

	args := buildOCRmyPDFArgs(job.Options, job.InputPath, outputPDF, sidecar)
	out, err := e.Runner.Run(ctx, e.Binary, args...)
	if err != nil {
		detail := strings.TrimSpace(decodeLossy(out.Combined))
		if detail == "" {
			detail = fmt.Sprintf("ocrmypdf error: %v", err)
		}
		log.Error().Err(err).Str("detail", detail).Msg("ocrmypdf failed")
		return Result{}, &EngineError{Tool: e.Binary, Detail: detail, Err: err}
	}

	text, err := readSidecar(sidecar)
	if err != nil {
		return Result{}, err
	}

	res := Result{Text: text, Engine: EngineOCRmyPDF}
	if e.Pages != nil {
		n, err := e.Pages.CountPages(ctx, outputPDF)
		if err != nil {
			log.Warn().Err(err).Msg("page count unavailable")
		} else {
			res.Pages = &n
		}
	}
	if job.Options.SplitPages {
		res.PageTexts = SplitPages(text)
	}
	return res, nil
}

func buildOCRmyPDFArgs(opts Options, input, output, sidecar string) []string {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	args := []string{
		"--force-ocr",
		"--language", lang,
		"--sidecar", sidecar,
	}
	if opts.Optimize > 0 {
		args = append(args, "--optimize", strconv.Itoa(opts.Optimize))
	}
	if opts.Deskew {
		args = append(args, "--deskew")
	}
	if opts.Clean {
		args = append(args, "--clean")
	}
	return append(args, input, output)
}

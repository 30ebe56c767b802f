package ocr

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// TesseractEngine recognizes single images by calling the tesseract CLI.
type TesseractEngine struct {
	Binary string
	Runner Runner
}

// NewTesseractEngine returns an engine using binary and runner.
func NewTesseractEngine(binary string, runner Runner) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractEngine{Binary: binary, Runner: runner}
}

// Recognize runs `tesseract <input> stdout -l <lang>` and returns its stdout.
// Pages is always 1.
func (e *TesseractEngine) Recognize(ctx context.Context, job Job) (Result, error) {
	lang := job.Options.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	out, err := e.Runner.Run(ctx, e.Binary, job.InputPath, "stdout", "-l", lang)
	if err != nil {
		detail := strings.TrimSpace(decodeLossy(out.Combined))
		zerolog.Ctx(ctx).Error().Err(err).Str("detail", detail).Msg("tesseract failed")
		return Result{}, &EngineError{Tool: e.Binary, Detail: detail, Err: err}
	}

	pages := 1
	text := decodeLossy(out.Stdout)
	res := Result{Text: text, Pages: &pages, Engine: EngineTesseract}
	if job.Options.SplitPages {
		res.PageTexts = []PageContent{{Page: 1, Content: strings.TrimSpace(normalizeNewlines(text))}}
	}
	return res, nil
}

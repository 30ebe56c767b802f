package ocr

import "io"

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = "spa+eng"

// Engine labels reported back to clients.
const (
	EngineTesseract = "tesseract"
	EngineOCRmyPDF  = "ocrmypdf+tesseract"
)

// Kind is the classification produced by Sniff.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// PageContent represents OCR text for a single page.
type PageContent struct {
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// Options controls a single recognition request.
type Options struct {
	Language string
	Optimize int
	Deskew   bool
	Clean    bool
	// SplitPages asks for per-page text alongside the full transcript.
	SplitPages bool
}

// DefaultOptions mirrors the form defaults of POST /ocr.
func DefaultOptions() Options {
	return Options{
		Language: DefaultLanguage,
		Deskew:   true,
		Clean:    true,
	}
}

// Upload is the payload received from a client.
type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

// Job is a persisted upload ready for an engine. WorkDir belongs to the
// request and is removed once the job finishes.
type Job struct {
	InputPath string
	WorkDir   string
	Options   Options
}

// Result is the uniform response of both pipelines. Pages is nil when the
// page count could not be determined.
type Result struct {
	Text      string        `json:"text"`
	Pages     *int          `json:"pages"`
	Engine    string        `json:"engine"`
	PageTexts []PageContent `json:"page_texts,omitempty"`
}

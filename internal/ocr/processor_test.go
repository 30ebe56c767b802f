package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type call struct {
	name string
	args []string
}

// fakeRunner records invocations and answers with canned output. A hook may
// write files the real tool would have produced.
type fakeRunner struct {
	calls []call
	out   map[string]Output
	err   map[string]error
	hook  func(name string, args []string)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{out: map[string]Output{}, err: map[string]error{}}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.hook != nil {
		f.hook(name, args)
	}
	return f.out[name], f.err[name]
}

func (f *fakeRunner) called(name string) bool {
	for _, c := range f.calls {
		if c.name == name {
			return true
		}
	}
	return false
}

type fakeEngine struct {
	label string
	jobs  []Job
}

func (f *fakeEngine) Recognize(ctx context.Context, job Job) (Result, error) {
	f.jobs = append(f.jobs, job)
	return Result{Engine: f.label}, nil
}

func TestProcessor_RoutesByKind(t *testing.T) {
	img := &fakeEngine{label: "img"}
	doc := &fakeEngine{label: "doc"}
	p := &Processor{Image: img, Document: doc}

	res, err := p.Recognize(context.Background(), KindPDF, Job{InputPath: "a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Engine != "doc" || len(doc.jobs) != 1 || len(img.jobs) != 0 {
		t.Fatalf("pdf not routed to document engine: %+v", res)
	}

	res, err = p.Recognize(context.Background(), KindImage, Job{InputPath: "a.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Engine != "img" || len(img.jobs) != 1 {
		t.Fatalf("image not routed to image engine: %+v", res)
	}
}

func TestProcessor_UnknownKind(t *testing.T) {
	p := &Processor{Image: &fakeEngine{}, Document: &fakeEngine{}}
	_, err := p.Recognize(context.Background(), KindUnknown, Job{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewProcessor_UsesConfiguredTools(t *testing.T) {
	runner := newFakeRunner()
	tools := Tools{Tesseract: "/opt/tess", OCRmyPDF: "/opt/ocrmypdf"}
	p := NewProcessor(tools, runner, nil)

	dir := t.TempDir()
	if _, err := p.Recognize(context.Background(), KindImage, Job{InputPath: "x.png", WorkDir: dir}); err != nil {
		t.Fatalf("image: %v", err)
	}
	if _, err := p.Recognize(context.Background(), KindPDF, Job{InputPath: "x.pdf", WorkDir: dir}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !runner.called("/opt/tess") || !runner.called("/opt/ocrmypdf") {
		t.Fatalf("configured binaries not used: %+v", runner.calls)
	}
}

func TestSplitPages(t *testing.T) {
	input := "Hello Page 1\nLine 2\f\fPage 3 Content\nLine B"
	result := SplitPages(input)

	if len(result) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result))
	}
	if result[0].Page != 1 || !strings.Contains(result[0].Content, "Page 1") {
		t.Fatalf("unexpected first page: %+v", result[0])
	}
	if result[1].Page != 3 || !strings.Contains(result[1].Content, "Page 3") {
		t.Fatalf("unexpected third page: %+v", result[1])
	}
}

func TestSplitPages_NormalizesNewlinesAndSkipsEmpty(t *testing.T) {
	input := "Line 1\r\nLine 2\f\f\fLast Page"
	result := SplitPages(input)

	if len(result) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result))
	}
	if result[0].Content != "Line 1\nLine 2" {
		t.Fatalf("unexpected newline normalization: %q", result[0].Content)
	}
	if result[1].Page != 4 {
		t.Fatalf("expected last page to be 4 due to skipped empties, got %d", result[1].Page)
	}
}

func TestReadSidecar_MissingFileIsEmpty(t *testing.T) {
	text, err := readSidecar(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestReadSidecar_DropsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidecar.txt")
	if err := os.WriteFile(path, []byte("A\xffpage"), 0o600); err != nil {
		t.Fatal(err)
	}

	text, err := readSidecar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Apage" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello\r\nWorld", "Hello\nWorld"},
		{"No change", "No change"},
		{"Multiple\r\nLine\r\nBreaks", "Multiple\nLine\nBreaks"},
		{"", ""},
	}

	for _, tt := range tests {
		result := normalizeNewlines(tt.input)
		if result != tt.expected {
			t.Errorf("normalizeNewlines(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Language != "spa+eng" {
		t.Errorf("expected language spa+eng, got %q", opts.Language)
	}
	if opts.Optimize != 0 {
		t.Errorf("expected optimize 0, got %d", opts.Optimize)
	}
	if !opts.Deskew || !opts.Clean {
		t.Error("expected deskew and clean on by default")
	}
	if opts.SplitPages {
		t.Error("expected split off by default")
	}
}

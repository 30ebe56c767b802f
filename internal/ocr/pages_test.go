package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const samplePDFInfo = `Title:           scan
Producer:        ocrmypdf 16.0.0
Tagged:          no
Pages:           3
Encrypted:       no
Page size:       612 x 792 pts (letter)
`

func TestParsePDFInfoPages(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"typical", samplePDFInfo, 3, false},
		{"lowercase", "pages: 12\n", 12, false},
		{"first match wins", "PAGES:1\nPages: 9\n", 1, false},
		{"missing", "Title: x\nEncrypted: no\n", 0, true},
		{"not a number", "Pages: many\n", 0, true},
		{"prefix must lead", "Total Pages: 4\n", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePDFInfoPages([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestPDFInfoCounter(t *testing.T) {
	runner := newFakeRunner()
	runner.out["pdfinfo"] = Output{Stdout: []byte(samplePDFInfo)}
	counter := NewPDFInfoCounter("", runner)

	n, err := counter.CountPages(context.Background(), "/work/out.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pages, got %d", n)
	}
	if runner.calls[0].args[0] != "/work/out.pdf" {
		t.Fatalf("unexpected args: %v", runner.calls[0].args)
	}
}

func TestPDFInfoCounter_ToolFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.err["pdfinfo"] = errors.New("exit status 1")
	counter := NewPDFInfoCounter("", runner)

	if _, err := counter.CountPages(context.Background(), "out.pdf"); err == nil {
		t.Fatal("expected error")
	}
}

// onePagePDF builds a minimal well-formed PDF with a correct xref table.
func onePagePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFCPUCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.pdf")
	if err := os.WriteFile(path, onePagePDF(), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := NewPDFCPUCounter().CountPages(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}
}

func TestPDFCPUCounter_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pdf")
	if err := os.WriteFile(path, []byte("definitely not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewPDFCPUCounter().CountPages(context.Background(), path); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestPDFCPUCounter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPDFCPUCounter().CountPages(ctx, "unused.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOCRmyPDFEngine_PDFCPUCountFailureLeavesPagesNull(t *testing.T) {
	workDir := t.TempDir()
	runner := newFakeRunner()
	runner.hook = func(name string, args []string) {
		// ocrmypdf "succeeds" but leaves an unreadable output document.
		_ = os.WriteFile(args[len(args)-1], []byte("garbage"), 0o600)
		writeSidecarFromArgs(t, args, "HELLO\n\f")
	}
	engine := NewOCRmyPDFEngine("", runner, NewPDFCPUCounter())

	res, err := engine.Recognize(context.Background(), Job{InputPath: "in.pdf", WorkDir: workDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages != nil {
		t.Fatalf("expected nil pages, got %d", *res.Pages)
	}
	if res.Text != "HELLO\n\f" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

package ocr

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
)

// ErrPagesNotFound is returned when metadata output has no page count.
var ErrPagesNotFound = eris.New("page count not found in metadata")

// PageCounter reports the number of pages of a PDF on disk.
type PageCounter interface {
	CountPages(ctx context.Context, pdfPath string) (int, error)
}

// PDFInfoCounter reads the page count from `pdfinfo <pdf>`.
type PDFInfoCounter struct {
	Binary string
	Runner Runner
}

// NewPDFInfoCounter returns a counter using binary and runner.
func NewPDFInfoCounter(binary string, runner Runner) *PDFInfoCounter {
	if binary == "" {
		binary = "pdfinfo"
	}
	return &PDFInfoCounter{Binary: binary, Runner: runner}
}

func (c *PDFInfoCounter) CountPages(ctx context.Context, pdfPath string) (int, error) {
	out, err := c.Runner.Run(ctx, c.Binary, pdfPath)
	if err != nil {
		return 0, eris.Wrapf(err, "%s failed", c.Binary)
	}
	return parsePDFInfoPages(out.Stdout)
}

// parsePDFInfoPages scans for the first line starting with "Pages:",
// ignoring case, and parses the integer after the colon.
func parsePDFInfoPages(data []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := decodeLossy(sc.Bytes())
		if len(line) < len("pages:") || !strings.EqualFold(line[:len("pages:")], "pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(line[len("pages:"):]))
		if err != nil {
			return 0, eris.Wrapf(err, "parse page count %q", line)
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, eris.Wrap(err, "scan pdfinfo output")
	}
	return 0, ErrPagesNotFound
}

var disablePDFCPUConfig sync.Once

// PDFCPUCounter counts pages in-process with pdfcpu.
type PDFCPUCounter struct{}

// NewPDFCPUCounter returns a counter that never spawns a process.
func NewPDFCPUCounter() *PDFCPUCounter {
	disablePDFCPUConfig.Do(api.DisableConfigDir)
	return &PDFCPUCounter{}
}

func (PDFCPUCounter) CountPages(ctx context.Context, pdfPath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, eris.Wrapf(err, "pdfcpu page count %s", pdfPath)
	}
	return n, nil
}

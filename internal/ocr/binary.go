package ocr

import (
	"os/exec"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Tools names the external binaries. Empty fields fall back to the
// executable name looked up on PATH.
type Tools struct {
	Tesseract string
	OCRmyPDF  string
	PDFInfo   string
}

// DefaultTools returns the plain executable names.
func DefaultTools() Tools {
	return Tools{
		Tesseract: "tesseract",
		OCRmyPDF:  "ocrmypdf",
		PDFInfo:   "pdfinfo",
	}
}

// EnsureBinary checks whether binary is available on PATH.
func EnsureBinary(binary string) error {
	if binary == "" {
		return eris.New("binary name is empty")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return eris.Wrapf(err, "%s binary not found", binary)
	}
	return nil
}

// ResolveBinary returns the absolute binary path if available on PATH.
func ResolveBinary(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs, nil
	}
	return path, nil
}

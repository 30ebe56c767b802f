package ocr

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// SniffLen is the number of leading bytes Sniff needs to see.
const SniffLen = 16

var pdfMagic = []byte("%PDF-")

type signature struct {
	offset int
	magic  []byte
}

var imageSignatures = []signature{
	{0, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}},
	{0, []byte{0xFF, 0xD8, 0xFF}},
	{0, []byte("GIF87a")},
	{0, []byte("GIF89a")},
	{0, []byte{'I', 'I', 0x2A, 0x00}},
	{0, []byte{'M', 'M', 0x00, 0x2A}},
	{0, []byte("BM")},
	{8, []byte("WEBP")},
	{0, []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' ', '\r', '\n', 0x87, '\n'}},
	{0, []byte{0xFF, 0x4F, 0xFF, 0x51}},
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".jpe":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
	".jp2":  true,
	".j2k":  true,
	".pnm":  true,
	".pbm":  true,
	".pgm":  true,
	".ppm":  true,
}

// Sniff classifies a payload from its leading bytes, falling back to the
// declared content type and filename when no signature matches.
func Sniff(head []byte, contentType, filename string) (Kind, error) {
	if bytes.HasPrefix(head, pdfMagic) {
		return KindPDF, nil
	}
	if hasImageSignature(head) {
		return KindImage, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if isPDFContentType(contentType) || ext == ".pdf" {
		return KindPDF, nil
	}
	if imageExtensions[ext] {
		return KindImage, nil
	}
	return KindUnknown, ErrUnsupportedFormat
}

func hasImageSignature(head []byte) bool {
	for _, sig := range imageSignatures {
		end := sig.offset + len(sig.magic)
		if len(head) < end {
			continue
		}
		if !bytes.Equal(head[sig.offset:end], sig.magic) {
			continue
		}
		// WEBP sits inside a RIFF container.
		if sig.offset == 8 && !bytes.HasPrefix(head, []byte("RIFF")) {
			continue
		}
		return true
	}
	return false
}

func isPDFContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, "application/pdf")
}

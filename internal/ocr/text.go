package ocr

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// decodeLossy drops invalid UTF-8 sequences instead of failing.
func decodeLossy(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// readSidecar returns the transcript at path. A missing file is not an
// error and yields "".
func readSidecar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", eris.Wrapf(err, "read sidecar %s", path)
	}
	return decodeLossy(data), nil
}

// SplitPages breaks a transcript on form feeds, the page separator written by
// tesseract and ocrmypdf. Blank pages keep their number but are omitted.
func SplitPages(text string) []PageContent {
	raw := strings.Split(text, "\f")
	var pages []PageContent
	for i, chunk := range raw {
		content := strings.TrimSpace(normalizeNewlines(chunk))
		if content == "" {
			continue
		}
		pages = append(pages, PageContent{
			Page:    i + 1,
			Content: content,
		})
	}
	return pages
}

func normalizeNewlines(in string) string {
	return strings.ReplaceAll(in, "\r\n", "\n")
}

package handler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/go-taken/ocr-gateway/internal/ocr"
)

const maxOptimize = 3

var langPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_+/-]{0,127}$`)

// Form field names and the headers carrying them on raw-body requests.
var optionHeaders = map[string]string{
	"lang":     "X-OCR-Lang",
	"optimize": "X-OCR-Optimize",
	"deskew":   "X-OCR-Deskew",
	"clean":    "X-OCR-Clean",
	"split":    "X-OCR-Split",
}

// parseOptions reads recognition options through get, keyed by form field
// name. Absent or empty values keep their defaults.
func parseOptions(get func(field string) string, defaultLang string) (ocr.Options, error) {
	opts := ocr.DefaultOptions()
	opts.Language = defaultLang

	if v := strings.TrimSpace(get("lang")); v != "" {
		if !langPattern.MatchString(v) {
			return ocr.Options{}, eris.Wrapf(ocr.ErrInvalidOptions, "lang %q", v)
		}
		opts.Language = v
	}
	if v := strings.TrimSpace(get("optimize")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxOptimize {
			return ocr.Options{}, eris.Wrapf(ocr.ErrInvalidOptions, "optimize must be an integer between 0 and %d, got %q", maxOptimize, v)
		}
		opts.Optimize = n
	}

	var err error
	if opts.Deskew, err = parseFlag(get("deskew"), opts.Deskew); err != nil {
		return ocr.Options{}, eris.Wrap(err, "deskew")
	}
	if opts.Clean, err = parseFlag(get("clean"), opts.Clean); err != nil {
		return ocr.Options{}, eris.Wrap(err, "clean")
	}
	if opts.SplitPages, err = parseFlag(get("split"), opts.SplitPages); err != nil {
		return ocr.Options{}, eris.Wrap(err, "split")
	}
	return opts, nil
}

// parseFlag accepts integers (non-zero is true) and the usual boolean words.
func parseFlag(v string, def bool) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "":
		return def, nil
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, eris.Wrapf(ocr.ErrInvalidOptions, "expected 0/1 or true/false, got %q", v)
	}
	return n != 0, nil
}

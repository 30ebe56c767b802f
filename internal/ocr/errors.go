package ocr

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrMissingInput is returned when no payload was supplied.
	ErrMissingInput = eris.New("missing input: expected a file in field 'file' or 'pdf'")
	// ErrUnsupportedFormat is returned when a payload is neither a PDF nor a known image.
	ErrUnsupportedFormat = eris.New("unsupported format: payload is not a PDF or a supported image")
	// ErrInvalidOptions is returned for malformed recognition options.
	ErrInvalidOptions = eris.New("invalid options")
	// ErrEngineFailure matches every *EngineError.
	ErrEngineFailure = eris.New("engine failure")
)

// EngineError reports an external tool that exited unsuccessfully.
type EngineError struct {
	Tool   string
	Detail string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Detail)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEngineFailure) match any engine error.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngineFailure
}

package ocr

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	defaultUploadName = "upload.bin"

	// Most filesystems reject names over 255 bytes.
	maxUploadNameLen = 255
	maxExtLen        = 16
)

// Workspace is a temporary directory owned by a single request.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh directory under base (the OS temp dir when
// base is empty). Callers must Close it on every path.
func NewWorkspace(base string) (*Workspace, error) {
	dir, err := os.MkdirTemp(base, "ocr-*")
	if err != nil {
		return nil, eris.Wrap(err, "create workspace")
	}
	return &Workspace{Dir: dir}, nil
}

// Close removes the workspace and everything written beneath it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}

// SaveUpload copies r into the workspace under a sanitized form of filename
// and returns the path together with the number of bytes written.
func (w *Workspace) SaveUpload(r io.Reader, filename string) (string, int64, error) {
	path := filepath.Join(w.Dir, uploadName(filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, eris.Wrap(err, "create upload file")
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", n, eris.Wrap(err, "write upload file")
	}
	return path, n, nil
}

// uploadName keeps the client's base name so extensions survive, and avoids
// the names the document pipeline writes.
func uploadName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return defaultUploadName
	}
	if name == outputPDFName || name == sidecarName {
		return "in-" + name
	}
	if len(name) > maxUploadNameLen {
		if ext := filepath.Ext(name); ext != "" && len(ext) <= maxExtLen {
			return "upload" + ext
		}
		return defaultUploadName
	}
	return name
}

// ReadHead returns up to n leading bytes of the file at path.
func ReadHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open upload")
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, eris.Wrap(err, "read upload header")
	}
	return buf[:read], nil
}

package handler

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-taken/ocr-gateway/internal/ocr"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to disk.
const multipartMemory = 32 << 20

// File fields accepted on multipart requests, in order of preference.
var fileFields = []string{"file", "pdf"}

// OCRService defines the behavior consumed by the handler.
type OCRService interface {
	Process(ctx context.Context, up ocr.Upload, opts ocr.Options) (ocr.Result, error)
}

// OCRHandler manages OCR HTTP interactions.
type OCRHandler struct {
	service     OCRService
	defaultLang string
	maxUpload   int64
}

// NewOCRHandler builds the handler. maxUpload caps the request body in bytes;
// zero disables the cap.
func NewOCRHandler(svc OCRService, defaultLang string, maxUpload int64) *OCRHandler {
	if defaultLang == "" {
		defaultLang = ocr.DefaultLanguage
	}
	return &OCRHandler{service: svc, defaultLang: defaultLang, maxUpload: maxUpload}
}

// HandleOCR accepts a multipart upload (field "file" or "pdf") or, for any
// other content type, the raw body with options in X-OCR-* headers.
func (h *OCRHandler) HandleOCR(c *gin.Context) {
	if h.maxUpload > 0 {
		if c.Request.ContentLength > h.maxUpload {
			abortDetail(c, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	var (
		up   ocr.Upload
		opts ocr.Options
		err  error
	)
	if isMultipart(c.GetHeader("Content-Type")) {
		// Middleware may have replaced the request, so net/http will not
		// clean up parts spilled to disk on our copy.
		defer func() {
			if form := c.Request.MultipartForm; form != nil {
				_ = form.RemoveAll()
			}
		}()
		var file multipart.File
		file, up, opts, err = h.bindMultipart(c)
		if file != nil {
			defer file.Close()
		}
	} else {
		up, opts, err = h.bindRaw(c)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.service.Process(c.Request.Context(), up, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OCRHandler) bindMultipart(c *gin.Context) (multipart.File, ocr.Upload, ocr.Options, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ocr.Upload{}, ocr.Options{}, err
		}
		return nil, ocr.Upload{}, ocr.Options{}, errInvalidMultipart
	}

	opts, err := parseOptions(c.Request.PostFormValue, h.defaultLang)
	if err != nil {
		return nil, ocr.Upload{}, ocr.Options{}, err
	}

	for _, field := range fileFields {
		file, header, err := c.Request.FormFile(field)
		if err != nil {
			continue
		}
		return file, ocr.Upload{
			Body:        file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}, opts, nil
	}
	return nil, ocr.Upload{}, ocr.Options{}, ocr.ErrMissingInput
}

func (h *OCRHandler) bindRaw(c *gin.Context) (ocr.Upload, ocr.Options, error) {
	opts, err := parseOptions(func(field string) string {
		return c.GetHeader(optionHeaders[field])
	}, h.defaultLang)
	if err != nil {
		return ocr.Upload{}, ocr.Options{}, err
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ocr.Upload{}, ocr.Options{}, ocr.ErrMissingInput
	}
	return ocr.Upload{
		Body:        c.Request.Body,
		Filename:    rawFilename(c.Request.Header),
		ContentType: c.GetHeader("Content-Type"),
	}, opts, nil
}

var errInvalidMultipart = errors.New("invalid multipart payload")

func (h *OCRHandler) respondError(c *gin.Context, err error) {
	log := zerolog.Ctx(c.Request.Context())

	var (
		tooLarge  *http.MaxBytesError
		engineErr *ocr.EngineError
	)
	switch {
	case errors.As(err, &tooLarge):
		abortDetail(c, http.StatusRequestEntityTooLarge, "payload too large")
	case errors.Is(err, errInvalidMultipart):
		abortDetail(c, http.StatusBadRequest, errInvalidMultipart.Error())
	case errors.Is(err, ocr.ErrMissingInput):
		abortDetail(c, http.StatusBadRequest, ocr.ErrMissingInput.Error())
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		abortDetail(c, http.StatusBadRequest, ocr.ErrUnsupportedFormat.Error())
	case errors.Is(err, ocr.ErrInvalidOptions):
		abortDetail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &engineErr):
		log.Error().Err(err).Msg("ocr engine error")
		detail := engineErr.Detail
		if detail == "" {
			detail = engineErr.Error()
		}
		abortDetail(c, http.StatusInternalServerError, detail)
	default:
		log.Error().Err(err).Msg("ocr error")
		abortDetail(c, http.StatusInternalServerError, "internal error")
	}
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.EqualFold(mediaType, "multipart/form-data")
}

// rawFilename prefers X-Filename, then the filename of Content-Disposition.
func rawFilename(h http.Header) string {
	if name := strings.TrimSpace(h.Get("X-Filename")); name != "" {
		return name
	}
	if cd := h.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			return params["filename"]
		}
	}
	return ""
}

package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-taken/ocr-gateway/internal/config"
	"github.com/go-taken/ocr-gateway/internal/ocr"
	"github.com/go-taken/ocr-gateway/internal/server/handler"
	"github.com/go-taken/ocr-gateway/internal/server/router"
	"github.com/go-taken/ocr-gateway/internal/server/service"
)

const shutdownTimeout = 30 * time.Second

// Run starts the HTTP server and blocks until it stops or receives
// SIGINT/SIGTERM.
func Run(cfg config.Config, log zerolog.Logger) error {
	if err := checkTools(cfg, log); err != nil {
		return err
	}

	// Set Gin mode based on environment
	if cfg.Server.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewHandler(cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewHandler builds the full dependency chain behind the router.
func NewHandler(cfg config.Config, log zerolog.Logger) http.Handler {
	runner := ocr.NewLimitRunner(&ocr.ExecRunner{Timeout: cfg.Tools.Timeout}, cfg.Tools.MaxConcurrent)

	processor := ocr.NewProcessor(cfg.OCRTools(), runner, newPageCounter(cfg, runner))
	ocrService := service.NewOCRService(processor, cfg.Workspace.TempDir)
	ocrHandler := handler.NewOCRHandler(ocrService, cfg.Defaults.Lang, cfg.Server.MaxUploadBytes)

	return router.New(router.Options{
		APIKey:      cfg.Server.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	}, ocrHandler)
}

func newPageCounter(cfg config.Config, runner ocr.Runner) ocr.PageCounter {
	if cfg.Metadata.Backend == config.BackendPDFCPU {
		return ocr.NewPDFCPUCounter()
	}
	return ocr.NewPDFInfoCounter(cfg.Tools.PDFInfo, runner)
}

// checkTools requires the OCR binaries; pdfinfo is only needed for the
// best-effort page count.
func checkTools(cfg config.Config, log zerolog.Logger) error {
	for _, bin := range []string{cfg.Tools.Tesseract, cfg.Tools.OCRmyPDF} {
		if err := ocr.EnsureBinary(bin); err != nil {
			return err
		}
	}
	if cfg.Metadata.Backend == config.BackendPDFInfo {
		if err := ocr.EnsureBinary(cfg.Tools.PDFInfo); err != nil {
			log.Warn().Err(err).Msg("page counts for PDFs will be reported as null")
		}
	}

	tools := cfg.OCRTools()
	for _, bin := range []string{tools.Tesseract, tools.OCRmyPDF, tools.PDFInfo} {
		if path, err := ocr.ResolveBinary(bin); err == nil {
			log.Info().Str("tool", bin).Str("path", path).Msg("resolved external tool")
		}
	}
	return nil
}

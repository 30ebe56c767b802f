package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-taken/ocr-gateway/internal/server/middleware"
)

// OCRHandler defines the interface for the OCR handler.
type OCRHandler interface {
	HandleOCR(c *gin.Context)
}

// Options configures the cross-cutting middleware.
type Options struct {
	APIKey      string
	CORSOrigins []string
	Logger      zerolog.Logger
}

// New wires up handlers to the Gin engine.
func New(opts Options, ocrHandler OCRHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.WithLogger(opts.Logger), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}

	// Health checks (no API key)
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/health", health)
	r.GET("/healthz", health)

	auth := middleware.WithAPIKey(opts.APIKey)
	r.POST("/ocr", auth, ocrHandler.HandleOCR)

	v1 := r.Group("/api/v1", auth)
	{
		v1.POST("/ocr", ocrHandler.HandleOCR)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

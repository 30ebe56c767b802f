package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/go-taken/ocr-gateway/internal/ocr"
)

// Metadata backends for page counting.
const (
	BackendPDFInfo = "pdfinfo"
	BackendPDFCPU  = "pdfcpu"
)

// Config is the full service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Tools     Tools     `yaml:"tools"`
	Metadata  Metadata  `yaml:"metadata"`
	Workspace Workspace `yaml:"workspace"`
	Defaults  Defaults  `yaml:"defaults"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Port           string   `yaml:"port"`
	Mode           string   `yaml:"mode"`
	APIKey         string   `yaml:"api_key"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

type Tools struct {
	Tesseract     string        `yaml:"tesseract"`
	OCRmyPDF      string        `yaml:"ocrmypdf"`
	PDFInfo       string        `yaml:"pdfinfo"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int64         `yaml:"max_concurrent"`
}

type Metadata struct {
	Backend string `yaml:"backend"`
}

type Workspace struct {
	TempDir string `yaml:"temp_dir"`
}

type Defaults struct {
	Lang string `yaml:"lang"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	tools := ocr.DefaultTools()
	return Config{
		Server: Server{
			Port:           "8080",
			Mode:           "debug",
			MaxUploadBytes: 100 << 20,
			CORSOrigins:    []string{"*"},
		},
		Tools: Tools{
			Tesseract: tools.Tesseract,
			OCRmyPDF:  tools.OCRmyPDF,
			PDFInfo:   tools.PDFInfo,
			Timeout:   ocr.DefaultTimeout,
		},
		Metadata: Metadata{Backend: BackendPDFInfo},
		Defaults: Defaults{Lang: ocr.DefaultLanguage},
		Log:      Log{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "parse config %s", path)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Server.Port)
	str("MODE", &cfg.Server.Mode)
	str("API_KEY", &cfg.Server.APIKey)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("OCR_TESSERACT", &cfg.Tools.Tesseract)
	str("OCR_OCRMYPDF", &cfg.Tools.OCRmyPDF)
	str("OCR_PDFINFO", &cfg.Tools.PDFInfo)
	str("OCR_METADATA_BACKEND", &cfg.Metadata.Backend)
	str("OCR_TEMP_DIR", &cfg.Workspace.TempDir)
	str("OCR_DEFAULT_LANG", &cfg.Defaults.Lang)

	if v, ok := lookup("OCR_CORS_ORIGINS"); ok && v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("OCR_TOOL_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return eris.Wrapf(err, "OCR_TOOL_TIMEOUT %q", v)
		}
		cfg.Tools.Timeout = d
	}
	if v, ok := lookup("OCR_MAX_CONCURRENT"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return eris.Wrapf(err, "OCR_MAX_CONCURRENT %q", v)
		}
		cfg.Tools.MaxConcurrent = n
	}
	if v, ok := lookup("OCR_MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return eris.Wrapf(err, "OCR_MAX_UPLOAD_BYTES %q", v)
		}
		cfg.Server.MaxUploadBytes = n
	}
	return nil
}

// Validate reports configuration the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return eris.New("server.port is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return eris.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Tools.Timeout < 0 {
		return eris.Errorf("tools.timeout must not be negative, got %s", c.Tools.Timeout)
	}
	if c.Tools.MaxConcurrent < 0 {
		return eris.Errorf("tools.max_concurrent must not be negative, got %d", c.Tools.MaxConcurrent)
	}
	switch c.Metadata.Backend {
	case BackendPDFInfo, BackendPDFCPU:
	default:
		return eris.Errorf("metadata.backend must be %q or %q, got %q", BackendPDFInfo, BackendPDFCPU, c.Metadata.Backend)
	}
	if c.Defaults.Lang == "" {
		return eris.New("defaults.lang is required")
	}
	return nil
}

// OCRTools converts the tool section for the ocr package.
func (c Config) OCRTools() ocr.Tools {
	return ocr.Tools{
		Tesseract: c.Tools.Tesseract,
		OCRmyPDF:  c.Tools.OCRmyPDF,
		PDFInfo:   c.Tools.PDFInfo,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

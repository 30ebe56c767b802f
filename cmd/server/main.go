package main

import (
	"flag"
	"os"

	"github.com/go-taken/ocr-gateway/internal/config"
	"github.com/go-taken/ocr-gateway/internal/logging"
	"github.com/go-taken/ocr-gateway/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("OCR_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logging.New("info", "json")
		log.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := server.Run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/timesheet-tools-mcp/internal/config"
	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
	"github.com/ironsheep/timesheet-tools-mcp/internal/ocr"
	"github.com/ironsheep/timesheet-tools-mcp/internal/pipeline"
	"github.com/ironsheep/timesheet-tools-mcp/internal/upload"
	"github.com/ironsheep/timesheet-tools-mcp/internal/web"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = "timesheet-web"
	}
	logger.Init(opts)
	log := logger.Get()

	cfg := config.Load()

	addr := flag.String("addr", cfg.HTTPAddr, "listen address")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("timesheet-web %s (tesseract %s)\n", Version, ocr.TesseractVersion())
		return
	}
	cfg.HTTPAddr = *addr

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	cleaner, err := imaging.NewCleaner(cfg.Cleaner, imaging.DefaultCleanOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("cleaner")
	}
	tess := ocr.NewTesseract(
		ocr.WithLanguage(cfg.Language),
		ocr.WithPageSegMode(cfg.PageSegMode),
		ocr.WithTessdata(cfg.Tessdata),
	)

	store, err := upload.NewStore(cfg.UploadDir, cfg.KeepUploads, cfg.UploadMaxBytes())
	if err != nil {
		log.Fatal().Err(err).Msg("upload store")
	}

	srv := web.NewServer(web.Options{
		Addr:           cfg.HTTPAddr,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.UploadMaxBytes(),
		Version:        Version,
		SlowRequest:    5 * time.Second,
	}, pipeline.New(cleaner, tess), store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", srv.Addr()).
		Str("upload_dir", store.Dir()).
		Str("cleaner", cfg.Cleaner).
		Str("language", tess.Language()).
		Msg("starting web server")

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

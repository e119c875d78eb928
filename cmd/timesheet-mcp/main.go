package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/timesheet-tools-mcp/internal/config"
	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
	"github.com/ironsheep/timesheet-tools-mcp/internal/ocr"
	"github.com/ironsheep/timesheet-tools-mcp/internal/pipeline"
	"github.com/ironsheep/timesheet-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("timesheet-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %s\n", ocr.TesseractVersion())
			return
		case "--help", "-h", "help":
			fmt.Println("timesheet-mcp - MCP server for timesheet extraction")
			fmt.Println()
			fmt.Println("Usage: timesheet-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  TIMESHEET_LANG=por+eng       Tesseract language spec")
			fmt.Println("  TIMESHEET_PSM=6              Tesseract page segmentation mode")
			fmt.Println("  TIMESHEET_TESSDATA=<dir>     Override the traineddata directory")
			fmt.Println("  TIMESHEET_CLEANER=go         Image cleaner backend")
			fmt.Println("  LOG_LEVEL=debug              Log level (logs go to stderr)")
			fmt.Println("  LOG_FORMAT=json              Log format: console or json")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = "timesheet-mcp"
	}
	logger.Init(opts)
	log := logger.Get()

	cfg := config.Load()
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

	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("cleaner", cfg.Cleaner).
		Str("language", tess.Language()).
		Msg("starting MCP server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Extractor: pipeline.New(cleaner, tess),
		Cleaner:   cleaner,
		OCR:       tess,
		Version:   Version,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

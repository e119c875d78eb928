// Package pipeline turns timesheet photos into day records: decode, clean,
// recognize, parse.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
	"github.com/ironsheep/timesheet-tools-mcp/internal/timesheet"
)

// ErrNoSource is returned when an extraction is started without an image.
var ErrNoSource = errors.New("no image source")

// Recognizer reads raw text from a cleaned image. Lines are separated by
// "\n". An empty language selects the recognizer's default.
type Recognizer interface {
	Recognize(img image.Image, language string) (string, error)
}

// Options adjusts a single extraction.
type Options struct {
	// Language overrides the recognizer's default language spec.
	Language string
	// Region restricts extraction to part of the source image.
	Region *imaging.Region
}

// Report is the outcome of one extraction. Records is never nil.
type Report struct {
	Records []timesheet.Record `json:"records"`

	// Text is the raw recognized text the records were parsed from.
	Text string `json:"text,omitempty"`

	// Width and Height are the cleaned image dimensions.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Summary timesheet.Summary `json:"summary"`

	// Warning explains an empty result caused by an unreadable image or a
	// recognizer failure.
	Warning string `json:"warning,omitempty"`
}

// Extractor runs the full pipeline. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	cleaner    imaging.Cleaner
	recognizer Recognizer
	parser     *timesheet.Parser
	log        *logger.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger replaces the default "pipeline" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// WithParser replaces the default parser, e.g. to use a custom
// substitution table.
func WithParser(p *timesheet.Parser) Option {
	return func(e *Extractor) { e.parser = p }
}

// New returns an Extractor cleaning with cleaner and reading text with
// recognizer.
func New(cleaner imaging.Cleaner, recognizer Recognizer, opts ...Option) *Extractor {
	e := &Extractor{
		cleaner:    cleaner,
		recognizer: recognizer,
		parser:     timesheet.NewParser(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("pipeline")
	}
	return e
}

// ExtractFile extracts records from the image at path. A missing or
// undecodable file yields an empty report, not an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string, opts Options) (*Report, error) {
	if path == "" {
		return nil, ErrNoSource
	}
	f, err := os.Open(path)
	if err != nil {
		e.logFor(ctx).Warn().Err(err).Str("path", path).Msg("cannot open image")
		return emptyReport(err), nil
	}
	defer f.Close()
	return e.Extract(ctx, f, opts)
}

// Extract decodes an image from r and extracts records from it. Decode
// failures yield an empty report, not an error.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	if r == nil {
		return nil, ErrNoSource
	}
	img, err := imaging.Decode(r)
	if err != nil {
		e.logFor(ctx).Warn().Err(err).Msg("cannot decode image")
		return emptyReport(err), nil
	}
	return e.ExtractImage(ctx, img, opts)
}

// ExtractImage extracts records from an already decoded image.
//
// Errors are returned only for problems with the request itself: a nil
// image, an invalid region or a cancelled context. Cleaning and
// recognition failures, panics included, are logged and produce an empty
// report.
func (e *Extractor) ExtractImage(ctx context.Context, img image.Image, opts Options) (*Report, error) {
	if img == nil {
		return nil, ErrNoSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Region != nil {
		cropped, err := imaging.Crop(img, *opts.Region)
		if err != nil {
			return nil, err
		}
		img = cropped
	}

	log := e.logFor(ctx)
	start := time.Now()

	var (
		cleaned *image.Gray
		text    string
	)
	err := safely(func() (err error) {
		if cleaned, err = e.cleaner.Clean(img); err != nil {
			return fmt.Errorf("cleaning failed: %w", err)
		}
		if text, err = e.recognizer.Recognize(cleaned, opts.Language); err != nil {
			return fmt.Errorf("recognition failed: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("extraction produced no text")
		return emptyReport(err), nil
	}

	log.Debug().Str("text", text).Msg("recognized text")

	records, sum := e.parser.Parse(text)
	b := cleaned.Bounds()
	log.Info().
		Int("records", sum.Records).
		Int("day_rows", sum.DayRows).
		Int("discarded", sum.Discarded).
		Dur("elapsed", time.Since(start)).
		Msg("extraction complete")

	return &Report{
		Records: records,
		Text:    text,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Summary: sum,
	}, nil
}

func (e *Extractor) logFor(ctx context.Context) *logger.Logger {
	id := logger.RequestID(ctx)
	if id == "" {
		return e.log
	}
	l := e.log.With().Str("request_id", id).Logger()
	return &l
}

func emptyReport(cause error) *Report {
	return &Report{Records: []timesheet.Record{}, Warning: cause.Error()}
}

// safely runs fn, converting a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/timesheet"
)

// fakeCleaner returns a white image of the input size and remembers it.
type fakeCleaner struct {
	mu   sync.Mutex
	seen image.Rectangle
	err  error
}

func (c *fakeCleaner) Clean(img image.Image) (*image.Gray, error) {
	c.mu.Lock()
	c.seen = img.Bounds()
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	b := img.Bounds()
	return image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy())), nil
}

// fakeRecognizer returns fixed text, an error or a panic.
type fakeRecognizer struct {
	text     string
	err      error
	panicMsg string

	mu       sync.Mutex
	language string
}

func (r *fakeRecognizer) Recognize(_ image.Image, language string) (string, error) {
	r.mu.Lock()
	r.language = language
	r.mu.Unlock()
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	return r.text, r.err
}

func quietLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func pngReader(t *testing.T, w, h int) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return &buf
}

func newTestExtractor(rec Recognizer) (*Extractor, *fakeCleaner) {
	c := &fakeCleaner{}
	return New(c, rec, WithLogger(quietLogger())), c
}

func TestExtract_RecordsFromText(t *testing.T) {
	rec := &fakeRecognizer{text: "1 Seg O8:17 11:32\n2 Ter 09:00\n  13:45\n"}
	e, _ := newTestExtractor(rec)

	report, err := e.Extract(context.Background(), pngReader(t, 40, 30), Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []timesheet.Record{
		{Day: 1, Weekday: "Seg", M1: "08:17", M2: "11:32"},
		{Day: 2, Weekday: "Ter", M1: "09:00", M2: "13:45"},
	}
	if len(report.Records) != len(want) {
		t.Fatalf("records: got %+v, want %+v", report.Records, want)
	}
	for i := range want {
		if report.Records[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, report.Records[i], want[i])
		}
	}
	if report.Width != 40 || report.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", report.Width, report.Height)
	}
	if report.Text != rec.text {
		t.Errorf("Text not carried through: %q", report.Text)
	}
	if report.Summary.DayRows != 2 || report.Warning != "" {
		t.Errorf("summary/warning: %+v %q", report.Summary, report.Warning)
	}
}

func TestExtract_EmptyOrGarbageText(t *testing.T) {
	for _, text := range []string{"", "@@ ## $$\n~~~", "\n\n\n"} {
		e, _ := newTestExtractor(&fakeRecognizer{text: text})
		report, err := e.Extract(context.Background(), pngReader(t, 10, 10), Options{})
		if err != nil {
			t.Fatalf("Extract(%q) failed: %v", text, err)
		}
		if report.Records == nil || len(report.Records) != 0 {
			t.Errorf("Extract(%q): got %#v, want empty non-nil", text, report.Records)
		}
	}
}

func TestExtract_UndecodableImage(t *testing.T) {
	rec := &fakeRecognizer{text: "1 Seg 08:00"}
	e, _ := newTestExtractor(rec)

	report, err := e.Extract(context.Background(), strings.NewReader("definitely not an image"), Options{})
	if err != nil {
		t.Fatalf("decode failure must not be returned: %v", err)
	}
	if report.Records == nil || len(report.Records) != 0 {
		t.Errorf("records: got %#v, want empty", report.Records)
	}
	if report.Warning == "" {
		t.Error("expected a warning for an undecodable image")
	}
}

func TestExtract_RecognizerFailures(t *testing.T) {
	tests := []struct {
		name string
		rec  *fakeRecognizer
	}{
		{"error", &fakeRecognizer{err: errors.New("tesseract exploded")}},
		{"panic", &fakeRecognizer{panicMsg: "nil pointer in engine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExtractor(tt.rec)
			report, err := e.Extract(context.Background(), pngReader(t, 10, 10), Options{})
			if err != nil {
				t.Fatalf("recognizer failure must not be returned: %v", err)
			}
			if len(report.Records) != 0 || report.Warning == "" {
				t.Errorf("got %+v, want empty report with warning", report)
			}
		})
	}
}

func TestExtract_CleanerFailure(t *testing.T) {
	c := &fakeCleaner{err: imaging.ErrEmptyImage}
	e := New(c, &fakeRecognizer{text: "1 Seg 08:00"}, WithLogger(quietLogger()))

	report, err := e.Extract(context.Background(), pngReader(t, 10, 10), Options{})
	if err != nil {
		t.Fatalf("cleaner failure must not be returned: %v", err)
	}
	if len(report.Records) != 0 || !strings.Contains(report.Warning, "cleaning failed") {
		t.Errorf("got %+v", report)
	}
}

func TestExtract_NoSource(t *testing.T) {
	e, _ := newTestExtractor(&fakeRecognizer{})
	ctx := context.Background()

	if _, err := e.Extract(ctx, nil, Options{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("Extract(nil) error = %v, want ErrNoSource", err)
	}
	if _, err := e.ExtractFile(ctx, "", Options{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("ExtractFile(\"\") error = %v, want ErrNoSource", err)
	}
	if _, err := e.ExtractImage(ctx, nil, Options{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("ExtractImage(nil) error = %v, want ErrNoSource", err)
	}
}

func TestExtractFile(t *testing.T) {
	e, _ := newTestExtractor(&fakeRecognizer{text: "5 Sex 08:00 12:00"})
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "sheet.png")
	data, _ := io.ReadAll(pngReader(t, 20, 20))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	report, err := e.ExtractFile(ctx, path, Options{})
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if len(report.Records) != 1 || report.Records[0].Day != 5 {
		t.Errorf("records: %+v", report.Records)
	}

	missing, err := e.ExtractFile(ctx, filepath.Join(t.TempDir(), "nope.png"), Options{})
	if err != nil {
		t.Fatalf("missing file must not be returned as error: %v", err)
	}
	if len(missing.Records) != 0 || missing.Warning == "" {
		t.Errorf("missing file: %+v", missing)
	}
}

func TestExtractImage_RegionAndLanguage(t *testing.T) {
	rec := &fakeRecognizer{text: "7 Dom"}
	e, c := newTestExtractor(rec)

	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	region := &imaging.Region{X1: 10, Y1: 20, X2: 60, Y2: 50}

	if _, err := e.ExtractImage(context.Background(), img, Options{Language: "eng", Region: region}); err != nil {
		t.Fatalf("ExtractImage failed: %v", err)
	}
	if c.seen.Dx() != 50 || c.seen.Dy() != 30 {
		t.Errorf("cleaner saw %v, want a 50x30 crop", c.seen)
	}
	if rec.language != "eng" {
		t.Errorf("language: got %q, want eng", rec.language)
	}

	bad := &imaging.Region{X1: 10, Y1: 10, X2: 500, Y2: 20}
	if _, err := e.ExtractImage(context.Background(), img, Options{Region: bad}); err == nil {
		t.Error("invalid region should be returned as an error")
	}
}

func TestExtractImage_CancelledContext(t *testing.T) {
	e, _ := newTestExtractor(&fakeRecognizer{text: "1 Seg 08:00"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ExtractImage(ctx, image.NewGray(image.Rect(0, 0, 5, 5)), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExtractImage_WithGoCleaner(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}

	e := New(imaging.NewGoCleaner(imaging.DefaultCleanOptions()), &fakeRecognizer{text: "9 Qui 08:00"}, WithLogger(quietLogger()))
	report, err := e.ExtractImage(context.Background(), img, Options{})
	if err != nil {
		t.Fatalf("ExtractImage failed: %v", err)
	}
	if report.Width != 120 || report.Height != 80 {
		t.Errorf("cleaned dimensions: got %dx%d, want 120x80", report.Width, report.Height)
	}
	if len(report.Records) != 1 {
		t.Errorf("records: %+v", report.Records)
	}
}

func TestExtractor_Concurrent(t *testing.T) {
	e, _ := newTestExtractor(&fakeRecognizer{text: "3 Qua 08:00\n3 Qua 08:00 12:00 13:00 17:00"})

	var wg sync.WaitGroup
	errs := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := e.ExtractImage(context.Background(), image.NewGray(image.Rect(0, 0, 8, 8)), Options{})
			if err != nil {
				errs <- err.Error()
				return
			}
			if len(report.Records) != 1 || report.Records[0].M4 != "17:00" {
				errs <- "unexpected records"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

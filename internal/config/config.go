// Package config handles application configuration via environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
)

// Conf is a namespaced view over environment variables (e.g. "TIMESHEET_").
// Use New() for global access, or Prefix for module scopes.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(c.key(key)))
}

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayCSV returns the non-empty comma-separated entries of key; def if none
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value if it is one of allowed (case-insensitive),
// def if missing/empty; logs and returns def otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(v)
		}
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Str("default", def).
		Msg("invalid enum value; using default")
	return def
}

// Settings is the resolved configuration shared by both binaries.
type Settings struct {
	// Language is the Tesseract language spec, e.g. "por+eng".
	Language string `validate:"required"`
	// Tessdata optionally overrides the traineddata directory.
	Tessdata string
	// PageSegMode is the Tesseract page segmentation mode (0-13).
	PageSegMode int `validate:"min=0,max=13"`
	// Cleaner names the image cleaning backend.
	Cleaner string `validate:"required"`

	HTTPAddr    string   `validate:"required"`
	UploadDir   string   `validate:"required"`
	UploadMaxMB int      `validate:"min=1,max=1024"`
	KeepUploads bool
	CORSOrigins []string `validate:"dive,required"`
}

// Defaults for Settings.
const (
	DefaultLanguage    = "por+eng"
	DefaultPageSegMode = 6
	DefaultCleaner     = imaging.BackendGo
	DefaultHTTPAddr    = ":5001"
	DefaultUploadDir   = "uploads"
	DefaultUploadMaxMB = 16
)

// Load reads Settings from TIMESHEET_* environment variables. A cleaner
// backend not compiled into this binary falls back to the pure-Go one.
func Load() Settings {
	c := New().Prefix("TIMESHEET_")
	return Settings{
		Language:    c.MayString("LANG", DefaultLanguage),
		Tessdata:    c.MayString("TESSDATA", ""),
		PageSegMode: c.MayInt("PSM", DefaultPageSegMode),
		Cleaner:     c.MayEnum("CLEANER", DefaultCleaner, imaging.Backends()...),
		HTTPAddr:    c.MayString("HTTP_ADDR", DefaultHTTPAddr),
		UploadDir:   c.MayString("UPLOAD_DIR", DefaultUploadDir),
		UploadMaxMB: c.MayInt("UPLOAD_MAX_MB", DefaultUploadMaxMB),
		KeepUploads: c.MayBool("KEEP_UPLOADS", true),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", []string{"*"}),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field, if any.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// UploadMaxBytes returns UploadMaxMB in bytes.
func (s Settings) UploadMaxBytes() int64 {
	return int64(s.UploadMaxMB) << 20
}

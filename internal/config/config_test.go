package config

import (
	"slices"
	"testing"
)

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestPrefixAndKey(t *testing.T) {
	c := New().Prefix("TIMESHEET_")
	if got := c.key("LANG"); got != "TIMESHEET_LANG" {
		t.Fatalf("key() = %q, want TIMESHEET_LANG", got)
	}
	if got := c.Prefix("HTTP_").key("ADDR"); got != "TIMESHEET_HTTP_ADDR" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  timesheet ")
	if got := c.MustString("NAME"); got != "timesheet" {
		t.Fatalf("MustString = %q", got)
	}
	mustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d", got)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if !c.MayBool("MISSING", true) {
		t.Fatal("MayBool default true expected")
	}
	t.Setenv("B_F", "false")
	if c.MayBool("F", true) {
		t.Fatal("MayBool false expected")
	}
	t.Setenv("B_BAD", "nope")
	if !c.MayBool("BAD", true) {
		t.Fatal("MayBool bad -> default expected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	if got := c.MayCSV("MISS", []string{"*"}); !slices.Equal(got, []string{"*"}) {
		t.Fatalf("MayCSV default = %v", got)
	}
	t.Setenv("CSV_VALS", " http://a, http://b , ,")
	if got := c.MayCSV("VALS", nil); !slices.Equal(got, []string{"http://a", "http://b"}) {
		t.Fatalf("MayCSV = %v", got)
	}
	t.Setenv("CSV_EMPTY", " , ,")
	if got := c.MayCSV("EMPTY", []string{"d"}); !slices.Equal(got, []string{"d"}) {
		t.Fatalf("MayCSV all-empty = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "go", "go", "opencv"); got != "go" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_OK", "OpenCV")
	if got := c.MayEnum("OK", "go", "go", "opencv"); got != "opencv" {
		t.Fatalf("MayEnum allowed = %q", got)
	}
	t.Setenv("E_BAD", "magick")
	if got := c.MayEnum("BAD", "go", "go", "opencv"); got != "go" {
		t.Fatalf("MayEnum bad -> default = %q", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"LANG", "TESSDATA", "PSM", "CLEANER", "HTTP_ADDR", "UPLOAD_DIR", "UPLOAD_MAX_MB", "KEEP_UPLOADS", "CORS_ORIGINS"} {
		t.Setenv("TIMESHEET_"+k, "")
	}

	s := Load()
	if s.Language != "por+eng" || s.PageSegMode != 6 || s.Cleaner != "go" {
		t.Errorf("ocr defaults: %+v", s)
	}
	if s.HTTPAddr != ":5001" || s.UploadDir != "uploads" || s.UploadMaxMB != 16 || !s.KeepUploads {
		t.Errorf("http defaults: %+v", s)
	}
	if !slices.Equal(s.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins: %v", s.CORSOrigins)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if s.UploadMaxBytes() != 16<<20 {
		t.Errorf("UploadMaxBytes = %d", s.UploadMaxBytes())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIMESHEET_LANG", "eng")
	t.Setenv("TIMESHEET_PSM", "4")
	t.Setenv("TIMESHEET_CLEANER", "GO")
	t.Setenv("TIMESHEET_HTTP_ADDR", "127.0.0.1:8080")
	t.Setenv("TIMESHEET_KEEP_UPLOADS", "false")
	t.Setenv("TIMESHEET_CORS_ORIGINS", "https://a.example,https://b.example")

	s := Load()
	if s.Language != "eng" || s.PageSegMode != 4 || s.Cleaner != "go" {
		t.Errorf("ocr overrides: %+v", s)
	}
	if s.HTTPAddr != "127.0.0.1:8080" || s.KeepUploads {
		t.Errorf("http overrides: %+v", s)
	}
	if len(s.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins: %v", s.CORSOrigins)
	}
}

func TestLoad_UnknownCleanerFallsBack(t *testing.T) {
	t.Setenv("TIMESHEET_CLEANER", "imagemagick")
	if got := Load().Cleaner; got != "go" {
		t.Errorf("Cleaner = %q, want go", got)
	}
}

func TestSettings_Validate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			Language:    "por+eng",
			PageSegMode: 6,
			Cleaner:     "go",
			HTTPAddr:    ":5001",
			UploadDir:   "uploads",
			UploadMaxMB: 16,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"psm too high", func(s *Settings) { s.PageSegMode = 14 }},
		{"psm negative", func(s *Settings) { s.PageSegMode = -1 }},
		{"no language", func(s *Settings) { s.Language = "" }},
		{"zero upload size", func(s *Settings) { s.UploadMaxMB = 0 }},
		{"empty cors origin", func(s *Settings) { s.CORSOrigins = []string{""} }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

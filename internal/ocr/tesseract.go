package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage covers Portuguese weekday abbreviations and English ones.
const DefaultLanguage = "por+eng"

// DefaultPageSegMode treats the page as a single uniform block of text,
// which keeps each table row on one output line.
const DefaultPageSegMode = gosseract.PSM_SINGLE_BLOCK

// Tesseract recognizes text in images through the Tesseract engine.
//
// A new gosseract client is created for every call, so a Tesseract value
// is safe for concurrent use. The LSTM engine is always used (Tesseract's
// default OCR engine mode).
type Tesseract struct {
	language    string
	pageSegMode gosseract.PageSegMode
	tessdata    string
}

// Option configures a Tesseract.
type Option func(*Tesseract)

// WithLanguage sets the default language spec, e.g. "por+eng".
func WithLanguage(language string) Option {
	return func(t *Tesseract) {
		if language != "" {
			t.language = language
		}
	}
}

// WithPageSegMode sets the Tesseract page segmentation mode.
func WithPageSegMode(mode int) Option {
	return func(t *Tesseract) {
		t.pageSegMode = gosseract.PageSegMode(mode)
	}
}

// WithTessdata points Tesseract at a directory holding *.traineddata files.
// Empty keeps the system default (TESSDATA_PREFIX or the install location).
func WithTessdata(dir string) Option {
	return func(t *Tesseract) {
		t.tessdata = dir
	}
}

// NewTesseract returns a recognizer using DefaultLanguage and
// DefaultPageSegMode unless overridden.
func NewTesseract(opts ...Option) *Tesseract {
	t := &Tesseract{
		language:    DefaultLanguage,
		pageSegMode: DefaultPageSegMode,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Language returns the default language spec.
func (t *Tesseract) Language() string {
	return t.language
}

// Recognize returns the raw text Tesseract reads from img, lines separated
// by "\n". An empty language selects the recognizer's default.
func (t *Tesseract) Recognize(img image.Image, language string) (string, error) {
	if language == "" {
		language = t.language
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := t.configure(client, language); err != nil {
		return "", err
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

func (t *Tesseract) configure(client *gosseract.Client, language string) error {
	if t.tessdata != "" {
		if err := client.SetTessdataPrefix(t.tessdata); err != nil {
			return fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(SplitLanguages(language)...); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(t.pageSegMode); err != nil {
		return fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return nil
}

// SplitLanguages turns a Tesseract language spec such as "por+eng" into
// its components, dropping empty entries.
func SplitLanguages(spec string) []string {
	var langs []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// TesseractVersion returns the installed Tesseract version.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available    bool   `json:"available"`
	Version      string `json:"version,omitempty"`
	Backend      string `json:"backend"`
	Language     string `json:"language"`
	PageSegMode  int    `json:"page_seg_mode"`
	TessdataPath string `json:"tessdata_path,omitempty"`
}

// Info reports the engine version and the recognizer's configuration.
func (t *Tesseract) Info() OCRInfo {
	version := TesseractVersion()
	return OCRInfo{
		Available:    version != "",
		Version:      version,
		Backend:      "gosseract",
		Language:     t.language,
		PageSegMode:  int(t.pageSegMode),
		TessdataPath: t.tessdata,
	}
}

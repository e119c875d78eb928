// Package ocr reads text from cleaned timesheet images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). The
// default configuration recognizes Portuguese and English ("por+eng") and
// treats the page as a single block of text, so each table row comes back
// as one line.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-por
//   - macOS: brew install tesseract tesseract-lang
//
// A custom training data directory can be selected with WithTessdata.
//
// # Language Specs
//
// Languages are given as Tesseract does on its command line, joined with
// "+". SplitLanguages breaks such a spec into the list gosseract expects.
package ocr

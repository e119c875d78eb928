// Package imaging prepares photographed or scanned timesheet tables for text
// recognition.
//
// The central type is Cleaner, which turns a raw photo into a binary image
// with black text on white and the table gridlines removed. Recognizers
// read digits far more reliably from that output than from the original,
// where ruled lines touch the digits and shadows cross the page.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based, with (0,0) at the
// top-left corner. For regions, (x1,y1) is inclusive and (x2,y2) is
// exclusive. Images produced by this package always have their origin at
// (0,0).
//
// # Backends
//
// The pure-Go backend ("go") is always available. Building with
// -tags opencv adds an "opencv" backend that runs the same steps through
// gocv. Select one with NewCleaner; both share CleanOptions.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cleaners hold no mutable state and
// can be shared between goroutines.
//
// # Error Handling
//
// Decoding problems are reported as errors wrapping ErrDecode so callers
// can tell unreadable uploads apart from other failures. Invalid crop
// regions and encoding failures return descriptive errors.
package imaging

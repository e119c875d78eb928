// Package server implements the MCP (Model Context Protocol) server for
// timesheet extraction.
//
// The server speaks JSON-RPC 2.0 over stdio so that Claude and other
// MCP-compatible clients can turn photographed or scanned attendance sheets
// into day records.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Extraction:
//   - timesheet_extract: Clean, recognize and parse an image into day records
//   - timesheet_parse_text: Parse already-recognized text into day records
//
// Image Preparation:
//   - timesheet_clean_image: Return the cleaned binary image the recognizer sees
//   - timesheet_inspect: Report paper color, contrast and extraction warnings
//
// Diagnostics:
//   - ocr_info: Report the Tesseract version and recognizer configuration
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls. The cache
// persists for the lifetime of the server process.
//
// # Error Handling
//
// Argument problems are returned as code -32602. Other tool failures use
// code -32000 with the Go error string in data. An image that exists but
// cannot be decoded is not a failure for timesheet_extract: it yields an
// empty record list with a warning.
//
// # Usage
//
//	srv := server.New(server.Config{
//	    Extractor: pipeline.New(cleaner, tess),
//	    Cleaner:   cleaner,
//	    OCR:       tess,
//	    Version:   version,
//	})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

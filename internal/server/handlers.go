package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/ocr"
	"github.com/ironsheep/timesheet-tools-mcp/internal/pipeline"
	"github.com/ironsheep/timesheet-tools-mcp/internal/timesheet"
)

// errInvalidArgs marks argument problems, reported as JSON-RPC -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "timesheet_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Invalid arguments return code -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "timesheet_extract":
		return s.handleTimesheetExtract(ctx, args)
	case "timesheet_parse_text":
		return s.handleTimesheetParseText(args)
	case "timesheet_clean_image":
		return s.handleTimesheetCleanImage(args)
	case "timesheet_inspect":
		return s.handleTimesheetInspect(args)
	case "ocr_info":
		return s.handleOCRInfo()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals and validates tool arguments. Missing arguments
// are treated as an empty object.
func (s *Server) decodeArgs(args json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

type regionArgs struct {
	X1 int `json:"x1" validate:"gte=0"`
	Y1 int `json:"y1" validate:"gte=0"`
	X2 int `json:"x2" validate:"gtfield=X1"`
	Y2 int `json:"y2" validate:"gtfield=Y1"`
}

func (r *regionArgs) region() *imaging.Region {
	if r == nil {
		return nil
	}
	return &imaging.Region{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

// === Extraction Handlers ===

type timesheetExtractArgs struct {
	Path        string      `json:"path" validate:"required"`
	Language    string      `json:"language" validate:"omitempty,max=64"`
	Region      *regionArgs `json:"region"`
	IncludeText bool        `json:"include_text"`
	Reload      bool        `json:"reload"`
}

func (s *Server) handleTimesheetExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a timesheetExtractArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, errors.New("extraction is not configured")
	}

	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil && !errors.Is(err, imaging.ErrDecode) {
		return nil, err
	}
	if err != nil {
		// an unreadable image is an empty result, not a tool failure
		return &pipeline.Report{Records: []timesheet.Record{}, Warning: err.Error()}, nil
	}

	report, err := s.extractor.ExtractImage(ctx, img, pipeline.Options{
		Language: a.Language,
		Region:   a.Region.region(),
	})
	if err != nil {
		return nil, err
	}
	if !a.IncludeText {
		report.Text = ""
	}
	return report, nil
}

type timesheetParseTextArgs struct {
	Text string `json:"text"`
}

type parseTextResult struct {
	Records []timesheet.Record `json:"records"`
	Summary timesheet.Summary  `json:"summary"`
}

func (s *Server) handleTimesheetParseText(args json.RawMessage) (interface{}, error) {
	var a timesheetParseTextArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	records, sum := timesheet.NewParser(nil).Parse(a.Text)
	return &parseTextResult{Records: records, Summary: sum}, nil
}

// === Image Preparation Handlers ===

type timesheetCleanImageArgs struct {
	Path   string      `json:"path" validate:"required"`
	Region *regionArgs `json:"region"`
}

func (s *Server) handleTimesheetCleanImage(args json.RawMessage) (interface{}, error) {
	var a timesheetCleanImageArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.cleaner == nil {
		return nil, errors.New("image cleaning is not configured")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if r := a.Region.region(); r != nil {
		if img, err = imaging.Crop(img, *r); err != nil {
			return nil, err
		}
	}

	cleaned, err := s.cleaner.Clean(img)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(cleaned)
}

type timesheetInspectArgs struct {
	Path string `json:"path" validate:"required"`
}

type inspectResult struct {
	Path string `json:"path"`
	imaging.FileInfo
	*imaging.Inspection
}

func (s *Server) handleTimesheetInspect(args json.RawMessage) (interface{}, error) {
	var a timesheetInspectArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	info, err := imaging.StatImageFile(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return &inspectResult{Path: a.Path, FileInfo: *info, Inspection: imaging.Inspect(img)}, nil
}

// === Diagnostics ===

type ocrInfoResult struct {
	ocr.OCRInfo
	Cleaners []string `json:"cleaners"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	res := &ocrInfoResult{Cleaners: imaging.Backends()}
	if s.ocr != nil {
		res.OCRInfo = s.ocr.Info()
	}
	return res, nil
}

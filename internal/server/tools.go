package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the timesheet image (PNG, JPEG, TIFF, BMP, GIF or WebP)",
	}
}

func regionProperty() map[string]interface{} {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "minimum": 0, "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional rectangle to process instead of the whole image, e.g. just the table body",
		"properties": map[string]interface{}{
			"x1": coord("Left edge X coordinate (0-based)"),
			"y1": coord("Top edge Y coordinate (0-based)"),
			"x2": coord("Right edge X coordinate (exclusive)"),
			"y2": coord("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Extraction
		{
			Name: "timesheet_extract",
			Description: "Read a photographed or scanned attendance table and return one record per day: " +
				"day number, weekday label and up to four clock times (m1..m4, HH:MM, ascending). " +
				"The image is cleaned (gridlines removed), recognized with Tesseract and reconciled line by line.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language spec. Default from server configuration (por+eng)",
					},
					"region": regionProperty(),
					"include_text": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the raw recognized text. Default false",
						"default":     false,
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-read the file even if it was loaded before, e.g. after a new photo was saved to the same path",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "timesheet_parse_text",
			Description: "Turn already-recognized timesheet text (one table row per line) into day records, " +
				"applying the same character correction, duplicate-day merge and time validation as timesheet_extract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized text, lines separated by newlines",
					},
				},
				"required": []string{"text"},
			},
		},

		// Image preparation
		{
			Name: "timesheet_clean_image",
			Description: "Return the cleaned binary image the recognizer sees, as base64-encoded PNG. " +
				"Use this to check whether gridlines were removed and digits survived.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "timesheet_inspect",
			Description: "Report image size, format, paper color, lightness and contrast, with warnings for conditions that hurt extraction.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Diagnostics
		{
			Name:        "ocr_info",
			Description: "Report the Tesseract version, configured language and page segmentation mode, and the available cleaner backends.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

package web

import (
	"errors"
	"net/http"

	"github.com/ironsheep/timesheet-tools-mcp/internal/imaging"
	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
	"github.com/ironsheep/timesheet-tools-mcp/internal/pipeline"
	"github.com/ironsheep/timesheet-tools-mcp/internal/timesheet"
	"github.com/ironsheep/timesheet-tools-mcp/internal/upload"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type indexResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
	Cleaners  []string `json:"cleaners"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Service:   "timesheet-tools",
		Version:   s.opts.Version,
		Endpoints: []string{"GET /", "GET /healthz", "POST /upload"},
		Cleaners:  imaging.Backends(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	Success bool               `json:"success"`
	Data    []timesheet.Record `json:"data"`
	Warning string             `json:"warning,omitempty"`
}

// handleUpload accepts a multipart form with the image in field "file" and
// an optional "language" field, and responds with the extracted records.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.C(r.Context())

	if s.opts.MaxUploadBytes > 0 {
		// leave room for multipart framing and the other fields
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		// a part named "file" without a filename is what browsers send when
		// no file was chosen
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	header := files[0]
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Error().Err(err).Msg("cannot open multipart file")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	path, err := s.store.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		log.Error().Err(err).Msg("cannot store upload")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() {
		if err := s.store.Discard(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("cannot remove upload")
		}
	}()

	log.Info().Str("file", header.Filename).Int64("size", header.Size).Str("path", path).Msg("upload stored")

	report, err := s.extractor.ExtractFile(r.Context(), path, pipeline.Options{
		Language: r.FormValue("language"),
	})
	if err != nil {
		log.Error().Err(err).Msg("extraction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		Data:    report.Records,
		Warning: report.Warning,
	})
}

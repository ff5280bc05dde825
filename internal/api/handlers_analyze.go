package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/cohere/internal/analysis"
	"github.com/dgallion1/cohere/internal/parser"
	"github.com/dgallion1/cohere/internal/pipeline"
)

const maxBatchFiles = 10

type submitted struct {
	Filename string             `json:"filename"`
	JobID    string             `json:"job_id,omitempty"`
	Status   pipeline.JobStatus `json:"status,omitempty"`
	PollURL  string             `json:"poll_url,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// formOptions reads the mode and force fields shared by single and batch uploads.
func formOptions(r *http.Request) (string, bool, error) {
	mode, err := analysis.ParseMode(r.FormValue("mode"))
	if err != nil {
		return "", false, err
	}
	force := false
	if v := r.FormValue("force"); v != "" {
		force, err = strconv.ParseBool(v)
		if err != nil {
			return "", false, fmt.Errorf("invalid force value %q", v)
		}
	}
	return string(mode), force, nil
}

// readUpload validates the filename and reads at most MaxUploadBytes of the file.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	f, err := fh.Open()
	if err != nil {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	if len(data) == 0 {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("file is empty")
	}
	return filename, data, http.StatusOK, nil
}

func (s *Server) submit(filename, mode string, force bool, data []byte) (submitted, error) {
	job, err := pipeline.NewJob(filename, mode, force, data)
	if err != nil {
		return submitted{Filename: filename}, err
	}
	if err := s.orchestrator.Submit(job); err != nil {
		return submitted{Filename: filename, JobID: job.ID}, err
	}
	return submitted{
		Filename: filename,
		JobID:    job.ID,
		Status:   pipeline.StatusQueued,
		PollURL:  fmt.Sprintf("/api/analyze/%s/status", job.ID),
	}, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for multipart overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	mode, force, err := formOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}

	filename, data, code, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	res, err := s.submit(filename, mode, force, data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxBatchFiles+10<<20)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	mode, force, err := formOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("at most %d files per batch", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]submitted, 0, len(files))
	for _, fh := range files {
		filename, data, _, err := s.readUpload(fh)
		if err != nil {
			results = append(results, submitted{Filename: filename, Error: err.Error()})
			continue
		}
		res, err := s.submit(filename, mode, force, data)
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	body := map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"mode":     snap.Mode,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	if snap.ReportID != "" {
		body["report_id"] = snap.ReportID
		body["report_url"] = "/api/reports/" + snap.ReportID
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" || name == "_" {
		name = "unnamed"
	}
	return name
}

package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusSegmenting JobStatus = "segmenting"
	StatusScoring    JobStatus = "scoring"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDuplicate  JobStatus = "duplicate"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusDuplicate
}

// Job tracks the state of a single document analysis.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Mode     string    `json:"mode"`
	Force    bool      `json:"force"`

	Progress Progress `json:"progress"`

	ReportID    string    `json:"report_id,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages  int      `json:"pages"`
	Units  int      `json:"units"`
	Scored int      `json:"scored"`
	Errors []string `json:"errors"`
}

// NewJob creates a queued job with a time-ordered id.
func NewJob(filename, mode string, force bool, data []byte) (*Job, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	now := time.Now()
	return &Job{
		ID:        id.String(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Mode:      mode,
		Force:     force,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}, nil
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetPages records the extracted page count.
func (j *Job) SetPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = n
	j.UpdatedAt = time.Now()
}

// SetUnits records how many units segmentation produced.
func (j *Job) SetUnits(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Units = n
	j.UpdatedAt = time.Now()
}

// SetScored records how many units have been scored.
func (j *Job) SetScored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Scored = n
	j.UpdatedAt = time.Now()
}

// Complete marks the job done with the report it produced.
func (j *Job) Complete(status JobStatus, reportID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = "done"
	j.ReportID = reportID
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash used for dedup.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Mode     string    `json:"mode"`
	ReportID string    `json:"report_id,omitempty"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Mode:     j.Mode,
		ReportID: j.ReportID,
		Progress: Progress{
			Pages:  j.Progress.Pages,
			Units:  j.Progress.Units,
			Scored: j.Progress.Scored,
			Errors: errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

package domain

import "time"

type UploadResult struct {
	Path     string `json:"path" yaml:"path"`
	Name     string `json:"name" yaml:"name"`
	RemoteID string `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	MimeType string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r UploadResult) OK() bool {
	return r.Error == ""
}

type DocumentFailure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// RunReport is the in-memory outcome of one batch run.
type RunReport struct {
	RunID               string            `json:"run_id" yaml:"run_id"`
	Directory           string            `json:"directory" yaml:"directory"`
	Total               int               `json:"total" yaml:"total"`
	ExtractFailures     []DocumentFailure `json:"extract_failures,omitempty" yaml:"extract_failures,omitempty"`
	Sorted              []string          `json:"sorted" yaml:"sorted"`
	Query               string            `json:"query" yaml:"query"`
	Matches             []string          `json:"matches" yaml:"matches"`
	Classification      *Classification   `json:"classification,omitempty" yaml:"classification,omitempty"`
	ClassificationError string            `json:"classification_error,omitempty" yaml:"classification_error,omitempty"`
	Uploads             []UploadResult    `json:"uploads,omitempty" yaml:"uploads,omitempty"`
	StartedAt           time.Time         `json:"started_at" yaml:"started_at"`
	Elapsed             time.Duration     `json:"elapsed" yaml:"elapsed"`
}

type UploadEvent struct {
	RunID      string    `json:"run_id"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	RemoteID   string    `json:"remote_id"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

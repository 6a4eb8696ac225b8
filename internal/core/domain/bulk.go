package domain

import "time"

// BulkReport is returned as soon as a bulk generation batch is scheduled.
type BulkReport struct {
	BatchID   string `json:"batch_id" yaml:"batch_id"`
	ProjectID int64  `json:"project_id" yaml:"project_id"`
	Scheduled int    `json:"tasks_scheduled" yaml:"tasks_scheduled"`
}

// PageTaskResult is the outcome of generating one page inside a batch.
type PageTaskResult struct {
	PageNumber int        `json:"page_number" yaml:"page_number"`
	Source     FormSource `json:"source,omitempty" yaml:"source,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the task finished without error.
func (r PageTaskResult) Succeeded() bool {
	return r.Error == ""
}

// BulkStatus is a point-in-time view of a batch.
type BulkStatus struct {
	BatchID    string           `json:"batch_id" yaml:"batch_id"`
	ProjectID  int64            `json:"project_id" yaml:"project_id"`
	Scheduled  int              `json:"tasks_scheduled" yaml:"tasks_scheduled"`
	Completed  int              `json:"completed" yaml:"completed"`
	Succeeded  int              `json:"succeeded" yaml:"succeeded"`
	Failed     int              `json:"failed" yaml:"failed"`
	Results    []PageTaskResult `json:"results" yaml:"results"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Done reports whether every scheduled task has completed.
func (s BulkStatus) Done() bool {
	return s.Completed >= s.Scheduled
}

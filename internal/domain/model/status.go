package model

import (
	"strings"
)

// OverdueJob is a scheduled check whose next run time already passed.
type OverdueJob struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	OverdueBySeconds float64 `json:"overdue_by_seconds"`
}

// SystemStatus is the GET /api/system-status snapshot.
type SystemStatus struct {
	SchedulerStatus     string       `json:"scheduler_status"`
	ActiveScheduledJobs *int         `json:"active_scheduled_jobs"`
	CurrentTimeUTC      *Timestamp   `json:"current_time_utc"`
	CurrentTimeLocal    *Timestamp   `json:"current_time_local"`
	AppVersion          string       `json:"app_version"`
	OverdueJobsCount    int          `json:"overdue_jobs_count"`
	OverdueJobs         []OverdueJob `json:"overdue_jobs"`
	JobIDs              []string     `json:"job_ids,omitempty"`
	LastGlobalError     *string      `json:"last_global_error,omitempty"`
}

// IsRunning reports whether the scheduler reports itself as running.
func (s *SystemStatus) IsRunning() bool {
	return strings.EqualFold(strings.TrimSpace(s.SchedulerStatus), "running")
}

// HasOverdue reports whether any job is overdue.
func (s *SystemStatus) HasOverdue() bool {
	return s.OverdueJobsCount > 0 || len(s.OverdueJobs) > 0
}

// DiagnosticJob is one scheduler job in the diagnostics report.
type DiagnosticJob struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	NextRunUTC   *Timestamp `json:"next_run_utc"`
	NextRunLocal *Timestamp `json:"next_run_local"`
	IsOverdue    bool       `json:"is_overdue"`

	// Older backends only send these.
	NextRunTime *Timestamp `json:"next_run_time,omitempty"`
	Trigger     string     `json:"trigger,omitempty"`
	Interval    *int       `json:"interval,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// NextRun returns the best available next run time.
func (j *DiagnosticJob) NextRun() *Timestamp {
	switch {
	case j.NextRunUTC != nil:
		return j.NextRunUTC
	case j.NextRunTime != nil:
		return j.NextRunTime
	default:
		return j.NextRunLocal
	}
}

// SchedulerDiagnostics is the GET /api/scheduler-diagnostics report.
type SchedulerDiagnostics struct {
	Status           string          `json:"status"`
	JobsCount        *int            `json:"jobs_count"`
	TotalJobs        *int            `json:"total_jobs,omitempty"`
	CurrentTimeUTC   *Timestamp      `json:"current_time_utc"`
	CurrentTimeLocal *Timestamp      `json:"current_time_local"`
	Jobs             []DiagnosticJob `json:"jobs"`
}

// JobCount prefers jobs_count, then total_jobs, then the list length.
func (d *SchedulerDiagnostics) JobCount() int {
	switch {
	case d.JobsCount != nil:
		return *d.JobsCount
	case d.TotalJobs != nil:
		return *d.TotalJobs
	default:
		return len(d.Jobs)
	}
}

// OverdueCount counts jobs flagged overdue.
func (d *SchedulerDiagnostics) OverdueCount() int {
	n := 0
	for i := range d.Jobs {
		if d.Jobs[i].IsOverdue {
			n++
		}
	}
	return n
}

// ForceCheckResult is the free-form reply of POST /api/scheduler-force-check.
type ForceCheckResult map[string]any

// Message returns the "message" entry when the backend sent one.
func (r ForceCheckResult) Message() string {
	if s, ok := r["message"].(string); ok {
		return s
	}
	return ""
}

// ManualCheckResult is the reply of POST /api/checks/{id}/manual-check.
type ManualCheckResult struct {
	Status        LastResult `json:"status"`
	ExtractedText *string    `json:"extracted_text"`
	ErrorMessage  *string    `json:"error_message"`
	Timestamp     *Timestamp `json:"timestamp"`
}

// ToggleResult is the reply of POST /api/checks/{id}/toggle-status.
type ToggleResult struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// DeleteResult is the reply of DELETE /api/checks/{id}.
type DeleteResult struct {
	Message          string `json:"message"`
	DeletedCheckName string `json:"deleted_check_name"`
}

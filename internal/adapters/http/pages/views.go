package pages

import (
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/okian/pagewatch/internal/domain/model"
)

const timeLayout = "2006-01-02 15:04:05"

// PanelState is the outcome of one section's load: an error or data.
type PanelState[T any] struct {
	Err  *ErrorView
	Data T
}

// ErrorView is an inline error with an optional recovery link.
type ErrorView struct {
	Message   string
	RetryURL  string
	RetryText string
}

// NoticeView is a one-line banner.
type NoticeView struct {
	Kind    string // success, error or info
	Message string
}

type layoutView struct {
	Title  string
	Lang   string
	Notice *NoticeView
	// Refresh, when set, sends the browser to RefreshURL after RefreshSeconds.
	RefreshURL     string
	RefreshSeconds int
}

// RefreshContent is the meta refresh value.
func (l layoutView) RefreshContent() string {
	return strconv.Itoa(l.RefreshSeconds) + "; url=" + l.RefreshURL
}

// CheckItemView is one row of the check list.
type CheckItemView struct {
	ID          string
	Href        string
	Name        string
	URL         string
	URLText     string
	BadgeClass  string
	BadgeLabel  string
	Preview     string
	LastChecked string
	LastAgo     string
	NextCheck   string
	Interval    string
	Paused      bool
}

// CheckListView is the body of #checksContainer.
type CheckListView struct {
	PanelState[[]CheckItemView]
	Superseded bool
}

// OverdueView is one overdue job in the status warning.
type OverdueView struct {
	Name    string
	Seconds int64
	Human   string
	Text    string
}

// StatusView is the body of #statusContent.
type StatusView struct {
	Running      bool
	Scheduler    string
	ActiveJobs   string
	TimeUTC      string
	TimeLocal    string
	Version      string
	LastError    string
	OverdueTitle string
	Overdue      []OverdueView
}

// DiagnosticJobView is one job row in the diagnostics report.
type DiagnosticJobView struct {
	ID           string
	Name         string
	NextRunUTC   string
	NextRunLocal string
	Trigger      string
	Overdue      bool
	RowClass     string
}

// DiagnosticsView replaces #statusContent on request.
type DiagnosticsView struct {
	Status       string
	JobsTitle    string
	OverdueTitle string
	TimeUTC      string
	TimeLocal    string
	Jobs         []DiagnosticJobView
}

// DetailsView fills the fixed fields of #monitorDetailsContainer.
type DetailsView struct {
	ID          string
	Href        string
	NameTitle   string
	Name        string
	URL         string
	Selector    string
	Threshold   string
	Interval    string
	Status      string
	StatusLabel string
	LastCheck   string
	NextCheck   string
	LastResult  string
	ResultClass string
	Paused      bool
}

// FormView is the add-check and edit-check form.
type FormView struct {
	FormID      string
	Variant     string
	Action      string
	SubmitLabel string
	// Token is empty on the edit form; updates are idempotent.
	Token     string
	Name      string
	URL       string
	Selector  string
	Threshold string
	Interval  string
	// Field names the input a validation message refers to.
	Field    string
	Message  *NoticeView
	Disabled bool
}

type indexPage struct {
	layoutView
	List   template.HTML
	Status statusPanel
}

type diagnosticsPage struct {
	layoutView
	Diagnostics PanelState[*DiagnosticsView]
}

type detailsPage struct {
	layoutView
	Details PanelState[*DetailsView]
}

type formPage struct {
	layoutView
	Form FormView
}

// viewBuilder turns API models into view-models for one locale and zone.
type viewBuilder struct {
	msgs       catalog
	loc        *time.Location
	now        func() time.Time
	previewLen int
	urlLen     int
}

func (b viewBuilder) resultLabel(r model.LastResult) string {
	return b.msgs.T("result." + string(r.Normalize()))
}

func (b viewBuilder) checkStatusLabel(status string) string {
	switch strings.ToLower(status) {
	case model.StatusActive:
		return b.msgs.T("check.active")
	case model.StatusPaused:
		return b.msgs.T("check.paused")
	case "":
		return b.msgs.T("status.na")
	default:
		return status
	}
}

func (b viewBuilder) formatTime(ts *model.Timestamp) string {
	if !ts.Valid() {
		return ""
	}
	return ts.In(b.loc).Format(timeLayout)
}

func (b viewBuilder) ago(ts *model.Timestamp) string {
	if !ts.Valid() {
		return ""
	}
	return humanize.RelTime(ts.Time, b.now(), "ago", "from now")
}

func (b viewBuilder) checkItem(c *model.Check) CheckItemView {
	name := c.DisplayName()
	if name == "" {
		name = b.msgs.T("list.unnamed")
	}
	result := c.LastResult.Normalize()

	item := CheckItemView{
		ID:         c.ID,
		Href:       checkPath(c.ID),
		Name:       name,
		URL:        c.URL,
		URLText:    truncate(c.URL, b.urlLen),
		BadgeClass: "status-" + string(result),
		BadgeLabel: b.resultLabel(result),
		Preview:    truncate(collapseSpaces(c.CurrentValue()), b.previewLen),
		LastAgo:    b.ago(c.LastCheckedAt),
		Interval:   b.msgs.T("list.interval", c.Interval),
		Paused:     c.IsPaused(),
	}
	if item.LastChecked = b.formatTime(c.LastCheckedAt); item.LastChecked == "" {
		item.LastChecked = b.msgs.T("list.never_checked")
	}
	if item.NextCheck = b.formatTime(c.NextCheckAt); item.NextCheck == "" {
		item.NextCheck = b.msgs.T("list.not_scheduled")
	}
	return item
}

func (b viewBuilder) checkList(checks []model.Check) []CheckItemView {
	items := make([]CheckItemView, 0, len(checks))
	for i := range checks {
		items = append(items, b.checkItem(&checks[i]))
	}
	return items
}

func (b viewBuilder) status(s *model.SystemStatus) *StatusView {
	na := b.msgs.T("status.na")
	v := &StatusView{
		Running:    s.IsRunning(),
		ActiveJobs: na,
		TimeUTC:    orDefault(formatIn(s.CurrentTimeUTC, time.UTC), na),
		TimeLocal:  orDefault(b.formatTime(s.CurrentTimeLocal), na),
		Version:    orDefault(s.AppVersion, na),
	}
	if v.Running {
		v.Scheduler = b.msgs.T("status.running")
	} else {
		v.Scheduler = b.msgs.T("status.stopped")
	}
	if s.ActiveScheduledJobs != nil {
		v.ActiveJobs = humanize.Comma(int64(*s.ActiveScheduledJobs))
	}
	if s.LastGlobalError != nil {
		v.LastError = strings.TrimSpace(*s.LastGlobalError)
	}

	if s.HasOverdue() {
		count := s.OverdueJobsCount
		if count < len(s.OverdueJobs) {
			count = len(s.OverdueJobs)
		}
		v.OverdueTitle = b.msgs.T("status.overdue", count)
		for _, job := range s.OverdueJobs {
			secs := int64(math.Round(job.OverdueBySeconds))
			human := overdueHuman(time.Duration(secs)*time.Second, b.now())
			v.Overdue = append(v.Overdue, OverdueView{
				Name:    orDefault(job.Name, job.ID),
				Seconds: secs,
				Human:   human,
				Text:    b.msgs.T("status.overdue_by", secs, human),
			})
		}
	}
	return v
}

func (b viewBuilder) diagnostics(d *model.SchedulerDiagnostics) *DiagnosticsView {
	na := b.msgs.T("status.na")
	v := &DiagnosticsView{
		Status:       orDefault(d.Status, na),
		JobsTitle:    b.msgs.T("diag.jobs", d.JobCount()),
		OverdueTitle: b.msgs.T("diag.overdue_count", d.OverdueCount()),
		TimeUTC:      orDefault(formatIn(d.CurrentTimeUTC, time.UTC), na),
		TimeLocal:    orDefault(b.formatTime(d.CurrentTimeLocal), na),
		Jobs:         make([]DiagnosticJobView, 0, len(d.Jobs)),
	}
	for i := range d.Jobs {
		job := &d.Jobs[i]
		row := DiagnosticJobView{
			ID:           job.ID,
			Name:         orDefault(job.Name, job.ID),
			NextRunUTC:   orDefault(formatIn(job.NextRun(), time.UTC), na),
			NextRunLocal: orDefault(b.formatTime(job.NextRunLocal), orDefault(b.formatTime(job.NextRun()), na)),
			Trigger:      job.Trigger,
			Overdue:      job.IsOverdue,
			RowClass:     "job",
		}
		if job.IsOverdue {
			row.RowClass = "job job-overdue"
		}
		v.Jobs = append(v.Jobs, row)
	}
	return v
}

func (b viewBuilder) details(c *model.Check) *DetailsView {
	name := c.DisplayName()
	v := &DetailsView{
		ID:          c.ID,
		Href:        checkPath(c.ID),
		NameTitle:   orDefault(name, b.msgs.T("list.unnamed")),
		Name:        orDefault(name, b.msgs.T("status.na")),
		URL:         c.URL,
		Selector:    orDefault(c.SelectorText(), b.msgs.T("details.whole_page")),
		Threshold:   b.msgs.T("details.no_threshold"),
		Interval:    strconv.Itoa(c.Interval),
		Status:      c.Status,
		StatusLabel: b.checkStatusLabel(c.Status),
		LastCheck:   orDefault(b.formatTime(c.LastCheckedAt), b.msgs.T("list.never_checked")),
		NextCheck:   orDefault(b.formatTime(c.NextCheckAt), b.msgs.T("list.not_scheduled")),
		LastResult:  b.msgs.T("details.no_data"),
		ResultClass: "status-" + string(c.LastResult.Normalize()),
		Paused:      c.IsPaused(),
	}
	if c.ChangeThreshold != nil {
		v.Threshold = strconv.FormatFloat(*c.ChangeThreshold, 'f', -1, 64) + "%"
	}
	if c.LastResult != "" {
		v.LastResult = b.resultLabel(c.LastResult)
	}
	return v
}

// overdueHuman renders d as "1 minute", "3 hours" and so on.
func overdueHuman(d time.Duration, now time.Time) string {
	if d <= 0 {
		return humanize.RelTime(now, now, "", "")
	}
	return strings.TrimSpace(humanize.RelTime(now.Add(-d), now, "", ""))
}

func formatIn(ts *model.Timestamp, loc *time.Location) string {
	if !ts.Valid() {
		return ""
	}
	return ts.In(loc).Format(timeLayout)
}

// truncate cuts s to n runes and appends "..." when something was cut.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

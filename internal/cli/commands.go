// Package cli implements the pagewatch-ctl commands on top of the monitor API client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/okian/pagewatch/pkg/logger"
)

const (
	timeLayout = "2006-01-02 15:04:05 MST"
	userAgent  = "pagewatch-ctl"
	none       = "-"
)

// Client is the part of the monitor API the commands use.
type Client interface {
	ListChecks(ctx context.Context) ([]model.Check, error)
	GetCheck(ctx context.Context, id string) (*model.Check, error)
	CreateCheck(ctx context.Context, in model.NewCheck) (*model.Check, error)
	SystemStatus(ctx context.Context) (*model.SystemStatus, error)
	SchedulerDiagnostics(ctx context.Context) (*model.SchedulerDiagnostics, error)
	ForceSchedulerCheck(ctx context.Context) (model.ForceCheckResult, error)
}

// Runner executes one command against a Client.
type Runner struct {
	client Client
	out    io.Writer
	log    logger.Logger
	now    func() time.Time
}

// NewRunner creates a Runner writing to out.
func NewRunner(client Client, out io.Writer, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{client: client, out: out, log: log, now: time.Now}
}

// Run builds a monitor API client from cfg and executes args.
func Run(ctx context.Context, cfg *Config, args []string, out io.Writer) error {
	log := logger.Get()
	client, err := monitorapi.New(cfg.BaseURL,
		monitorapi.WithTimeout(cfg.Timeout),
		monitorapi.WithUserAgent(userAgent),
		monitorapi.WithLogger(log.Named("monitorapi")),
	)
	if err != nil {
		return err
	}
	return NewRunner(client, out, log).Execute(ctx, args)
}

// Execute dispatches args[0] to its command.
func (r *Runner) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	// One request id per invocation so backend logs can be correlated.
	reqID := uuid.NewString()
	ctx = monitorapi.ContextWithRequestID(ctx, reqID)
	r.log.Debug(ctx, "running command", logger.String("command", args[0]), logger.String("request_id", reqID))

	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		return r.list(ctx)
	case "show":
		if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
			return fmt.Errorf("%w: show <id>", ErrUsage)
		}
		return r.show(ctx, strings.TrimSpace(rest[0]))
	case "status":
		return r.status(ctx)
	case "diag":
		return r.diag(ctx)
	case "force":
		return r.force(ctx)
	case "add":
		return r.add(ctx, rest)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (r *Runner) list(ctx context.Context) error {
	checks, err := r.client.ListChecks(ctx)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		_, err := fmt.Fprintln(r.out, "No checks yet.")
		return err
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tRESULT\tLAST CHECKED\tINTERVAL\tURL")
	for i := range checks {
		c := &checks[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dm\t%s\n",
			c.ID,
			orNone(c.DisplayName()),
			orNone(c.Status),
			c.LastResult.Normalize(),
			r.ago(c.LastCheckedAt),
			c.Interval,
			c.URL,
		)
	}
	return tw.Flush()
}

func (r *Runner) show(ctx context.Context, id string) error {
	c, err := r.client.GetCheck(ctx, id)
	if err != nil {
		return err
	}

	threshold := none
	if c.ChangeThreshold != nil {
		threshold = strconv.FormatFloat(*c.ChangeThreshold, 'f', -1, 64) + "%"
	}
	selector := c.SelectorText()
	if selector == "" {
		selector = "(whole page)"
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", orNone(c.DisplayName()))
	fmt.Fprintf(tw, "URL:\t%s\n", c.URL)
	fmt.Fprintf(tw, "Selector:\t%s\n", selector)
	fmt.Fprintf(tw, "Threshold:\t%s\n", threshold)
	fmt.Fprintf(tw, "Interval:\t%d min\n", c.Interval)
	fmt.Fprintf(tw, "Status:\t%s\n", orNone(c.Status))
	fmt.Fprintf(tw, "Last result:\t%s\n", c.LastResult.Normalize())
	fmt.Fprintf(tw, "Last checked:\t%s\n", formatTime(c.LastCheckedAt))
	fmt.Fprintf(tw, "Next check:\t%s\n", formatTime(c.NextCheckAt))
	if v := c.CurrentValue(); v != "" {
		fmt.Fprintf(tw, "Current value:\t%s\n", strings.Join(strings.Fields(v), " "))
	}
	if c.LastErrorMessage != nil && *c.LastErrorMessage != "" {
		fmt.Fprintf(tw, "Last error:\t%s\n", *c.LastErrorMessage)
	}
	return tw.Flush()
}

func (r *Runner) status(ctx context.Context) error {
	st, err := r.client.SystemStatus(ctx)
	if err != nil {
		return err
	}

	active := none
	if st.ActiveScheduledJobs != nil {
		active = humanize.Comma(int64(*st.ActiveScheduledJobs))
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Scheduler:\t%s\n", orNone(st.SchedulerStatus))
	fmt.Fprintf(tw, "Active jobs:\t%s\n", active)
	fmt.Fprintf(tw, "Version:\t%s\n", orNone(st.AppVersion))
	fmt.Fprintf(tw, "Time (UTC):\t%s\n", formatTime(st.CurrentTimeUTC))
	if st.LastGlobalError != nil && *st.LastGlobalError != "" {
		fmt.Fprintf(tw, "Last error:\t%s\n", *st.LastGlobalError)
	}
	if st.HasOverdue() {
		count := max(st.OverdueJobsCount, len(st.OverdueJobs))
		fmt.Fprintf(tw, "Overdue jobs:\t%d\n", count)
		for _, job := range st.OverdueJobs {
			name := job.Name
			if name == "" {
				name = job.ID
			}
			d := time.Duration(job.OverdueBySeconds * float64(time.Second)).Round(time.Second)
			fmt.Fprintf(tw, "  %s\toverdue by %s\n", name, d)
		}
	}
	return tw.Flush()
}

func (r *Runner) diag(ctx context.Context) error {
	d, err := r.client.SchedulerDiagnostics(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Status: %s  Jobs: %d  Overdue: %d\n", orNone(d.Status), d.JobCount(), d.OverdueCount())
	if len(d.Jobs) == 0 {
		fmt.Fprintln(tw, "No scheduled jobs.")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "ID\tNAME\tNEXT RUN (UTC)\tTRIGGER\tOVERDUE")
	for i := range d.Jobs {
		job := &d.Jobs[i]
		overdue := "no"
		if job.IsOverdue {
			overdue = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", job.ID, orNone(job.Name), formatTime(job.NextRun()), orNone(job.Trigger), overdue)
	}
	return tw.Flush()
}

func (r *Runner) force(ctx context.Context) error {
	res, err := r.client.ForceSchedulerCheck(ctx)
	if err != nil {
		return err
	}
	msg := "Scheduler check triggered."
	if extra := strings.TrimSpace(res.Message()); extra != "" {
		msg += " " + extra
	}
	_, err = fmt.Fprintln(r.out, msg)
	return err
}

// add parses its own flags and validates them with the strict form rules
// before anything is sent.
func (r *Runner) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	target := fs.String("url", "", "URL to watch")
	interval := fs.String("interval", "", "Minutes between checks")
	name := fs.String("name", "", "Display name")
	selector := fs.String("selector", "", "CSS selector; empty watches the whole page")
	threshold := fs.String("threshold", "", "Change threshold in percent")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: add: %w", ErrUsage, err)
	}

	values := url.Values{
		form.FieldURL:       {*target},
		form.FieldInterval:  {*interval},
		form.FieldName:      {*name},
		form.FieldSelector:  {*selector},
		form.FieldThreshold: {*threshold},
	}
	in, verr := form.Parse(values, form.Strict)
	if verr != nil {
		return fmt.Errorf("%w: add: %w", ErrUsage, verr)
	}

	created, err := r.client.CreateCheck(ctx, in)
	if err != nil {
		return err
	}
	r.log.Info(ctx, "check created", logger.String("check_id", created.ID))
	_, err = fmt.Fprintf(r.out, "Check added successfully! id=%s\n", created.ID)
	return err
}

func (r *Runner) ago(ts *model.Timestamp) string {
	if !ts.Valid() {
		return "never"
	}
	return humanize.RelTime(ts.Time, r.now(), "ago", "from now")
}

func formatTime(ts *model.Timestamp) string {
	if !ts.Valid() {
		return none
	}
	return ts.UTC().Format(timeLayout)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}

// Message returns the text to show for err: the monitor API's user message
// for client failures, else the error itself.
func Message(err error) string {
	if errors.Is(err, monitorapi.ErrAPI) || errors.Is(err, monitorapi.ErrTransport) {
		return monitorapi.UserMessage(err)
	}
	return err.Error()
}

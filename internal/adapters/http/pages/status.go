package pages

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/pkg/logger"
)

// fragmentHeader marks requests from the page script that want a fragment back.
const fragmentHeader = "X-Pagewatch-Fragment"

type statusPanel struct {
	Notice *NoticeView
	PanelState[*StatusView]
}

func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get(fragmentHeader) == "1"
}

func (s *Server) loadStatus(ctx context.Context) (p PanelState[*StatusView]) {
	st, err := s.api.SystemStatus(ctx)
	if err != nil {
		s.upstreamFailed(ctx, monitorapi.OpSystemStatus, err)
		p.Err = &ErrorView{
			Message:   s.msgs.T("status.load_failed", s.errorText(err)),
			RetryURL:  "/",
			RetryText: s.msgs.T("list.retry"),
		}
		return p
	}
	p.Data = s.build.status(st)
	return p
}

func (s *Server) loadDiagnostics(ctx context.Context) (p PanelState[*DiagnosticsView]) {
	d, err := s.api.SchedulerDiagnostics(ctx)
	if err != nil {
		s.upstreamFailed(ctx, monitorapi.OpSchedulerDiagnostics, err)
		p.Err = &ErrorView{
			Message:   s.msgs.T("diag.load_failed", s.errorText(err)),
			RetryURL:  "/status/diagnostics",
			RetryText: s.msgs.T("list.retry"),
		}
		return p
	}
	p.Data = s.build.diagnostics(d)
	return p
}

func (s *Server) handleStatusFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	html, err := s.views.fragment(ctx, partialStatus, statusPanel{PanelState: s.loadStatus(ctx)})
	if err != nil {
		s.views.fail(ctx, w, err)
		return
	}
	s.views.writeFragment(w, http.StatusOK, html)
}

func (s *Server) handleDiagnosticsFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	html, err := s.views.fragment(ctx, partialDiagnostics, s.loadDiagnostics(ctx))
	if err != nil {
		s.views.fail(ctx, w, err)
		return
	}
	s.views.writeFragment(w, http.StatusOK, html)
}

// handleDiagnosticsPage shows the diagnostics report in place of the status panel.
func (s *Server) handleDiagnosticsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := diagnosticsPage{
		layoutView:  s.layout(s.msgs.T("diag.heading"), nil),
		Diagnostics: s.loadDiagnostics(ctx),
	}
	s.views.page(ctx, w, http.StatusOK, pageDiagnostics, view)
}

// handleForceCheck triggers the scheduler and reloads the status panel. The
// full page reloads the list and the status side by side once the trigger
// returns.
func (s *Server) handleForceCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notice := &NoticeView{Kind: "success", Message: s.msgs.T("status.forced")}
	res, err := s.api.ForceSchedulerCheck(ctx)
	if err != nil {
		s.upstreamFailed(ctx, monitorapi.OpForceSchedulerCheck, err)
		notice = &NoticeView{Kind: "error", Message: s.msgs.T("status.force_failed", s.errorText(err))}
	} else {
		if msg := strings.TrimSpace(res.Message()); msg != "" {
			notice.Message += " " + msg
		}
		logger.FromContext(ctx, s.log).Info(ctx, "scheduler check forced")
	}

	if isFragmentRequest(r) {
		panel := statusPanel{Notice: notice, PanelState: s.loadStatus(ctx)}
		html, err := s.views.fragment(ctx, partialStatus, panel)
		if err != nil {
			s.views.fail(ctx, w, err)
			return
		}
		s.views.writeFragment(w, http.StatusOK, html)
		return
	}

	view := indexPage{layoutView: s.layout(s.msgs.T("list.heading"), nil)}
	var listErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.List, listErr = s.checkListHTML(gctx)
		return nil
	})
	g.Go(func() error {
		view.Status = statusPanel{Notice: notice, PanelState: s.loadStatus(gctx)}
		return nil
	})
	_ = g.Wait()

	if listErr != nil {
		s.views.fail(ctx, w, listErr)
		return
	}
	s.views.page(ctx, w, http.StatusOK, pageIndex, view)
}

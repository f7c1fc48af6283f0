package pages

import (
	"context"
	"html/template"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
)

// handleIndex serves GET /: the check list and the system status panel,
// loaded side by side.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := indexPage{layoutView: s.layout(s.msgs.T("list.heading"), s.noticeFromQuery(r))}

	var listErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.List, listErr = s.checkListHTML(gctx)
		return nil
	})
	g.Go(func() error {
		view.Status = statusPanel{PanelState: s.loadStatus(gctx)}
		return nil
	})
	_ = g.Wait()

	if listErr != nil {
		s.views.fail(ctx, w, listErr)
		return
	}
	s.views.page(ctx, w, http.StatusOK, pageIndex, view)
}

// handleChecksFragment serves the check list alone. A superseded load gets 204.
func (s *Server) handleChecksFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.list.Load(ctx)
	switch {
	case isSuperseded(err):
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.views.fail(ctx, w, err)
		return
	}
	s.views.writeFragment(w, http.StatusOK, res.Value)
}

// checkListHTML returns the rendered list panel for embedding in a page.
func (s *Server) checkListHTML(ctx context.Context) (template.HTML, error) {
	res, err := s.list.Load(ctx)
	if isSuperseded(err) {
		return s.views.fragment(ctx, partialCheckList, CheckListView{Superseded: true})
	}
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// renderCheckList is the loader function: one fetch and one render pass.
func (s *Server) renderCheckList(ctx context.Context) (template.HTML, error) {
	panel := s.loadCheckList(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.views.fragment(ctx, partialCheckList, panel)
}

func (s *Server) loadCheckList(ctx context.Context) (p CheckListView) {
	checks, err := s.api.ListChecks(ctx)
	if err != nil {
		s.upstreamFailed(ctx, monitorapi.OpListChecks, err)
		p.Err = &ErrorView{
			Message:   s.msgs.T("list.load_failed", s.errorText(err)),
			RetryURL:  "/",
			RetryText: s.msgs.T("list.retry"),
		}
		return p
	}
	p.Data = s.build.checkList(checks)
	return p
}

package pages

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/okian/pagewatch/pkg/logger"
)

// checkID extracts the {id} path segment. Empty, dot and slash-bearing ids are rejected.
func checkID(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func checkPath(id string) string {
	return "/check/" + url.PathEscape(id)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	s.renderDetails(w, r, s.noticeFromQuery(r))
}

func (s *Server) renderDetails(w http.ResponseWriter, r *http.Request, notice *NoticeView) {
	ctx := r.Context()
	view := detailsPage{layoutView: s.layout(s.msgs.T("details.heading"), notice)}

	id, ok := checkID(r)
	if !ok {
		view.Details.Err = &ErrorView{
			Message:   s.msgs.T("details.bad_id"),
			RetryURL:  "/",
			RetryText: s.msgs.T("nav.list"),
		}
		s.views.page(ctx, w, http.StatusBadRequest, pageCheck, view)
		return
	}

	var status int
	view.Details, status = s.loadDetails(ctx, id)
	s.views.page(ctx, w, status, pageCheck, view)
}

func (s *Server) loadDetails(ctx context.Context, id string) (p PanelState[*DetailsView], status int) {
	c, errView, status := s.fetchCheck(ctx, id)
	if errView != nil {
		p.Err = errView
		return p, status
	}
	p.Data = s.build.details(c)
	return p, status
}

// fetchCheck loads one check. On failure it returns the inline error and the
// status to answer with: 404 when the backend does not know the id, else 200.
func (s *Server) fetchCheck(ctx context.Context, id string) (*model.Check, *ErrorView, int) {
	c, err := s.api.GetCheck(ctx, id)
	if err == nil {
		return c, nil, http.StatusOK
	}
	s.upstreamFailed(ctx, monitorapi.OpGetCheck, err)
	ev := &ErrorView{
		Message:   s.msgs.T("details.load_failed", s.errorText(err)),
		RetryURL:  checkPath(id),
		RetryText: s.msgs.T("list.retry"),
	}
	if errors.Is(err, monitorapi.ErrNotFound) {
		ev.RetryURL = "/"
		ev.RetryText = s.msgs.T("nav.list")
		return nil, ev, http.StatusNotFound
	}
	return nil, ev, http.StatusOK
}

func (s *Server) handleManualCheck(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, monitorapi.OpManualCheck, func(ctx context.Context, id string) (string, error) {
		res, err := s.api.ManualCheck(ctx, id)
		if err != nil {
			return "", err
		}
		q := url.Values{"notice": {"manual"}, "result": {string(res.Status.Normalize())}}
		return checkPath(id) + "?" + q.Encode(), nil
	})
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, monitorapi.OpToggleStatus, func(ctx context.Context, id string) (string, error) {
		res, err := s.api.ToggleStatus(ctx, id)
		if err != nil {
			return "", err
		}
		q := url.Values{"notice": {"toggled"}, "status": {res.NewStatus}}
		return checkPath(id) + "?" + q.Encode(), nil
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, monitorapi.OpDeleteCheck, func(ctx context.Context, id string) (string, error) {
		if _, err := s.api.DeleteCheck(ctx, id); err != nil {
			return "", err
		}
		return "/?notice=deleted", nil
	})
}

// action runs a write against one check and redirects with 303 on success.
// On failure the details page is shown again with the error on top.
func (s *Server) action(w http.ResponseWriter, r *http.Request, op string, run func(context.Context, string) (string, error)) {
	ctx := r.Context()
	id, ok := checkID(r)
	if !ok {
		s.renderDetails(w, r, nil)
		return
	}

	target, err := run(ctx, id)
	if err != nil {
		s.upstreamFailed(ctx, op, err)
		s.renderDetails(w, r, &NoticeView{Kind: "error", Message: s.msgs.T("details.action_failed", s.errorText(err))})
		return
	}
	logger.FromContext(ctx, s.log).Info(ctx, "check action done", logger.String("op", op), logger.String("check_id", id))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// noticeFromQuery turns the notice set by a redirect into a banner. Only known
// notices are shown.
func (s *Server) noticeFromQuery(r *http.Request) *NoticeView {
	q := r.URL.Query()
	switch q.Get("notice") {
	case "created":
		return &NoticeView{Kind: "success", Message: s.msgs.T("notice.created")}
	case "updated":
		return &NoticeView{Kind: "success", Message: s.msgs.T("notice.updated")}
	case "deleted":
		return &NoticeView{Kind: "success", Message: s.msgs.T("notice.deleted")}
	case "manual":
		label := s.build.resultLabel(model.LastResult(q.Get("result")))
		return &NoticeView{Kind: "success", Message: s.msgs.T("notice.manual", label)}
	case "toggled":
		st := strings.ToLower(q.Get("status"))
		if st != model.StatusActive && st != model.StatusPaused {
			return nil
		}
		return &NoticeView{Kind: "success", Message: s.msgs.T("notice.toggled", s.build.checkStatusLabel(st))}
	default:
		return nil
	}
}

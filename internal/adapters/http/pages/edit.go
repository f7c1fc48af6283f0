package pages

import (
	"net/http"
	"strconv"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

const editFormID = "editCheckForm"

func (s *Server) editForm(id string) FormView {
	return FormView{
		FormID:      editFormID,
		Variant:     string(s.variant),
		Action:      checkPath(id) + "/edit",
		SubmitLabel: s.msgs.T("form.save"),
	}
}

// prefill copies the stored check into fv the way a user would have typed it.
func prefill(fv *FormView, c *model.Check) {
	fv.Name = c.DisplayName()
	fv.URL = c.URL
	fv.Selector = c.SelectorText()
	if c.ChangeThreshold != nil {
		fv.Threshold = strconv.FormatFloat(*c.ChangeThreshold, 'f', -1, 64)
	}
	if c.Interval > 0 {
		fv.Interval = strconv.Itoa(c.Interval)
	}
}

// handleEditForm serves GET /check/{id}/edit prefilled from the backend.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := checkID(r)
	if !ok {
		s.renderDetails(w, r, nil)
		return
	}

	c, errView, status := s.fetchCheck(ctx, id)
	if errView != nil {
		view := detailsPage{layoutView: s.layout(s.msgs.T("details.heading"), nil)}
		view.Details.Err = errView
		s.views.page(ctx, w, status, pageCheck, view)
		return
	}

	view := formPage{layoutView: s.layout(s.msgs.T("form.edit_heading"), nil), Form: s.editForm(id)}
	prefill(&view.Form, c)
	s.views.page(ctx, w, http.StatusOK, pageAdd, view)
}

// handleEditSubmit validates like the add form, then PUTs the check and
// redirects to its details page.
func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, s.log)
	id, ok := checkID(r)
	if !ok {
		s.renderDetails(w, r, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	view := formPage{layoutView: s.layout(s.msgs.T("form.edit_heading"), nil), Form: s.editForm(id)}
	fv := &view.Form
	if err := r.ParseForm(); err != nil {
		log.Debug(ctx, "edit form unreadable", logger.Error(err))
		metrics.RecordValidationFailure("body")
		fv.Message = &NoticeView{Kind: "error", Message: s.msgs.T("form.required")}
		s.views.page(ctx, w, http.StatusBadRequest, pageAdd, view)
		return
	}
	keepValues(fv, r.PostForm)

	in, verr := form.Parse(r.PostForm, s.variant)
	if verr != nil {
		metrics.RecordValidationFailure(verr.Field)
		log.Debug(ctx, "edit form rejected", logger.String("field", verr.Field), logger.Error(verr))
		fv.Field = verr.Field
		fv.Message = &NoticeView{Kind: "error", Message: s.validationText(verr)}
		s.views.page(ctx, w, http.StatusBadRequest, pageAdd, view)
		return
	}

	if _, err := s.api.UpdateCheck(ctx, id, in); err != nil {
		s.upstreamFailed(ctx, monitorapi.OpUpdateCheck, err)
		fv.Message = &NoticeView{Kind: "error", Message: s.msgs.T("form.update_failed", s.errorText(err))}
		s.views.page(ctx, w, http.StatusOK, pageAdd, view)
		return
	}

	metrics.RecordCheckSubmission("updated")
	log.Info(ctx, "check updated", logger.String("check_id", id))
	http.Redirect(w, r, checkPath(id)+"?notice=updated", http.StatusSeeOther)
}

package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/pagewatch/internal/adapters/monitorapi"
	"github.com/okian/pagewatch/internal/domain/form"
	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

const (
	tokenField       = "submission_token"
	maxFormBodyBytes = 64 << 10
)

func (s *Server) newForm() FormView {
	return FormView{
		FormID:      s.variant.FormID(),
		Variant:     string(s.variant),
		Action:      "/add",
		SubmitLabel: s.msgs.T("form.submit"),
		Token:       uuid.NewString(),
	}
}

// keepValues copies the submitted fields back into fv so a rejected form
// shows what the user typed.
func keepValues(fv *FormView, values url.Values) {
	fv.Name = values.Get(form.FieldName)
	fv.URL = values.Get(form.FieldURL)
	fv.Selector = values.Get(form.FieldSelector)
	fv.Threshold = values.Get(form.FieldThreshold)
	fv.Interval = values.Get(form.FieldInterval)
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	view := formPage{
		layoutView: s.layout(s.msgs.T("form.heading"), nil),
		Form:       s.newForm(),
	}
	s.views.page(r.Context(), w, http.StatusOK, pageAdd, view)
}

// handleAddSubmit validates the form, then creates the check upstream.
// Invalid input never reaches the API.
func (s *Server) handleAddSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, s.log)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	view := formPage{layoutView: s.layout(s.msgs.T("form.heading"), nil), Form: s.newForm()}
	if err := r.ParseForm(); err != nil {
		log.Debug(ctx, "check form unreadable", logger.Error(err))
		metrics.RecordValidationFailure("body")
		view.Form.Message = &NoticeView{Kind: "error", Message: s.msgs.T("form.required")}
		s.views.page(ctx, w, http.StatusBadRequest, pageAdd, view)
		return
	}

	fv := &view.Form
	if token := strings.TrimSpace(r.PostForm.Get(tokenField)); token != "" {
		fv.Token = token
	}
	keepValues(fv, r.PostForm)

	in, verr := form.Parse(r.PostForm, s.variant)
	if verr != nil {
		metrics.RecordValidationFailure(verr.Field)
		log.Debug(ctx, "check form rejected", logger.String("field", verr.Field), logger.Error(verr))
		fv.Field = verr.Field
		fv.Message = &NoticeView{Kind: "error", Message: s.validationText(verr)}
		s.views.page(ctx, w, http.StatusBadRequest, pageAdd, view)
		return
	}

	if s.deduper.SeenAndRecord(ctx, fv.Token) {
		metrics.RecordDuplicateSubmission()
		log.Info(ctx, "duplicate check submission ignored", logger.String("token", fv.Token))
		fv.Message = &NoticeView{Kind: "info", Message: s.msgs.T("form.duplicate")}
		fv.Disabled = true
		s.redirectToList(ctx, w, &view)
		return
	}

	created, err := s.api.CreateCheck(ctx, in)
	if err != nil {
		s.deduper.Unrecord(ctx, fv.Token)
		outcome := "failed"
		if errors.Is(err, monitorapi.ErrAPI) {
			outcome = "rejected"
		}
		metrics.RecordCheckSubmission(outcome)
		s.upstreamFailed(ctx, monitorapi.OpCreateCheck, err)
		fv.Message = &NoticeView{Kind: "error", Message: s.msgs.T("form.failed", s.errorText(err))}
		s.views.page(ctx, w, http.StatusOK, pageAdd, view)
		return
	}

	metrics.RecordCheckSubmission("created")
	log.Info(ctx, "check created", logger.String("check_id", created.ID), logger.String("url", created.URL))
	fv.Message = &NoticeView{Kind: "success", Message: s.msgs.T("form.created")}
	fv.Disabled = true
	s.redirectToList(ctx, w, &view)
}

// redirectToList renders view and sends the browser to / after the redirect delay.
func (s *Server) redirectToList(ctx context.Context, w http.ResponseWriter, view *formPage) {
	secs := s.redirectSeconds()
	view.RefreshURL = "/"
	view.RefreshSeconds = secs
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=/", secs))
	s.views.page(ctx, w, http.StatusOK, pageAdd, view)
}

func (s *Server) validationText(verr *form.ValidationError) string {
	switch {
	case errors.Is(verr, form.ErrIntervalTooSmall):
		return s.msgs.T("form.interval_min")
	case errors.Is(verr, form.ErrThresholdRange):
		return s.msgs.T("form.threshold_range")
	default:
		return s.msgs.T("form.required")
	}
}

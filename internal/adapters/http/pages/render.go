package pages

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page templates; each defines "content" and is rendered through "layout".
const (
	pageIndex       = "index"
	pageAdd         = "add"
	pageCheck       = "check"
	pageDiagnostics = "diagnostics"
)

// Partials shared by pages and fragment routes.
const (
	partialCheckList   = "check_list"
	partialStatus      = "status_panel"
	partialDiagnostics = "diagnostics_panel"
)

var tracer = otel.Tracer("pagewatch/pages")

type renderer struct {
	base  *template.Template
	pages map[string]*template.Template
	msgs  catalog
	log   logger.Logger
}

func newRenderer(msgs catalog, log logger.Logger) (*renderer, error) {
	funcs := template.FuncMap{"t": msgs.T}
	base, err := template.New("base").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplates, err)
	}

	r := &renderer{base: base, pages: make(map[string]*template.Template), msgs: msgs, log: log}
	for _, name := range []string{pageIndex, pageAdd, pageCheck, pageDiagnostics} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplates, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplates, name, err)
		}
		r.pages[name] = clone
	}
	return r, nil
}

// fragment renders a partial into HTML that can be embedded in a page or
// returned on its own.
func (r *renderer) fragment(ctx context.Context, name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.execute(ctx, r.base, name, &buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// page renders a full page and writes it only if rendering succeeded.
func (r *renderer) page(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.pages[name]
	if !ok {
		r.fail(ctx, w, fmt.Errorf("%w: unknown page %q", ErrRender, name))
		return
	}
	var buf bytes.Buffer
	if err := r.execute(ctx, t, "layout", &buf, data); err != nil {
		r.fail(ctx, w, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// writeFragment writes already rendered HTML.
func (r *renderer) writeFragment(w http.ResponseWriter, status int, html template.HTML) {
	writeHTML(w, status, []byte(html))
}

func (r *renderer) execute(ctx context.Context, t *template.Template, name string, buf *bytes.Buffer, data any) error {
	_, span := tracer.Start(ctx, "pages.render", trace.WithAttributes(attribute.String("view", name)))
	defer span.End()

	metrics.RecordRender(name)
	if err := t.ExecuteTemplate(buf, name, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}
	return nil
}

func (r *renderer) fail(ctx context.Context, w http.ResponseWriter, err error) {
	logger.FromContext(ctx, r.log).Error(ctx, "render failed", logger.Error(err))
	metrics.RecordErrorByComponent("render", "template")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(r.msgs.T("error.internal")))
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

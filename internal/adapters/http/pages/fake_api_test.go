package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/pagewatch/internal/domain/model"
)

// fakeAPI is an in-memory monitor backend. Nil funcs return empty successes.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	list   func(ctx context.Context) ([]model.Check, error)
	get    func(ctx context.Context, id string) (*model.Check, error)
	create func(ctx context.Context, in model.NewCheck) (*model.Check, error)
	update func(ctx context.Context, id string, in model.NewCheck) (*model.Check, error)
	status func(ctx context.Context) (*model.SystemStatus, error)
	diag   func(ctx context.Context) (*model.SchedulerDiagnostics, error)
	force  func(ctx context.Context) (model.ForceCheckResult, error)
	manual func(ctx context.Context, id string) (*model.ManualCheckResult, error)
	toggle func(ctx context.Context, id string) (*model.ToggleResult, error)
	remove func(ctx context.Context, id string) (*model.DeleteResult, error)
	lastNew model.NewCheck
	lastID  string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) record(op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if id != "" {
		f.lastID = id
	}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) ListChecks(ctx context.Context) ([]model.Check, error) {
	f.record("list", "")
	if f.list != nil {
		return f.list(ctx)
	}
	return []model.Check{}, nil
}

func (f *fakeAPI) GetCheck(ctx context.Context, id string) (*model.Check, error) {
	f.record("get", id)
	if f.get != nil {
		return f.get(ctx, id)
	}
	return &model.Check{ID: id, URL: "https://example.com", Interval: 5, Status: model.StatusActive}, nil
}

func (f *fakeAPI) CreateCheck(ctx context.Context, in model.NewCheck) (*model.Check, error) {
	f.record("create", "")
	f.mu.Lock()
	f.lastNew = in
	f.mu.Unlock()
	if f.create != nil {
		return f.create(ctx, in)
	}
	return &model.Check{ID: "new-1", URL: in.URL, Interval: in.Interval, Status: model.StatusActive}, nil
}

func (f *fakeAPI) UpdateCheck(ctx context.Context, id string, in model.NewCheck) (*model.Check, error) {
	f.record("update", id)
	f.mu.Lock()
	f.lastNew = in
	f.mu.Unlock()
	if f.update != nil {
		return f.update(ctx, id, in)
	}
	return &model.Check{ID: id, URL: in.URL, Interval: in.Interval, Status: model.StatusActive}, nil
}

func (f *fakeAPI) SystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	f.record("status", "")
	if f.status != nil {
		return f.status(ctx)
	}
	return &model.SystemStatus{SchedulerStatus: "running", AppVersion: "1.0.0"}, nil
}

func (f *fakeAPI) SchedulerDiagnostics(ctx context.Context) (*model.SchedulerDiagnostics, error) {
	f.record("diag", "")
	if f.diag != nil {
		return f.diag(ctx)
	}
	return &model.SchedulerDiagnostics{Status: "running"}, nil
}

func (f *fakeAPI) ForceSchedulerCheck(ctx context.Context) (model.ForceCheckResult, error) {
	f.record("force", "")
	if f.force != nil {
		return f.force(ctx)
	}
	return model.ForceCheckResult{"message": "3 jobs queued"}, nil
}

func (f *fakeAPI) ManualCheck(ctx context.Context, id string) (*model.ManualCheckResult, error) {
	f.record("manual", id)
	if f.manual != nil {
		return f.manual(ctx, id)
	}
	return &model.ManualCheckResult{Status: model.ResultChanged}, nil
}

func (f *fakeAPI) ToggleStatus(ctx context.Context, id string) (*model.ToggleResult, error) {
	f.record("toggle", id)
	if f.toggle != nil {
		return f.toggle(ctx, id)
	}
	return &model.ToggleResult{OldStatus: model.StatusActive, NewStatus: model.StatusPaused}, nil
}

func (f *fakeAPI) DeleteCheck(ctx context.Context, id string) (*model.DeleteResult, error) {
	f.record("delete", id)
	if f.remove != nil {
		return f.remove(ctx, id)
	}
	return &model.DeleteResult{Message: "deleted"}, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

func ts(s string) *model.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &model.Timestamp{Time: t}
}

func newTestServer(api API, opts ...Option) http.Handler {
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	srv, err := NewServer(api, opts...)
	if err != nil {
		panic(err)
	}
	return srv.Routes()
}

func get(h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func post(h http.Handler, target string, values url.Values, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

package loader

// Option configures a Loader.
type Option func(*hooks)

type hooks struct {
	onStart      func()
	onCollapsed  func()
	onSuperseded func()
}

// WithOnStart is called each time a load actually runs the load function.
func WithOnStart(fn func()) Option {
	return func(h *hooks) { h.onStart = fn }
}

// WithOnCollapsed is called for every caller that joined an in-flight load.
func WithOnCollapsed(fn func()) Option {
	return func(h *hooks) { h.onCollapsed = fn }
}

// WithOnSuperseded is called when a running load is cancelled by a newer one.
func WithOnSuperseded(fn func()) Option {
	return func(h *hooks) { h.onSuperseded = fn }
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

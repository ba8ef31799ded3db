package timer

type TimeoutFactory interface {
	// Timeout creates a one-shot timeout which fires after given number of milliseconds,
	// kind is used only for identifying timeouts (e.g. in tests)
	Timeout(kind string, milliseconds int) Timeout
}

type Timeout interface {
	// Done returns channel which is closed when timeout fires
	Done() <-chan struct{}
	// Cancel stops timeout, Done channel of cancelled timeout is never closed
	Cancel()
}

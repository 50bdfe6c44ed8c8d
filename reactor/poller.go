package reactor

// event is a readiness notification for one descriptor.
type event struct {
	fd       int
	readable bool
	writable bool
	hangup   bool
	errored  bool
}

// readinessObject is the kernel facility reporting which descriptors can be
// read or written without blocking (epoll, kqueue, poll, select). The
// reactor only ever programs level-triggered interest sets — no edge-
// triggered mode is used, matching spec.md's platform table.
type readinessObject interface {
	// Add registers fd for hangup/error notification plus the given
	// initial interest (used at admission time, before on_connect has
	// decided a state).
	Add(fd int, readable, writable bool) error
	// Modify changes fd's read/write interest, used when a callback
	// transitions a connection's state.
	Modify(fd int, readable, writable bool) error
	// Delete deregisters fd (called during Reap).
	Delete(fd int) error
	// Wait blocks up to timeoutMS (negative means forever) and appends
	// ready events to dst, returning the extended slice.
	Wait(dst []event, timeoutMS int) ([]event, error)
	// Close releases the readiness object's own descriptor.
	Close() error
}

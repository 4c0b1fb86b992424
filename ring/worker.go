package ring

// worker is the single goroutine that owns every mutable field reachable
// from a Manager. Every exported method funnels a closure through it, so
// all state mutation is serialized regardless of which goroutine the
// caller runs on. Long-running fetches (the five-way selected-parameter
// read) are deliberately run off this goroutine and rejoin it by
// enqueueing their own completion closure, so the worker stays free to
// process other commands while they're in flight.
type worker struct {
	cmds chan func()
	done chan struct{}
}

func newWorker() *worker {
	w := &worker{
		cmds: make(chan func(), 64),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	defer close(w.done)
	for cmd := range w.cmds {
		cmd()
	}
}

// stop closes the command channel once queued work drains, and waits for
// the goroutine to exit. Must only be called once.
func (w *worker) stop() {
	close(w.cmds)
	<-w.done
}

// enqueue runs f on the worker without waiting for it to complete — the
// fire-and-forget shape every surface-facing command uses.
func (w *worker) enqueue(f func()) {
	w.cmds <- f
}

// enqueueSync runs f on the worker and blocks until it has run, for calls
// whose caller needs to observe the result (Init, Destroy).
func (w *worker) enqueueSync(f func()) {
	done := make(chan struct{})
	w.cmds <- func() {
		f()
		close(done)
	}
	<-done
}

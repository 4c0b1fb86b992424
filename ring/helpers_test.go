package ring

import (
	"sync"
	"time"

	"go-ringbridge/fakedaw"
)

// eventRecorder is a ring.Sink that buffers every emitted Event for
// assertion. Safe for concurrent use since the worker can emit from the
// five-way fetch's completion closure as well as ordinary commands.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	r.events = nil
	return out
}

func (r *eventRecorder) ofKind(kind EventKind) []Event {
	var out []Event
	for _, e := range r.drain() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// settle blocks until every command already enqueued on m's worker has
// run, by enqueueing a no-op behind them and waiting for it.
func settle(m *Manager) {
	m.w.enqueueSync(func() {})
}

// waitParamSwitchSettled blocks until the five-way selected-parameter
// fetch that beginParamSwitch spawns off the worker has rejoined it and
// cleared selectedParamSwitching. The fetch itself runs on its own
// goroutines, so settle alone can race ahead of it.
func waitParamSwitchSettled(m *Manager) {
	for i := 0; i < 200; i++ {
		var switching bool
		m.w.enqueueSync(func() { switching = m.selectedParamSwitching })
		if !switching {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// newTestManager builds a Manager over a fresh fakedaw.Song with n regular
// tracks seeded, wired to rec, initialized, and windowed to width.
func newTestManager(n, width int) (*Manager, *fakedaw.Song, *eventRecorder) {
	song := fakedaw.NewSong()
	for i := 0; i < n; i++ {
		song.AddTrack(trackName(i), false)
	}
	rec := &eventRecorder{}
	m := NewManager(song, rec.sink)
	m.Init()
	m.SetupRing(width, 1, 0, 0)
	settle(m)
	rec.drain() // discard the initial full sync so tests start from a clean slate
	return m, song, rec
}

func trackName(i int) string {
	return "Track " + string(rune('A'+i))
}

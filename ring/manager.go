// Package ring implements RingManager: a stateful subscription engine that
// maintains a differential set of event listeners over a sliding window of
// DAW tracks, keeps a per-entity cache consistent with a remote system it
// does not control, and emits a single outbound event grammar a hardware
// surface can render from. It depends only on the daw package's contracts
// — never on a concrete DAW binding or a concrete surface sink.
package ring

import (
	"github.com/golang/glog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go-ringbridge/daw"
)

// Manager is the core. All of its mutable state is touched only from its
// own worker goroutine; every exported method enqueues a closure rather
// than mutating directly, so the "single logical worker" execution model
// holds regardless of which goroutine the caller is on.
type Manager struct {
	w *worker

	song daw.Song
	sink Sink

	tracks []daw.Track // last value of VisibleTracks(), refreshed on demand

	width       int
	scenes      int
	trackOffset int
	sceneOffset int

	currentRingTrackIds []daw.TrackID
	ringIndexByTrackId  map[daw.TrackID]int

	ringSubs  *SubscriptionGroup
	focusSubs *SubscriptionGroup

	trackStates map[daw.TrackID]*TrackState
	mixerCache  map[daw.TrackID]*mixerHandle

	activeProperty ActiveProperty

	selectedTrackID    daw.TrackID
	selectedTrackIndex int
	selectedTrackName  string
	selectedTrackColor daw.Color

	playingClipName  string
	playingClipColor daw.Color

	selectedParam          daw.DeviceParameter
	selectedParamName      string
	selectedParamValue     float64
	selectedParamMin       float64
	selectedParamMax       float64
	selectedParamDefault   float64
	selectedParamSwitching bool

	isPlaying   bool
	isRecording bool

	initialized bool
}

// NewManager constructs a Manager over song, emitting every outbound
// event through sink. The ring starts empty; call Init then SetupRing.
func NewManager(song daw.Song, sink Sink) *Manager {
	return &Manager{
		w:                  newWorker(),
		song:               song,
		sink:               sink,
		ringSubs:           NewSubscriptionGroup(),
		focusSubs:          NewSubscriptionGroup(),
		trackStates:        make(map[daw.TrackID]*TrackState),
		mixerCache:         make(map[daw.TrackID]*mixerHandle),
		ringIndexByTrackId: make(map[daw.TrackID]int),
		selectedTrackIndex: -1,
		activeProperty:     Volume(),
	}
}

// SetSink replaces the outbound sink. Intended for process wiring, where
// the sinks themselves (e.g. a pad bridge) need a constructed Manager to
// dispatch commands back onto before they can be registered as the
// Manager's sink — breaking that construction cycle without exposing any
// other internal state.
func (m *Manager) SetSink(sink Sink) {
	m.w.enqueueSync(func() { m.sink = sink })
}

// Init creates the focus subscriptions and global track-list listeners.
// The ring itself stays empty until SetupRing. Safe to call once.
func (m *Manager) Init() {
	m.w.enqueueSync(func() {
		if m.initialized {
			return
		}
		m.refreshTracks()

		if unsub, err := m.song.AddTracksListener(func() {
			m.w.enqueue(func() {
				m.refreshTracks()
				m.syncRingListeners()
			})
		}); err != nil {
			glog.Warningf("ring: subscribe tracks: %v", err)
		} else {
			m.focusSubs.Add("tracks", unsub)
		}

		if unsub, err := m.song.AddReturnTracksListener(func() {
			m.w.enqueue(m.onReturnTracksChanged)
		}); err != nil {
			glog.Warningf("ring: subscribe return_tracks: %v", err)
		} else {
			m.focusSubs.Add("return_tracks", unsub)
		}

		m.initFocusSubscriptions()
		m.initialized = true
	})
}

// refreshTracks re-reads the visible track list. The core prefers
// VisibleTracks over Tracks for fold-awareness (see DESIGN.md); it is
// re-read here, on every tracks event, and before every navigation.
func (m *Manager) refreshTracks() {
	m.tracks = m.song.VisibleTracks()
}

func (m *Manager) trackByID(id daw.TrackID) daw.Track {
	for _, t := range m.tracks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

func (m *Manager) absoluteIndexOf(id daw.TrackID) int {
	for i, t := range m.tracks {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

func (m *Manager) ringIndexToID(ringIndex int) (daw.TrackID, bool) {
	if ringIndex < 0 || ringIndex >= len(m.currentRingTrackIds) {
		return "", false
	}
	return m.currentRingTrackIds[ringIndex], true
}

// clampOffset bounds off to [0, max(0, total-width)].
func clampOffset(off, total, width int) int {
	max := total - width
	if max < 0 {
		max = 0
	}
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetupRing installs the window dimensions and offsets, asks the DAW to
// align its session box accordingly, and runs the first diff.
func (m *Manager) SetupRing(width, scenes, trackOffset, sceneOffset int) {
	m.w.enqueue(func() {
		m.width = width
		m.scenes = scenes
		if err := m.song.Session().SetupSessionBox(width, scenes); err != nil {
			glog.Warningf("ring: setup session box: %v", err)
		}
		m.setOffsetLocked(trackOffset, sceneOffset)
	})
}

// SetOffset moves the window without changing its dimensions.
func (m *Manager) SetOffset(trackOffset, sceneOffset int) {
	m.w.enqueue(func() { m.setOffsetLocked(trackOffset, sceneOffset) })
}

func (m *Manager) setOffsetLocked(trackOffset, sceneOffset int) {
	m.trackOffset = clampOffset(trackOffset, len(m.tracks), m.width)
	m.sceneOffset = sceneOffset
	if err := m.song.Session().SetSessionOffset(m.trackOffset, m.sceneOffset); err != nil {
		glog.Warningf("ring: set session offset: %v", err)
	}
	m.syncRingListeners()
}

// NavigateRing shifts the window by one track in dir (-1 left, +1 right).
// A no-op at the boundary emits nothing.
func (m *Manager) NavigateRing(dir int) {
	m.w.enqueue(func() {
		m.refreshTracks()
		newOffset := clampOffset(m.trackOffset+dir, len(m.tracks), m.width)
		if newOffset == m.trackOffset {
			return
		}
		m.setOffsetLocked(newOffset, m.sceneOffset)
		if id, ok := m.ringIndexToID(0); ok {
			if t := m.trackByID(id); t != nil {
				if err := m.song.View().SetSelectedTrack(t); err != nil {
					glog.Warningf("ring: select track after navigate: %v", err)
				}
			}
		}
	})
}

// syncRingListeners is the window diff engine: compute enter/leave sets
// against the current window, tear down leavers before building enterers,
// rebuild the index map in between so the first callback after a
// subscribe resolves to the right ring index, then re-sync everything.
func (m *Manager) syncRingListeners() {
	total := len(m.tracks)
	end := m.trackOffset + m.width
	if end > total {
		end = total
	}
	var window []daw.Track
	if m.trackOffset < total && m.trackOffset < end {
		window = m.tracks[m.trackOffset:end]
	}

	newIds := make([]daw.TrackID, len(window))
	for i, t := range window {
		newIds[i] = t.ID()
	}
	oldIds := m.currentRingTrackIds

	for _, id := range oldIds {
		if !slices.Contains(newIds, id) {
			m.ringSubs.RemoveByPrefix("track:" + string(id) + ":")
			delete(m.ringIndexByTrackId, id)
			delete(m.trackStates, id)
			delete(m.mixerCache, id)
		}
	}

	newIndex := make(map[daw.TrackID]int, len(newIds))
	for i, id := range newIds {
		newIndex[id] = i
	}
	m.ringIndexByTrackId = newIndex

	for _, t := range window {
		if !slices.Contains(oldIds, t.ID()) {
			m.buildTrack(t)
		}
	}

	m.currentRingTrackIds = newIds
	m.sendFullSync()
}

// onReturnTracksChanged rebuilds the sends cache for every ring-resident
// track — adding a return track adds one send to every existing track's
// mixer, which syncRingListeners alone would not pick up for tracks that
// stay resident across the change.
func (m *Manager) onReturnTracksChanged() {
	m.refreshTracks()
	for _, id := range m.currentRingTrackIds {
		t := m.trackByID(id)
		ts := m.trackStates[id]
		mh := m.mixerCache[id]
		if t == nil || ts == nil || mh == nil || ts.IsMaster {
			continue
		}
		sendParams, err := t.MixerDevice().Sends()
		if err != nil {
			glog.Warningf("ring: track %s re-fetch sends: %v", id, err)
			continue
		}
		m.ringSubs.RemoveByPrefix("track:" + string(id) + ":send:")
		mh.sends = sendParams
		ts.Sends = make([]float64, len(sendParams))
		prefix := "track:" + string(id) + ":"
		for i, sp := range sendParams {
			if v, err := sp.Value(); err != nil {
				glog.Warningf("ring: track %s send %d: %v", id, i, err)
			} else {
				ts.Sends[i] = v
			}
			m.subscribeSend(id, prefix, i, sp)
		}
	}
	m.syncRingListeners()
}

// Destroy tears down every subscription in both groups and clears every
// cache, then stops the worker. Reuse of a Manager after Destroy is
// undefined.
func (m *Manager) Destroy() {
	m.w.enqueueSync(func() {
		m.ringSubs.Clear()
		m.focusSubs.Clear()
		maps.Clear(m.trackStates)
		maps.Clear(m.mixerCache)
		maps.Clear(m.ringIndexByTrackId)
		m.currentRingTrackIds = nil
		m.initialized = false
	})
	m.w.stop()
}

// Package fakedaw is a complete in-memory implementation of the daw
// contracts, used by every ring test and by cmd/ringbridge when run
// without a live DAW attached. State mutation is serialized through a
// single worker goroutine per Song, the same cooperative-scheduler shape
// a real async RPC transport would impose, so tests exercise the same
// suspension-point ordering a live session would produce.
package fakedaw

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"go-ringbridge/daw"
)

// Song is the in-memory double of daw.Song (and, via Song.View/Song.Session,
// of daw.View and daw.Session too).
type Song struct {
	w *worker

	tracks       []*Track
	returnTracks []*Track
	master       *Track
	visible      map[daw.TrackID]bool

	tracksListeners       listenable[struct{}]
	returnTracksListeners listenable[struct{}]

	isPlaying  listenable[bool]
	recordMode listenable[bool]

	selectedTrack     listenable[daw.TrackID]
	selectedParameter listenable[*DeviceParameter]

	sessionWidth, sessionHeight           int
	sessionTrackOffset, sessionSceneOffset int
}

// NewSong creates an empty Song: no tracks, no return tracks, no master.
// Use AddTrack / AddReturnTrack / SetMasterTrack to populate it.
func NewSong() *Song {
	s := &Song{
		w:       newWorker(),
		visible: map[daw.TrackID]bool{},
	}
	s.selectedTrack.value = ""
	return s
}

// Close stops the Song's worker goroutine. Safe to call once; a Song must
// not be used afterward.
func (s *Song) Close() { s.w.stop() }

func newTrackID() daw.TrackID {
	return daw.TrackID(ulid.Make().String())
}

// AddTrack appends a new regular track (audio or MIDI) and marks it
// visible, returning it for further test setup (sends, clips, etc).
func (s *Song) AddTrack(name string, isMIDI bool) *Track {
	var t *Track
	call(s.w, func() {
		t = newTrack(s.w, newTrackID(), name, isMIDI, !isMIDI, true)
		for _, rt := range s.returnTracks {
			t.mixer.AddSend(s.w)
			_ = rt
		}
		s.tracks = append(s.tracks, t)
		s.visible[t.id] = true
		s.tracksListeners.notify()
	})
	return t
}

// AddReturnTrack appends a new return track, not visible in the ordinary
// track list, and adds a corresponding send (one scalar per return
// track) to every existing track's mixer.
func (s *Song) AddReturnTrack(name string) *Track {
	var t *Track
	call(s.w, func() {
		t = newTrack(s.w, newTrackID(), name, false, true, false)
		s.returnTracks = append(s.returnTracks, t)
		for _, existing := range s.tracks {
			existing.mixer.AddSend(s.w)
		}
		s.returnTracksListeners.notify()
	})
	return t
}

// SetMasterTrack installs the distinguished master track.
func (s *Song) SetMasterTrack(name string) *Track {
	var t *Track
	call(s.w, func() {
		t = newTrack(s.w, newTrackID(), name, false, true, false)
		t.isMaster = true
		s.master = t
	})
	return t
}

// SetVisible marks a track hidden or visible (group-track folding), for
// testing the "tracks fires on fold" open question.
func (s *Song) SetVisible(id daw.TrackID, visible bool) {
	call(s.w, func() {
		s.visible[id] = visible
		s.tracksListeners.notify()
	})
}

func (s *Song) Tracks() []daw.Track {
	return callR(s.w, func() []daw.Track {
		out := make([]daw.Track, len(s.tracks))
		for i, t := range s.tracks {
			out[i] = t
		}
		return out
	})
}

func (s *Song) ReturnTracks() []daw.Track {
	return callR(s.w, func() []daw.Track {
		out := make([]daw.Track, len(s.returnTracks))
		for i, t := range s.returnTracks {
			out[i] = t
		}
		return out
	})
}

func (s *Song) VisibleTracks() []daw.Track {
	return callR(s.w, func() []daw.Track {
		var out []daw.Track
		for _, t := range s.tracks {
			if s.visible[t.id] {
				out = append(out, t)
			}
		}
		return out
	})
}

func (s *Song) MasterTrack() daw.Track {
	if s.master == nil {
		return nil
	}
	return s.master
}

func (s *Song) AddTracksListener(cb func()) (daw.Unsubscribe, error) {
	var unsub func()
	call(s.w, func() { unsub = s.tracksListeners.addListener(func(struct{}) { cb() }) })
	return func() error { call(s.w, unsub); return nil }, nil
}

func (s *Song) AddReturnTracksListener(cb func()) (daw.Unsubscribe, error) {
	var unsub func()
	call(s.w, func() { unsub = s.returnTracksListeners.addListener(func(struct{}) { cb() }) })
	return func() error { call(s.w, unsub); return nil }, nil
}

func (s *Song) IsPlaying() (bool, error)  { return callR(s.w, s.isPlaying.get), nil }
func (s *Song) RecordMode() (bool, error) { return callR(s.w, s.recordMode.get), nil }

func (s *Song) AddIsPlayingListener(cb func(bool)) (daw.Unsubscribe, error) {
	var unsub func()
	call(s.w, func() { unsub = s.isPlaying.addListener(cb) })
	return func() error { call(s.w, unsub); return nil }, nil
}

func (s *Song) AddRecordModeListener(cb func(bool)) (daw.Unsubscribe, error) {
	var unsub func()
	call(s.w, func() { unsub = s.recordMode.addListener(cb) })
	return func() error { call(s.w, unsub); return nil }, nil
}

func (s *Song) StartPlaying() error {
	call(s.w, func() { s.isPlaying.setAndNotify(true, equalComparable[bool]) })
	return nil
}

func (s *Song) StopPlaying() error {
	call(s.w, func() { s.isPlaying.setAndNotify(false, equalComparable[bool]) })
	return nil
}

// SimulateRecordMode mimics the transport's record state changing, e.g.
// from the DAW's own GUI.
func (s *Song) SimulateRecordMode(v bool) {
	call(s.w, func() { s.recordMode.setAndNotify(v, equalComparable[bool]) })
}

// SimulateIsPlaying is the StartPlaying/StopPlaying equivalent for
// external transport changes that didn't originate from this bridge.
func (s *Song) SimulateIsPlaying(v bool) {
	call(s.w, func() { s.isPlaying.setAndNotify(v, equalComparable[bool]) })
}

func (s *Song) View() daw.View       { return (*songView)(s) }
func (s *Song) Session() daw.Session { return (*songSession)(s) }

// SelectTrack mimics the user clicking a different track in the DAW.
func (s *Song) SelectTrack(id daw.TrackID) {
	call(s.w, func() { s.selectedTrack.setAndNotify(id, equalComparable[daw.TrackID]) })
}

// SelectParameter mimics the user clicking a device parameter. Pass nil
// to clear the selection.
func (s *Song) SelectParameter(p *DeviceParameter) {
	call(s.w, func() {
		s.selectedParameter.setAndNotify(p, func(a, b *DeviceParameter) bool { return a == b })
	})
}

func (s *Song) trackByID(id daw.TrackID) *Track {
	for _, t := range s.tracks {
		if t.id == id {
			return t
		}
	}
	if s.master != nil && s.master.id == id {
		return s.master
	}
	return nil
}

// songView adapts *Song to daw.View without exposing Song's own
// track/transport methods under the View name.
type songView Song

func (v *songView) SelectedTrack() (daw.Track, error) {
	s := (*Song)(v)
	id := callR(s.w, s.selectedTrack.get)
	if id == "" {
		return nil, nil
	}
	t := callR(s.w, func() *Track { return s.trackByID(id) })
	if t == nil {
		return nil, fmt.Errorf("fakedaw: selected track %s no longer exists", id)
	}
	return t, nil
}

func (v *songView) SetSelectedTrack(t daw.Track) error {
	s := (*Song)(v)
	id := daw.TrackID("")
	if t != nil {
		id = t.ID()
	}
	call(s.w, func() { s.selectedTrack.setAndNotify(id, equalComparable[daw.TrackID]) })
	return nil
}

func (v *songView) AddSelectedTrackListener(cb func()) (daw.Unsubscribe, error) {
	s := (*Song)(v)
	var unsub func()
	call(s.w, func() {
		unsub = s.selectedTrack.addListener(func(daw.TrackID) { cb() })
	})
	return func() error { call(s.w, unsub); return nil }, nil
}

func (v *songView) SelectedParameter() (daw.DeviceParameter, error) {
	s := (*Song)(v)
	p := callR(s.w, s.selectedParameter.get)
	if p == nil {
		return nil, nil
	}
	return p, nil
}

func (v *songView) AddSelectedParameterListener(cb func()) (daw.Unsubscribe, error) {
	s := (*Song)(v)
	var unsub func()
	call(s.w, func() {
		unsub = s.selectedParameter.addListener(func(*DeviceParameter) { cb() })
	})
	return func() error { call(s.w, unsub); return nil }, nil
}

func (v *songView) SelectedScene() (int, error) { return 0, nil }

// songSession adapts *Song to daw.Session; it just records the values the
// core asked for so tests can assert on them.
type songSession Song

func (s *songSession) SetupSessionBox(width, height int) error {
	song := (*Song)(s)
	call(song.w, func() {
		song.sessionWidth, song.sessionHeight = width, height
	})
	return nil
}

func (s *songSession) SetSessionOffset(trackOffset, sceneOffset int) error {
	song := (*Song)(s)
	call(song.w, func() {
		song.sessionTrackOffset, song.sessionSceneOffset = trackOffset, sceneOffset
	})
	return nil
}

// SessionBox returns the (width, height) last requested via
// Session().SetupSessionBox, for test assertions.
func (s *Song) SessionBox() (int, int) {
	box := callR(s.w, func() [2]int { return [2]int{s.sessionWidth, s.sessionHeight} })
	return box[0], box[1]
}

// SessionOffset returns the (trackOffset, sceneOffset) last requested via
// Session().SetSessionOffset, for test assertions.
func (s *Song) SessionOffset() (int, int) {
	off := callR(s.w, func() [2]int { return [2]int{s.sessionTrackOffset, s.sessionSceneOffset} })
	return off[0], off[1]
}

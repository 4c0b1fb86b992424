package ring

import (
	"sync"

	"github.com/golang/glog"

	"go-ringbridge/daw"
)

// initFocusSubscriptions wires the live subscriptions to selected track,
// playing clip, selected parameter, and transport. Called once from Init,
// on the worker.
func (m *Manager) initFocusSubscriptions() {
	if unsub, err := m.song.View().AddSelectedTrackListener(func() {
		m.w.enqueue(m.onSelectedTrackChanged)
	}); err != nil {
		glog.Warningf("ring: subscribe selected_track: %v", err)
	} else {
		m.focusSubs.Add("selected_track", unsub)
	}
	m.onSelectedTrackChanged()

	if unsub, err := m.song.View().AddSelectedParameterListener(func() {
		m.w.enqueue(m.beginParamSwitch)
	}); err != nil {
		glog.Warningf("ring: subscribe selected_parameter: %v", err)
	} else {
		m.focusSubs.Add("selected_parameter", unsub)
	}
	m.beginParamSwitch()

	if playing, err := m.song.IsPlaying(); err != nil {
		glog.Warningf("ring: read is_playing: %v", err)
	} else {
		m.isPlaying = playing
	}
	if recording, err := m.song.RecordMode(); err != nil {
		glog.Warningf("ring: read record_mode: %v", err)
	} else {
		m.isRecording = recording
	}
	m.emitTransport()

	if unsub, err := m.song.AddIsPlayingListener(func(v bool) {
		m.w.enqueue(func() {
			if m.isPlaying != v {
				m.isPlaying = v
				m.emitTransport()
			}
		})
	}); err != nil {
		glog.Warningf("ring: subscribe is_playing: %v", err)
	} else {
		m.focusSubs.Add("transport:playing", unsub)
	}

	if unsub, err := m.song.AddRecordModeListener(func(v bool) {
		m.w.enqueue(func() {
			if m.isRecording != v {
				m.isRecording = v
				m.emitTransport()
			}
		})
	}); err != nil {
		glog.Warningf("ring: subscribe record_mode: %v", err)
	} else {
		m.focusSubs.Add("transport:recording", unsub)
	}
}

// onSelectedTrackChanged re-reads song.View().SelectedTrack(), follows the
// ring window if the new selection is outside it, replaces the
// name/color subscriptions on the selected track, and rewires the
// playing-clip subscription.
func (m *Manager) onSelectedTrackChanged() {
	t, err := m.song.View().SelectedTrack()
	if err != nil {
		glog.Warningf("ring: read selected_track: %v", err)
		t = nil
	}

	var id daw.TrackID
	absIdx := -1
	if t != nil {
		id = t.ID()
		absIdx = m.absoluteIndexOf(id)
	}
	m.selectedTrackID = id
	m.selectedTrackIndex = absIdx

	if absIdx >= 0 {
		if _, inRing := m.ringIndexByTrackId[id]; !inRing {
			m.setOffsetLocked(clampOffset(absIdx, len(m.tracks), m.width), m.sceneOffset)
		}
	}

	m.focusSubs.RemoveByPrefix("selected_track_prop:")
	if t == nil {
		m.selectedTrackName = ""
		m.selectedTrackColor = daw.Color{}
	} else {
		if name, err := t.Name(); err != nil {
			glog.Warningf("ring: selected track name: %v", err)
		} else {
			m.selectedTrackName = name
		}
		if color, err := t.Color(); err != nil {
			glog.Warningf("ring: selected track color: %v", err)
		} else {
			m.selectedTrackColor = color
		}

		if unsub, err := t.AddNameListener(func(name string) {
			m.w.enqueue(func() {
				m.selectedTrackName = name
				m.emitSelected()
			})
		}); err != nil {
			glog.Warningf("ring: subscribe selected track name: %v", err)
		} else {
			m.focusSubs.Add("selected_track_prop:name", unsub)
		}

		if unsub, err := t.AddColorListener(func(c daw.Color) {
			m.w.enqueue(func() {
				m.selectedTrackColor = c
				m.emitSelected()
			})
		}); err != nil {
			glog.Warningf("ring: subscribe selected track color: %v", err)
		} else {
			m.focusSubs.Add("selected_track_prop:color", unsub)
		}
	}

	m.emitSelected()
	m.onSelectedTrackChangedForClip(t)
}

// onSelectedTrackChangedForClip rewires the playing-clip slot listener for
// the newly-selected track.
func (m *Manager) onSelectedTrackChangedForClip(t daw.Track) {
	m.focusSubs.RemoveByPrefix("selected_track_clip:")
	if t == nil {
		m.playingClipName, m.playingClipColor = "", daw.Color{}
		m.emitPlayingClip("", daw.Color{})
		return
	}

	if unsub, err := t.AddPlayingSlotIndexListener(func(idx int) {
		m.w.enqueue(func() { m.onPlayingSlotChanged(t, idx) })
	}); err != nil {
		glog.Warningf("ring: subscribe playing_slot_index: %v", err)
	} else {
		m.focusSubs.Add("selected_track_clip:slot", unsub)
	}

	idx, err := t.PlayingSlotIndex()
	if err != nil {
		glog.Warningf("ring: read playing_slot_index: %v", err)
		idx = -1
	}
	m.onPlayingSlotChanged(t, idx)
}

// onPlayingSlotChanged tears down the prior clip-property subscriptions
// and, if the slot holds a non-empty clip, fetches and subscribes its
// name/color.
func (m *Manager) onPlayingSlotChanged(t daw.Track, idx int) {
	m.focusSubs.RemoveByPrefix("selected_track_clip:props")
	m.playingClipName, m.playingClipColor = "", daw.Color{}

	if idx < 0 {
		m.emitPlayingClip("", daw.Color{})
		return
	}

	slots, err := t.ClipSlots()
	if err != nil {
		glog.Warningf("ring: read clip_slots: %v", err)
		m.emitPlayingClip("", daw.Color{})
		return
	}
	if idx >= len(slots) {
		m.emitPlayingClip("", daw.Color{})
		return
	}
	slot := slots[idx]
	hasClip, err := slot.HasClip()
	if err != nil {
		glog.Warningf("ring: read has_clip: %v", err)
		m.emitPlayingClip("", daw.Color{})
		return
	}
	if !hasClip {
		m.emitPlayingClip("", daw.Color{})
		return
	}
	clip, err := slot.Clip()
	if err != nil || clip == nil {
		if err != nil {
			glog.Warningf("ring: read clip: %v", err)
		}
		m.emitPlayingClip("", daw.Color{})
		return
	}

	name, err := clip.Name()
	if err != nil {
		glog.Warningf("ring: clip name: %v", err)
	}
	color, err := clip.Color()
	if err != nil {
		glog.Warningf("ring: clip color: %v", err)
	}
	m.playingClipName, m.playingClipColor = name, color

	if unsub, err := clip.AddNameListener(func(n string) {
		m.w.enqueue(func() {
			m.playingClipName = n
			m.emitPlayingClipCached()
		})
	}); err != nil {
		glog.Warningf("ring: subscribe clip name: %v", err)
	} else {
		m.focusSubs.Add("selected_track_clip:props:name", unsub)
	}

	if unsub, err := clip.AddColorListener(func(c daw.Color) {
		m.w.enqueue(func() {
			m.playingClipColor = c
			m.emitPlayingClipCached()
		})
	}); err != nil {
		glog.Warningf("ring: subscribe clip color: %v", err)
	} else {
		m.focusSubs.Add("selected_track_clip:props:color", unsub)
	}

	m.emitPlayingClip(name, color)
}

// paramMetadata is the result of the five-way selected-parameter fetch.
type paramMetadata struct {
	name               string
	value, min, max, def float64
	ok                 bool
}

// beginParamSwitch tears down the value listener, reads the (possibly
// null) selected parameter, and if non-null kicks off the five-way fetch
// off the worker so the worker stays free — any command arriving while
// the fetch is in flight observes selectedParamSwitching == true and is
// dropped.
func (m *Manager) beginParamSwitch() {
	m.selectedParamSwitching = true
	m.focusSubs.Remove("selected_param:value")

	param, err := m.song.View().SelectedParameter()
	if err != nil {
		glog.Warningf("ring: read selected_parameter: %v", err)
		param = nil
	}
	if param == nil {
		m.selectedParam = nil
		m.selectedParamName = ""
		m.selectedParamValue, m.selectedParamMin, m.selectedParamMax, m.selectedParamDefault = 0, 0, 0, 0
		m.emitParamBlank()
		m.selectedParamSwitching = false
		return
	}
	go m.fetchParamMetadata(param)
}

func (m *Manager) fetchParamMetadata(param daw.DeviceParameter) {
	var wg sync.WaitGroup
	var md paramMetadata
	var nameErr, valueErr, minErr, maxErr, defErr error

	wg.Add(5)
	go func() { defer wg.Done(); md.name, nameErr = param.Name() }()
	go func() { defer wg.Done(); md.value, valueErr = param.Value() }()
	go func() { defer wg.Done(); md.min, minErr = param.Min() }()
	go func() { defer wg.Done(); md.max, maxErr = param.Max() }()
	go func() { defer wg.Done(); md.def, defErr = param.DefaultValue() }()
	wg.Wait()

	md.ok = nameErr == nil && valueErr == nil && minErr == nil && maxErr == nil && defErr == nil
	if !md.ok {
		glog.Warningf("ring: selected parameter metadata fetch failed: name=%v value=%v min=%v max=%v default=%v",
			nameErr, valueErr, minErr, maxErr, defErr)
	}
	m.w.enqueue(func() { m.completeParamSwitch(param, md) })
}

func (m *Manager) completeParamSwitch(param daw.DeviceParameter, md paramMetadata) {
	if !md.ok {
		m.selectedParam = nil
		m.selectedParamName = ""
		m.selectedParamValue, m.selectedParamMin, m.selectedParamMax, m.selectedParamDefault = 0, 0, 0, 0
		m.emitParamBlank()
		m.selectedParamSwitching = false
		return
	}

	m.selectedParam = param
	m.selectedParamName = md.name
	m.selectedParamValue = md.value
	m.selectedParamMin = md.min
	m.selectedParamMax = md.max
	m.selectedParamDefault = md.def

	if unsub, err := param.AddValueListener(func(v float64) {
		m.w.enqueue(func() {
			m.selectedParamValue = v
			m.emitParam()
		})
	}); err != nil {
		glog.Warningf("ring: subscribe selected parameter value: %v", err)
	} else {
		m.focusSubs.Add("selected_param:value", unsub)
	}

	m.emitParam()
	m.selectedParamSwitching = false
}

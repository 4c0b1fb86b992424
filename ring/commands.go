package ring

import "github.com/golang/glog"

// DefaultStep is the encoder delta unit every relative adjust command
// scales by: 1/127, one MIDI CC tick.
const DefaultStep = 1.0 / 127.0

// ToggleMute writes the inverse of the cached mute state of the track at
// ringIndex; the cache itself is left untouched. Confirmation (and the outbound RT_MUTE) arrives
// through the property listener, never speculatively here.
func (m *Manager) ToggleMute(ringIndex int) {
	m.w.enqueue(func() {
		id, ok := m.ringIndexToID(ringIndex)
		if !ok {
			return
		}
		t := m.trackByID(id)
		ts := m.trackStates[id]
		if t == nil || ts == nil {
			return
		}
		if err := t.SetMute(!ts.Mute); err != nil {
			glog.Warningf("ring: set mute track=%s: %v", id, err)
		}
	})
}

// ToggleSolo is ToggleMute's solo equivalent.
func (m *Manager) ToggleSolo(ringIndex int) {
	m.w.enqueue(func() {
		id, ok := m.ringIndexToID(ringIndex)
		if !ok {
			return
		}
		t := m.trackByID(id)
		ts := m.trackStates[id]
		if t == nil || ts == nil {
			return
		}
		if err := t.SetSolo(!ts.Solo); err != nil {
			glog.Warningf("ring: set solo track=%s: %v", id, err)
		}
	})
}

// ToggleArm is ToggleMute's arm equivalent. A track that cannot be armed
// silently no-ops.
func (m *Manager) ToggleArm(ringIndex int) {
	m.w.enqueue(func() {
		id, ok := m.ringIndexToID(ringIndex)
		if !ok {
			return
		}
		t := m.trackByID(id)
		ts := m.trackStates[id]
		if t == nil || ts == nil || !ts.CanBeArmed {
			return
		}
		if err := t.SetArm(!ts.Arm); err != nil {
			glog.Warningf("ring: set arm track=%s: %v", id, err)
		}
	})
}

// SetVolume writes a raw 0..1 volume value to the track at ringIndex.
func (m *Manager) SetVolume(ringIndex int, value float64) {
	m.w.enqueue(func() {
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil || mh.volume == nil {
			return
		}
		if err := mh.volume.SetValue(value); err != nil {
			glog.Warningf("ring: set volume ringIndex=%d: %v", ringIndex, err)
		}
	})
}

// SetPanning writes a raw -1..1 panning value.
func (m *Manager) SetPanning(ringIndex int, value float64) {
	m.w.enqueue(func() {
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil || mh.panning == nil {
			return
		}
		if err := mh.panning.SetValue(value); err != nil {
			glog.Warningf("ring: set panning ringIndex=%d: %v", ringIndex, err)
		}
	})
}

// SetSend writes a raw 0..1 value to the sendIndex'th send of the track at
// ringIndex. Out-of-range sendIndex silently no-ops.
func (m *Manager) SetSend(ringIndex, sendIndex int, value float64) {
	m.w.enqueue(func() {
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil || sendIndex < 0 || sendIndex >= len(mh.sends) {
			return
		}
		if err := mh.sends[sendIndex].SetValue(value); err != nil {
			glog.Warningf("ring: set send ringIndex=%d send=%d: %v", ringIndex, sendIndex, err)
		}
	})
}

func (m *Manager) mixerHandleFor(ringIndex int) *mixerHandle {
	id, ok := m.ringIndexToID(ringIndex)
	if !ok {
		return nil
	}
	return m.mixerCache[id]
}

// SelectTrackInRing asks the DAW to select the track currently occupying
// ringIndex.
func (m *Manager) SelectTrackInRing(ringIndex int) {
	m.w.enqueue(func() {
		id, ok := m.ringIndexToID(ringIndex)
		if !ok {
			return
		}
		t := m.trackByID(id)
		if t == nil {
			return
		}
		if err := m.song.View().SetSelectedTrack(t); err != nil {
			glog.Warningf("ring: select track ringIndex=%d: %v", ringIndex, err)
		}
	})
}

// SetActiveProperty assigns the property every ring index's encoder/fader
// commands currently target, then immediately pushes its current values
// so the surface doesn't wait for the next change event to redraw.
func (m *Manager) SetActiveProperty(p ActiveProperty) {
	m.w.enqueue(func() {
		m.activeProperty = p
		m.sendActivePropertyState()
	})
}

func (m *Manager) sendActivePropertyState() {
	if m.activeProperty.Kind == PropertySelectedParameter {
		m.emitParam()
		return
	}
	for idx, id := range m.currentRingTrackIds {
		ts := m.trackStates[id]
		if ts == nil {
			continue
		}
		switch m.activeProperty.Kind {
		case PropertyVolume:
			if !ts.IsMIDI {
				m.emitVolume(idx, ts.Volume)
			}
		case PropertyPanning:
			if !ts.IsMIDI {
				m.emitPanning(idx, ts.Panning)
			}
		case PropertySend:
			si := m.activeProperty.SendIndex
			if si >= 0 && si < len(ts.Sends) {
				m.emitSend(idx, si, ts.Sends[si])
			}
		}
	}
}

// RequestFullState re-emits everything: the ring's full sync, the current
// focus state, the active property's values, and transport.
func (m *Manager) RequestFullState() {
	m.w.enqueue(func() {
		m.sendFullSync()
		m.emitSelected()
		m.emitPlayingClipCached()
		m.sendActivePropertyState()
		m.emitTransport()
	})
}

// SetActivePropertyValue maps an absolute 0..255 surface byte onto the
// active property's native range and writes it. Fire-and-forget; the
// outbound event arrives once the write's listener fires.
func (m *Manager) SetActivePropertyValue(ringIndex int, rawByte int) {
	m.w.enqueue(func() {
		norm := clampFloat(float64(rawByte), 0, 255) / 255
		m.writeActivePropertyValue(ringIndex, norm)
	})
}

func (m *Manager) writeActivePropertyValue(ringIndex int, norm float64) {
	switch m.activeProperty.Kind {
	case PropertyVolume:
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil || mh.volume == nil {
			return
		}
		if err := mh.volume.SetValue(norm); err != nil {
			glog.Warningf("ring: write active volume ringIndex=%d: %v", ringIndex, err)
		}
	case PropertyPanning:
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil || mh.panning == nil {
			return
		}
		if err := mh.panning.SetValue(norm*2 - 1); err != nil {
			glog.Warningf("ring: write active panning ringIndex=%d: %v", ringIndex, err)
		}
	case PropertySend:
		mh := m.mixerHandleFor(ringIndex)
		si := m.activeProperty.SendIndex
		if mh == nil || si < 0 || si >= len(mh.sends) {
			return
		}
		if err := mh.sends[si].SetValue(norm); err != nil {
			glog.Warningf("ring: write active send ringIndex=%d send=%d: %v", ringIndex, si, err)
		}
	case PropertySelectedParameter:
		if m.selectedParamSwitching || m.selectedParam == nil {
			return // dropped while the five-way metadata fetch is in flight, or nothing selected
		}
		value := m.selectedParamMin + norm*(m.selectedParamMax-m.selectedParamMin)
		if err := m.selectedParam.SetValue(value); err != nil {
			glog.Warningf("ring: write active selected parameter: %v", err)
		}
	}
}

// AdjustActivePropertyValue applies a relative encoder delta (in units of
// DefaultStep) to the active property's cached value and writes the
// result — never jumping when the active track or property changes,
// because it always reads the cache rather than accumulating deltas.
func (m *Manager) AdjustActivePropertyValue(ringIndex, delta int) {
	m.w.enqueue(func() { m.adjustActivePropertyValueLocked(ringIndex, float64(delta)) })
}

func (m *Manager) adjustActivePropertyValueLocked(ringIndex int, delta float64) {
	id, ok := m.ringIndexToID(ringIndex)
	if !ok {
		return
	}
	ts := m.trackStates[id]
	mh := m.mixerCache[id]

	switch m.activeProperty.Kind {
	case PropertyVolume:
		if ts == nil || mh == nil || mh.volume == nil {
			return
		}
		v := clampFloat(ts.Volume+delta*DefaultStep, 0, 1)
		if err := mh.volume.SetValue(v); err != nil {
			glog.Warningf("ring: adjust volume ringIndex=%d: %v", ringIndex, err)
		}
	case PropertyPanning:
		if ts == nil || mh == nil || mh.panning == nil {
			return
		}
		v := clampFloat(ts.Panning+delta*DefaultStep*2, -1, 1)
		if err := mh.panning.SetValue(v); err != nil {
			glog.Warningf("ring: adjust panning ringIndex=%d: %v", ringIndex, err)
		}
	case PropertySend:
		si := m.activeProperty.SendIndex
		if ts == nil || mh == nil || si < 0 || si >= len(ts.Sends) || si >= len(mh.sends) {
			return
		}
		v := clampFloat(ts.Sends[si]+delta*DefaultStep, 0, 1)
		if err := mh.sends[si].SetValue(v); err != nil {
			glog.Warningf("ring: adjust send ringIndex=%d send=%d: %v", ringIndex, si, err)
		}
	case PropertySelectedParameter:
		m.adjustSelectedParameterLocked(delta)
	}
}

// AdjustSelectedParameter is AdjustActivePropertyValue's counterpart when
// the active property is already PropertySelectedParameter but the caller
// wants to address it directly (e.g. a dedicated encoder).
func (m *Manager) AdjustSelectedParameter(delta int) {
	m.w.enqueue(func() { m.adjustSelectedParameterLocked(float64(delta)) })
}

func (m *Manager) adjustSelectedParameterLocked(delta float64) {
	if m.selectedParamSwitching || m.selectedParam == nil {
		return // dropped while the five-way metadata fetch is in flight, or nothing selected
	}
	rng := m.selectedParamMax - m.selectedParamMin
	v := clampFloat(m.selectedParamValue+delta*DefaultStep*rng, m.selectedParamMin, m.selectedParamMax)
	if err := m.selectedParam.SetValue(v); err != nil {
		glog.Warningf("ring: adjust selected parameter: %v", err)
	}
}

// ResetActivePropertyValue resets the active property on ringIndex's
// track to its native default: volume 0.85, panning 0, send 0.
func (m *Manager) ResetActivePropertyValue(ringIndex int) {
	m.w.enqueue(func() {
		mh := m.mixerHandleFor(ringIndex)
		if mh == nil {
			return
		}
		switch m.activeProperty.Kind {
		case PropertyVolume:
			if mh.volume != nil {
				if err := mh.volume.SetValue(0.85); err != nil {
					glog.Warningf("ring: reset volume ringIndex=%d: %v", ringIndex, err)
				}
			}
		case PropertyPanning:
			if mh.panning != nil {
				if err := mh.panning.SetValue(0); err != nil {
					glog.Warningf("ring: reset panning ringIndex=%d: %v", ringIndex, err)
				}
			}
		case PropertySend:
			si := m.activeProperty.SendIndex
			if si >= 0 && si < len(mh.sends) {
				if err := mh.sends[si].SetValue(0); err != nil {
					glog.Warningf("ring: reset send ringIndex=%d send=%d: %v", ringIndex, si, err)
				}
			}
		case PropertySelectedParameter:
			m.resetSelectedParameterLocked()
		}
	})
}

// ResetSelectedParameter resets the selected parameter to its clamped
// default value.
func (m *Manager) ResetSelectedParameter() {
	m.w.enqueue(m.resetSelectedParameterLocked)
}

func (m *Manager) resetSelectedParameterLocked() {
	if m.selectedParamSwitching || m.selectedParam == nil {
		return // dropped while the five-way metadata fetch is in flight, or nothing selected
	}
	v := clampFloat(m.selectedParamDefault, m.selectedParamMin, m.selectedParamMax)
	if err := m.selectedParam.SetValue(v); err != nil {
		glog.Warningf("ring: reset selected parameter: %v", err)
	}
}

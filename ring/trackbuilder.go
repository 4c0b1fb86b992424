package ring

import (
	"fmt"

	"github.com/golang/glog"

	"go-ringbridge/daw"
)

// buildTrack fetches a newly-entered track's initial scalar state and
// registers its property listeners. A failure on any one property is
// logged and the rest of the track is still built — a partial state is
// acceptable and self-corrects through subsequent listener callbacks.
func (m *Manager) buildTrack(t daw.Track) {
	id := t.ID()
	ts := &TrackState{ID: id}

	hasMIDI, err := t.HasMIDIInput()
	if err != nil {
		glog.Warningf("ring: track %s has_midi_input: %v", id, err)
	}
	hasAudio, err := t.HasAudioInput()
	if err != nil {
		glog.Warningf("ring: track %s has_audio_input: %v", id, err)
	}
	ts.IsMIDI = hasMIDI && !hasAudio
	ts.IsMaster = m.isMasterTrack(t)

	if name, err := t.Name(); err != nil {
		glog.Warningf("ring: track %s name: %v", id, err)
	} else {
		ts.Name = name
	}
	if color, err := t.Color(); err != nil {
		glog.Warningf("ring: track %s color: %v", id, err)
	} else {
		ts.Color = color
	}
	if !ts.IsMaster {
		if v, err := t.Mute(); err != nil {
			glog.Warningf("ring: track %s mute: %v", id, err)
		} else {
			ts.Mute = v
		}
		if v, err := t.Solo(); err != nil {
			glog.Warningf("ring: track %s solo: %v", id, err)
		} else {
			ts.Solo = v
		}
	}
	if canBeArmed, err := t.CanBeArmed(); err != nil {
		glog.Warningf("ring: track %s can_be_armed: %v", id, err)
	} else {
		ts.CanBeArmed = canBeArmed
		if canBeArmed {
			if v, err := t.Arm(); err != nil {
				glog.Warningf("ring: track %s arm: %v", id, err)
			} else {
				ts.Arm = v
			}
		}
	}

	mixer := t.MixerDevice()
	volParam := mixer.Volume()
	panParam := mixer.Panning()
	if !ts.IsMIDI {
		if v, err := volParam.Value(); err != nil {
			glog.Warningf("ring: track %s volume: %v", id, err)
		} else {
			ts.Volume = v
		}
		if v, err := panParam.Value(); err != nil {
			glog.Warningf("ring: track %s panning: %v", id, err)
		} else {
			ts.Panning = v
		}
	}

	var sendParams []daw.DeviceParameter
	if !ts.IsMaster {
		sendParams, err = mixer.Sends()
		if err != nil {
			glog.Warningf("ring: track %s sends: %v", id, err)
		} else {
			ts.Sends = make([]float64, len(sendParams))
			for i, sp := range sendParams {
				if v, err := sp.Value(); err != nil {
					glog.Warningf("ring: track %s send %d: %v", id, i, err)
				} else {
					ts.Sends[i] = v
				}
			}
		}
	}

	m.trackStates[id] = ts
	m.mixerCache[id] = &mixerHandle{volume: volParam, panning: panParam, sends: sendParams}

	prefix := fmt.Sprintf("track:%s:", id)

	if unsub, err := t.AddNameListener(func(name string) {
		m.w.enqueue(func() {
			if ts, ok := m.trackStates[id]; ok {
				ts.Name = name
				if idx, ok := m.ringIndexByTrackId[id]; ok {
					m.emitInfo(idx, ts)
				}
			}
		})
	}); err != nil {
		glog.Warningf("ring: track %s subscribe name: %v", id, err)
	} else {
		m.ringSubs.Add(prefix+"name", unsub)
	}

	if unsub, err := t.AddColorListener(func(c daw.Color) {
		m.w.enqueue(func() {
			if ts, ok := m.trackStates[id]; ok {
				ts.Color = c
				if idx, ok := m.ringIndexByTrackId[id]; ok {
					m.emitInfo(idx, ts)
				}
			}
		})
	}); err != nil {
		glog.Warningf("ring: track %s subscribe color: %v", id, err)
	} else {
		m.ringSubs.Add(prefix+"color", unsub)
	}

	if !ts.IsMaster {
		if unsub, err := t.AddMuteListener(func(v bool) {
			m.w.enqueue(func() {
				if ts, ok := m.trackStates[id]; ok {
					ts.Mute = v
					if idx, ok := m.ringIndexByTrackId[id]; ok {
						m.emitMute(idx, v)
					}
				}
			})
		}); err != nil {
			glog.Warningf("ring: track %s subscribe mute: %v", id, err)
		} else {
			m.ringSubs.Add(prefix+"mute", unsub)
		}

		if unsub, err := t.AddSoloListener(func(v bool) {
			m.w.enqueue(func() {
				if ts, ok := m.trackStates[id]; ok {
					ts.Solo = v
					if idx, ok := m.ringIndexByTrackId[id]; ok {
						m.emitSolo(idx, v)
					}
				}
			})
		}); err != nil {
			glog.Warningf("ring: track %s subscribe solo: %v", id, err)
		} else {
			m.ringSubs.Add(prefix+"solo", unsub)
		}
	}

	if ts.CanBeArmed {
		if unsub, err := t.AddArmListener(func(v bool) {
			m.w.enqueue(func() {
				if ts, ok := m.trackStates[id]; ok {
					ts.Arm = v
					if idx, ok := m.ringIndexByTrackId[id]; ok {
						m.emitArm(idx, v)
					}
				}
			})
		}); err != nil {
			glog.Warningf("ring: track %s subscribe arm: %v", id, err)
		} else {
			m.ringSubs.Add(prefix+"arm", unsub)
		}
	}

	if !ts.IsMIDI {
		if unsub, err := volParam.AddValueListener(func(v float64) {
			m.w.enqueue(func() {
				if ts, ok := m.trackStates[id]; ok {
					ts.Volume = v
					if idx, ok := m.ringIndexByTrackId[id]; ok {
						m.emitVolume(idx, v)
					}
				}
			})
		}); err != nil {
			glog.Warningf("ring: track %s subscribe volume: %v", id, err)
		} else {
			m.ringSubs.Add(prefix+"volume", unsub)
		}

		if unsub, err := panParam.AddValueListener(func(v float64) {
			m.w.enqueue(func() {
				if ts, ok := m.trackStates[id]; ok {
					ts.Panning = v
					if idx, ok := m.ringIndexByTrackId[id]; ok {
						m.emitPanning(idx, v)
					}
				}
			})
		}); err != nil {
			glog.Warningf("ring: track %s subscribe panning: %v", id, err)
		} else {
			m.ringSubs.Add(prefix+"panning", unsub)
		}
	}

	for i, sp := range sendParams {
		m.subscribeSend(id, prefix, i, sp)
	}
}

// subscribeSend registers the value listener for one send parameter. Split
// out of buildTrack so the return_tracks change path (which rebuilds sends
// for tracks already resident in the ring) can reuse it.
func (m *Manager) subscribeSend(id daw.TrackID, prefix string, i int, sp daw.DeviceParameter) {
	key := fmt.Sprintf("%ssend:%d", prefix, i)
	unsub, err := sp.AddValueListener(func(v float64) {
		m.w.enqueue(func() {
			ts, ok := m.trackStates[id]
			if !ok || i >= len(ts.Sends) {
				return
			}
			ts.Sends[i] = v
			if idx, ok := m.ringIndexByTrackId[id]; ok {
				m.emitSend(idx, i, v)
			}
		})
	})
	if err != nil {
		glog.Warningf("ring: track %s subscribe send %d: %v", id, i, err)
		return
	}
	m.ringSubs.Add(key, unsub)
}

func (m *Manager) isMasterTrack(t daw.Track) bool {
	master := m.song.MasterTrack()
	return master != nil && master.ID() == t.ID()
}

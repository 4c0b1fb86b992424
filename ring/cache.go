package ring

import "go-ringbridge/daw"

// TrackState is the in-memory source of truth for what was last sent to
// the surface for one ring-resident track. It is only ever touched from
// the Manager's worker goroutine.
type TrackState struct {
	ID daw.TrackID

	Name  string
	Color daw.Color

	IsMIDI     bool
	IsMaster   bool
	CanBeArmed bool

	Mute, Solo, Arm bool

	Volume, Panning float64
	Sends           []float64
}

// mixerHandle is the cached (volumeParam, panningParam, sendParams[])
// triple used to issue writes without re-traversing the mixer device on
// every command.
type mixerHandle struct {
	volume  daw.DeviceParameter
	panning daw.DeviceParameter
	sends   []daw.DeviceParameter
}

func (m *Manager) emit(e Event) {
	if m.sink != nil {
		m.sink(e)
	}
}

func (m *Manager) emitMute(idx int, v bool)  { m.emit(Event{Kind: EventMute, Index: idx, Bool: v}) }
func (m *Manager) emitSolo(idx int, v bool)  { m.emit(Event{Kind: EventSolo, Index: idx, Bool: v}) }
func (m *Manager) emitArm(idx int, v bool)   { m.emit(Event{Kind: EventArm, Index: idx, Bool: v}) }

func (m *Manager) emitVolume(idx int, v float64) {
	m.emit(Event{Kind: EventVolume, Index: idx, Value: v, Normalized: v})
}

func (m *Manager) emitPanning(idx int, v float64) {
	m.emit(Event{Kind: EventPanning, Index: idx, Value: v, Normalized: (v + 1) / 2})
}

func (m *Manager) emitSend(idx, sendIndex int, v float64) {
	m.emit(Event{Kind: EventSend, Index: idx, SendIndex: sendIndex, Value: v, Normalized: v})
}

func (m *Manager) emitInfo(idx int, ts *TrackState) {
	m.emit(Event{Kind: EventInfo, Index: idx, Name: ts.Name, Color: ts.Color, IsMIDI: ts.IsMIDI})
}

func (m *Manager) emitSelected() {
	ringIdx := -1
	if idx, ok := m.ringIndexByTrackId[m.selectedTrackID]; ok {
		ringIdx = idx
	}
	m.emit(Event{
		Kind:      EventSelected,
		Index:     m.selectedTrackIndex,
		RingIndex: ringIdx,
		Name:      m.selectedTrackName,
		Color:     m.selectedTrackColor,
	})
}

func (m *Manager) emitPlayingClip(name string, color daw.Color) {
	m.emit(Event{Kind: EventPlayingClip, Name: name, Color: color})
}

func (m *Manager) emitPlayingClipCached() {
	m.emitPlayingClip(m.playingClipName, m.playingClipColor)
}

func (m *Manager) emitParam() {
	var nv float64
	if m.selectedParamMax != m.selectedParamMin {
		nv = (m.selectedParamValue - m.selectedParamMin) / (m.selectedParamMax - m.selectedParamMin)
	}
	m.emit(Event{
		Kind:       EventParam,
		Name:       m.selectedParamName,
		Value:      m.selectedParamValue,
		Normalized: nv,
		Min:        m.selectedParamMin,
		Max:        m.selectedParamMax,
	})
}

func (m *Manager) emitParamBlank() {
	m.emit(Event{Kind: EventParam})
}

func (m *Manager) emitTransport() {
	m.emit(Event{Kind: EventTransport, Playing: m.isPlaying, Recording: m.isRecording})
}

// sendFullSync walks currentRingTrackIds and re-emits every field of the
// cached TrackState, so the surface can be fully redrawn from the most
// recent emission without keeping bookkeeping of its own.
func (m *Manager) sendFullSync() {
	for idx, id := range m.currentRingTrackIds {
		ts, ok := m.trackStates[id]
		if !ok {
			continue
		}
		m.emitMute(idx, ts.Mute)
		m.emitSolo(idx, ts.Solo)
		m.emitArm(idx, ts.Arm)
		if !ts.IsMIDI {
			m.emitVolume(idx, ts.Volume)
			m.emitPanning(idx, ts.Panning)
		}
		m.emitInfo(idx, ts)
		for si, v := range ts.Sends {
			m.emitSend(idx, si, v)
		}
	}
}

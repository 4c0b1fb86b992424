package ring

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"go-ringbridge/daw"
	"go-ringbridge/fakedaw"
)

func TestSelectedTrackChangeEmitsSelectedEvent(t *testing.T) {
	m, song, rec := newTestManager(2, 1)
	rec.drain()

	song.SelectTrack(song.Tracks()[1].ID())
	settle(m)

	sel := rec.ofKind(EventSelected)
	assert.Equal(t, len(sel), 1)
	assert.Equal(t, sel[0].Index, 1)
}

func TestSelectingTrackOutsideRingMovesTheWindow(t *testing.T) {
	m, song, rec := newTestManager(4, 1)
	rec.drain()

	song.SelectTrack(song.Tracks()[3].ID())
	settle(m)

	// ofKind drains the recorder, so split the one batch by hand.
	var infos, sel []Event
	for _, e := range rec.drain() {
		switch e.Kind {
		case EventInfo:
			infos = append(infos, e)
		case EventSelected:
			sel = append(sel, e)
		}
	}
	assert.Equal(t, len(infos), 1)
	assert.Equal(t, infos[0].Name, "Track D")

	last := sel[len(sel)-1]
	assert.Equal(t, last.RingIndex, 0)
}

func TestSelectedTrackRenameUpdatesEmittedSelection(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	song.SelectTrack(song.Tracks()[0].ID())
	settle(m)
	rec.drain()

	song.Tracks()[0].(*fakedaw.Track).SimulateRename("Renamed")
	settle(m)

	sel := rec.ofKind(EventSelected)
	assert.Equal(t, len(sel), 1)
	assert.Equal(t, sel[0].Name, "Renamed")
}

func TestPlayingClipEmittedWhenSlotFires(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	track := song.Tracks()[0].(*fakedaw.Track)
	slot := track.AddClipSlot()
	slot.SetClip("Groove", daw.Color{R: 1, G: 2, B: 3})

	song.SelectTrack(track.ID())
	settle(m)
	rec.drain()

	track.SimulateFire(0)
	settle(m)

	clips := rec.ofKind(EventPlayingClip)
	assert.Equal(t, len(clips), 1)
	assert.Equal(t, clips[0].Name, "Groove")
}

func TestPlayingClipBlankWhenSlotEmpty(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	track := song.Tracks()[0].(*fakedaw.Track)
	track.AddClipSlot() // empty

	song.SelectTrack(track.ID())
	settle(m)
	rec.drain()

	track.SimulateFire(0)
	settle(m)

	clips := rec.ofKind(EventPlayingClip)
	assert.Equal(t, len(clips), 1)
	assert.Equal(t, clips[0].Name, "")
}

func TestTransportEmittedOnPlayAndRecordChanges(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	rec.drain()

	song.StartPlaying()
	settle(m)
	tr := rec.ofKind(EventTransport)
	assert.Equal(t, len(tr), 1)
	assert.Equal(t, tr[0].Playing, true)

	song.SimulateRecordMode(true)
	settle(m)
	tr = rec.ofKind(EventTransport)
	assert.Equal(t, len(tr), 1)
	assert.Equal(t, tr[0].Recording, true)
}

func TestSelectedParameterFetchFailureEmitsBlankParam(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	panParam := song.Tracks()[0].MixerDevice().Panning().(*fakedaw.DeviceParameter)
	panParam.InjectGetError(assertErr{})

	song.SelectParameter(panParam)
	waitParamSwitchSettled(m)
	rec.drain()

	m.SetActiveProperty(SelectedParameter())
	settle(m)

	params := rec.ofKind(EventParam)
	assert.Equal(t, len(params), 1)
	assert.Equal(t, params[0].Name, "")
}

type assertErr struct{}

func (assertErr) Error() string { return "injected" }

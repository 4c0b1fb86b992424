package ring

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"go-ringbridge/fakedaw"
)

func TestToggleMuteFlipsCachedState(t *testing.T) {
	m, song, rec := newTestManager(1, 1)

	m.ToggleMute(0)
	settle(m)

	mute, _ := song.Tracks()[0].Mute()
	assert.Equal(t, mute, true)
	mutes := rec.ofKind(EventMute)
	assert.Equal(t, len(mutes), 1)
	assert.Equal(t, mutes[0].Bool, true)

	m.ToggleMute(0)
	settle(m)
	mute, _ = song.Tracks()[0].Mute()
	assert.Equal(t, mute, false)
}

func TestToggleSoloFlipsCachedState(t *testing.T) {
	m, song, _ := newTestManager(1, 1)
	m.ToggleSolo(0)
	settle(m)
	solo, _ := song.Tracks()[0].Solo()
	assert.Equal(t, solo, true)
}

func TestToggleArmFlipsCachedState(t *testing.T) {
	m, song, rec := newTestManager(1, 1)

	m.ToggleArm(0)
	settle(m)

	arm, _ := song.Tracks()[0].Arm()
	assert.Equal(t, arm, true)
	arms := rec.ofKind(EventArm)
	assert.Equal(t, len(arms), 1)
	assert.Equal(t, arms[0].Bool, true)
}

func TestSetVolumeWritesThroughAndEmitsOnListener(t *testing.T) {
	m, song, rec := newTestManager(1, 1)

	m.SetVolume(0, 0.5)
	settle(m)

	v, _ := song.Tracks()[0].MixerDevice().Volume().Value()
	assert.Equal(t, v, 0.5)
	vols := rec.ofKind(EventVolume)
	assert.Equal(t, len(vols), 1)
	assert.Equal(t, vols[0].Value, 0.5)
}

func TestSetSendOutOfRangeIsNoop(t *testing.T) {
	m, _, rec := newTestManager(1, 1)

	m.SetSend(0, 5, 0.7)
	settle(m)
	assert.Equal(t, len(rec.ofKind(EventSend)), 0)
}

func TestSelectTrackInRingAsksDAWToSelect(t *testing.T) {
	m, song, _ := newTestManager(2, 2)

	m.SelectTrackInRing(1)
	settle(m)

	selected, _ := song.View().SelectedTrack()
	assert.NotEqual(t, selected, nil)
	assert.Equal(t, selected.ID(), song.Tracks()[1].ID())
}

func TestSetActivePropertyPushesCurrentValuesImmediately(t *testing.T) {
	m, song, rec := newTestManager(2, 2)
	song.Tracks()[0].MixerDevice().Panning().SetValue(0.5)
	song.Tracks()[1].MixerDevice().Panning().SetValue(-0.5)
	settle(m)
	rec.drain()

	m.SetActiveProperty(Panning())
	settle(m)

	pans := rec.ofKind(EventPanning)
	assert.Equal(t, len(pans), 2)
	assert.Equal(t, pans[0].Value, 0.5)
	assert.Equal(t, pans[1].Value, -0.5)
}

func TestSetActivePropertyValueMapsByteOntoPanningRange(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	m.SetActiveProperty(Panning())
	settle(m)
	rec.drain()

	m.SetActivePropertyValue(0, 0) // raw byte 0 -> norm 0 -> panning -1
	settle(m)

	v, _ := song.Tracks()[0].MixerDevice().Panning().Value()
	assert.Equal(t, v, -1.0)
}

func TestAdjustActivePropertyValueUsesCachedStateNotAccumulatedDelta(t *testing.T) {
	m, song, _ := newTestManager(1, 1)
	m.SetActiveProperty(Volume())
	settle(m)

	m.AdjustActivePropertyValue(0, 10)
	settle(m)
	v1, _ := song.Tracks()[0].MixerDevice().Volume().Value()
	assert.Equal(t, v1, clampFloat(0.85+10*DefaultStep, 0, 1))

	// An external change lands in the cache; the next adjust starts from
	// that new cached value rather than the old accumulated position.
	song.Tracks()[0].MixerDevice().Volume().(*fakedaw.DeviceParameter).SimulateExternalValue(0.2)
	settle(m)

	m.AdjustActivePropertyValue(0, 1)
	settle(m)
	v2, _ := song.Tracks()[0].MixerDevice().Volume().Value()
	assert.Equal(t, v2, clampFloat(0.2+1*DefaultStep, 0, 1))
}

func TestResetActivePropertyValueRestoresNativeDefault(t *testing.T) {
	m, song, _ := newTestManager(1, 1)
	m.SetVolume(0, 0.1)
	settle(m)

	m.SetActiveProperty(Volume())
	m.ResetActivePropertyValue(0)
	settle(m)

	v, _ := song.Tracks()[0].MixerDevice().Volume().Value()
	assert.Equal(t, v, 0.85)
}

func TestRequestFullStateReemitsEverything(t *testing.T) {
	m, _, rec := newTestManager(2, 2)
	rec.drain()

	m.RequestFullState()
	settle(m)

	events := rec.drain()
	assert.NotEqual(t, len(events), 0)
	found := false
	for _, e := range events {
		if e.Kind == EventTransport {
			found = true
		}
	}
	assert.Equal(t, found, true)
}

func TestSelectedParameterWriteMapsNormIntoItsRange(t *testing.T) {
	m, song, rec := newTestManager(1, 1)
	panParam := song.Tracks()[0].MixerDevice().Panning().(*fakedaw.DeviceParameter)
	song.SelectParameter(panParam)
	waitParamSwitchSettled(m)
	rec.drain()

	m.SetActiveProperty(SelectedParameter())
	m.SetActivePropertyValue(0, 0) // raw byte 0 -> norm 0 -> the parameter's min, -1
	settle(m)

	v, _ := panParam.Value()
	assert.Equal(t, v, -1.0)
}

func TestSelectedParameterWriteDroppedWhenNothingSelected(t *testing.T) {
	m, _, _ := newTestManager(1, 1)

	m.SetActiveProperty(SelectedParameter())
	m.SetActivePropertyValue(0, 200) // no selected parameter; must be a no-op, not a panic
	settle(m)
}

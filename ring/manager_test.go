package ring

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"go-ringbridge/fakedaw"
)

func TestSetupRingEmitsFullSyncForVisibleTracks(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("One", false)
	song.AddTrack("Two", false)
	rec := &eventRecorder{}
	m := NewManager(song, rec.sink)
	m.Init()
	m.SetupRing(2, 1, 0, 0)
	settle(m)

	infos := rec.ofKind(EventInfo)
	assert.Equal(t, len(infos), 2)
	assert.Equal(t, infos[0].Name, "One")
	assert.Equal(t, infos[1].Name, "Two")
}

func TestSetupRingAsksSessionToMatchDimensions(t *testing.T) {
	song := fakedaw.NewSong()
	for i := 0; i < 4; i++ {
		song.AddTrack(trackName(i), false)
	}
	m := NewManager(song, nil)
	m.Init()
	m.SetupRing(2, 8, 1, 3)
	settle(m)

	w, h := song.SessionBox()
	assert.Equal(t, w, 2)
	assert.Equal(t, h, 8)
	off, sceneOff := song.SessionOffset()
	assert.Equal(t, off, 1)
	assert.Equal(t, sceneOff, 3)
}

func TestNavigateRingShiftsWindowByOne(t *testing.T) {
	m, _, rec := newTestManager(4, 2)

	m.NavigateRing(1)
	settle(m)

	infos := rec.ofKind(EventInfo)
	assert.Equal(t, len(infos), 2)
	assert.Equal(t, infos[0].Name, "Track B")
	assert.Equal(t, infos[1].Name, "Track C")
}

func TestNavigateRingNoopAtRightBoundaryEmitsNothing(t *testing.T) {
	m, _, rec := newTestManager(2, 2)

	m.NavigateRing(1) // already at the only possible offset (0)
	settle(m)

	assert.Equal(t, len(rec.drain()), 0)
}

func TestNavigateRingNoopAtLeftBoundaryEmitsNothing(t *testing.T) {
	m, _, rec := newTestManager(4, 2)

	m.NavigateRing(-1) // already at offset 0
	settle(m)

	assert.Equal(t, len(rec.drain()), 0)
}

func TestWindowDiffTearsDownLeaversAndBuildsEnterers(t *testing.T) {
	m, song, rec := newTestManager(4, 2)

	m.NavigateRing(1)
	settle(m)
	// NavigateRing selects the track at ring index 0; the DAW's selection
	// listener enqueues its handler behind the first barrier, so wait once
	// more before discarding the navigation's events.
	settle(m)
	rec.drain()

	// A track that left the window no longer forwards its listener into
	// an emitted event, even though the underlying fakedaw track is still
	// receiving mutations.
	tracks := song.Tracks()
	leftover := tracks[0] // Track A, now outside [1,3)
	leftover.(*fakedaw.Track).SimulateExternalMute(true)
	settle(m)
	assert.Equal(t, len(rec.drain()), 0)

	resident := tracks[1] // Track B, ring index 0
	resident.(*fakedaw.Track).SimulateExternalMute(true)
	settle(m)
	mutes := rec.ofKind(EventMute)
	assert.Equal(t, len(mutes), 1)
	assert.Equal(t, mutes[0].Index, 0)
	assert.Equal(t, mutes[0].Bool, true)
}

func TestSetOffsetClampsToValidRange(t *testing.T) {
	m, _, rec := newTestManager(4, 2)

	m.SetOffset(100, 0)
	settle(m)

	infos := rec.ofKind(EventInfo)
	assert.Equal(t, len(infos), 2)
	assert.Equal(t, infos[0].Name, "Track C")
	assert.Equal(t, infos[1].Name, "Track D")

	m.SetOffset(-5, 0)
	settle(m)
	infos = rec.ofKind(EventInfo)
	assert.Equal(t, infos[0].Name, "Track A")
}

func TestTracksListenerFiresOnVisibilityChange(t *testing.T) {
	song := fakedaw.NewSong()
	for i := 0; i < 3; i++ {
		song.AddTrack(trackName(i), false)
	}
	rec := &eventRecorder{}
	m := NewManager(song, rec.sink)
	m.Init()
	m.SetupRing(2, 1, 0, 0)
	settle(m)
	rec.drain()

	tracks := song.Tracks()
	song.SetVisible(tracks[0].ID(), false)
	settle(m)

	// folding the first track out shifts the resident window without
	// requiring an explicit navigate.
	infos := rec.ofKind(EventInfo)
	assert.Equal(t, len(infos), 2)
	assert.Equal(t, infos[0].Name, "Track B")
	assert.Equal(t, infos[1].Name, "Track C")
}

func TestReturnTrackAddsASendToResidentTracks(t *testing.T) {
	m, song, rec := newTestManager(1, 1)

	song.AddReturnTrack("Reverb")
	settle(m)

	sends := rec.ofKind(EventSend)
	assert.Equal(t, len(sends), 1)
	assert.Equal(t, sends[0].SendIndex, 0)
	assert.Equal(t, sends[0].Index, 0)
}

func TestDestroyTearsDownWithoutHanging(t *testing.T) {
	m, _, rec := newTestManager(2, 2)
	m.Destroy()

	assert.Equal(t, len(rec.drain()), 0)
}

package wsrelay

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"go-ringbridge/daw"
	"go-ringbridge/fakedaw"
	"go-ringbridge/ring"
)

func TestToWireCopiesEveryField(t *testing.T) {
	e := ring.Event{
		Kind:       ring.EventVolume,
		Index:      3,
		RingIndex:  1,
		SendIndex:  2,
		Value:      0.5,
		Normalized: 0.75,
		Min:        -1,
		Max:        1,
		Name:       "Lead",
		Color:      daw.Color{R: 1, G: 2, B: 3},
		IsMIDI:     true,
		Bool:       true,
		Playing:    true,
		Recording:  true,
	}

	w := toWire(e)

	assert.Equal(t, w.Kind, "volume")
	assert.Equal(t, w.Index, 3)
	assert.Equal(t, w.RingIndex, 1)
	assert.Equal(t, w.SendIndex, 2)
	assert.Equal(t, w.Value, 0.5)
	assert.Equal(t, w.Normalized, 0.75)
	assert.Equal(t, w.Min, -1.0)
	assert.Equal(t, w.Max, 1.0)
	assert.Equal(t, w.Name, "Lead")
	assert.Equal(t, w.Color, [3]byte{1, 2, 3})
	assert.Equal(t, w.IsMIDI, true)
	assert.Equal(t, w.Bool, true)
	assert.Equal(t, w.Playing, true)
	assert.Equal(t, w.Recording, true)
}

func TestParseActivePropertyKnownKinds(t *testing.T) {
	p, ok := parseActiveProperty("volume", 0)
	assert.Equal(t, ok, true)
	assert.Equal(t, p.Kind, ring.PropertyVolume)

	p, ok = parseActiveProperty("send", 2)
	assert.Equal(t, ok, true)
	assert.Equal(t, p.Kind, ring.PropertySend)
	assert.Equal(t, p.SendIndex, 2)

	p, ok = parseActiveProperty("selected_parameter", 0)
	assert.Equal(t, ok, true)
	assert.Equal(t, p.Kind, ring.PropertySelectedParameter)
}

func TestParseActivePropertyUnknownKindFails(t *testing.T) {
	_, ok := parseActiveProperty("bogus", 0)
	assert.Equal(t, ok, false)
}

func TestDispatchToggleMuteReachesManager(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("A", false)
	m := ring.NewManager(song, func(ring.Event) {})
	m.Init()
	m.SetupRing(1, 1, 0, 0)
	s := NewServer(m)

	s.dispatch(command{Op: "toggleMute", RingIndex: 0})
	// SetSink runs on the manager's worker, so it returns only after the
	// dispatched command has run.
	m.SetSink(func(ring.Event) {})

	mute, _ := song.Tracks()[0].Mute()
	assert.Equal(t, mute, true)
}

func TestDispatchSetVolumeWritesThrough(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("A", false)
	m := ring.NewManager(song, func(ring.Event) {})
	m.Init()
	m.SetupRing(1, 1, 0, 0)
	s := NewServer(m)

	s.dispatch(command{Op: "setVolume", RingIndex: 0, Value: 0.3})
	// SetSink runs on the manager's worker, so it returns only after the
	// dispatched command has run.
	m.SetSink(func(ring.Event) {})

	v, _ := song.Tracks()[0].MixerDevice().Volume().Value()
	assert.Equal(t, v, 0.3)
}

func TestDispatchSetActivePropertyWithUnknownKindIsNoop(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("A", false)
	m := ring.NewManager(song, func(ring.Event) {})
	m.Init()
	m.SetupRing(1, 1, 0, 0)
	s := NewServer(m)

	// Must not panic even though "bogus" doesn't resolve to an ActiveProperty.
	s.dispatch(command{Op: "setActiveProperty", Kind: "bogus"})
}

func TestDispatchUnknownOpIsNoop(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("A", false)
	m := ring.NewManager(song, func(ring.Event) {})
	m.Init()
	m.SetupRing(1, 1, 0, 0)
	s := NewServer(m)

	s.dispatch(command{Op: "nonsense"})
}

func TestBroadcastSkipsFullClientBuffer(t *testing.T) {
	song := fakedaw.NewSong()
	song.AddTrack("A", false)
	m := ring.NewManager(song, func(ring.Event) {})
	s := NewServer(m)

	c := &client{id: "full", send: make(chan wireEvent)} // unbuffered, nothing reading
	s.clients[c] = struct{}{}

	// broadcast must not block even though c.send has no reader.
	s.broadcast(wireEvent{Kind: "volume"})
}

// Package daw models the reactive remote-object surface a DAW exposes to
// an injected script: async get/set on named properties, and listener
// registration that returns an unsubscribe action. ring depends only on
// these interfaces; fakedaw is the only implementation in this repo, but
// a real collaborator wiring a live session would satisfy the same
// contracts without ring knowing the difference.
package daw

import "fmt"

// TrackID is the opaque stable identifier of a track, return track, or the
// master track. Two TrackIDs are equal iff they name the same remote
// object; no other structure is assumed.
type TrackID string

// Unsubscribe removes a previously registered listener. It is idempotent:
// calling it more than once is a no-op. A non-nil error means the remote
// unregister failed; callers are expected to swallow and log it rather
// than propagate it.
type Unsubscribe func() error

// Color is the track/clip color the core renders, normalized from
// whichever wire shape the DAW used (see DecodeColor).
type Color struct {
	R, G, B byte
}

// Song is the root remote object: the track list, return tracks, the
// master track, and transport.
type Song interface {
	Tracks() []Track
	ReturnTracks() []Track
	VisibleTracks() []Track
	MasterTrack() Track

	AddTracksListener(cb func()) (Unsubscribe, error)
	AddReturnTracksListener(cb func()) (Unsubscribe, error)

	IsPlaying() (bool, error)
	RecordMode() (bool, error)
	AddIsPlayingListener(cb func(bool)) (Unsubscribe, error)
	AddRecordModeListener(cb func(bool)) (Unsubscribe, error)
	StartPlaying() error
	StopPlaying() error

	View() View
	Session() Session
}

// Session is the DAW-side representation of the observed window: the
// "session box" the core asks the DAW to keep aligned with its own ring so
// push notifications are scoped to what's visible.
type Session interface {
	SetupSessionBox(width, height int) error
	SetSessionOffset(trackOffset, sceneOffset int) error
}

// View exposes selection state: the focused track and device parameter.
type View interface {
	SelectedTrack() (Track, error)
	SetSelectedTrack(t Track) error
	AddSelectedTrackListener(cb func()) (Unsubscribe, error)

	SelectedParameter() (DeviceParameter, error)
	AddSelectedParameterListener(cb func()) (Unsubscribe, error)

	SelectedScene() (int, error)
}

// Track is a single audio/MIDI/group/return/master track.
type Track interface {
	ID() TrackID

	Name() (string, error)
	AddNameListener(cb func(string)) (Unsubscribe, error)
	SetName(name string) error

	Color() (Color, error)
	AddColorListener(cb func(Color)) (Unsubscribe, error)

	Mute() (bool, error)
	AddMuteListener(cb func(bool)) (Unsubscribe, error)
	SetMute(v bool) error

	Solo() (bool, error)
	AddSoloListener(cb func(bool)) (Unsubscribe, error)
	SetSolo(v bool) error

	CanBeArmed() (bool, error)
	Arm() (bool, error)
	AddArmListener(cb func(bool)) (Unsubscribe, error)
	SetArm(v bool) error

	HasMIDIInput() (bool, error)
	HasAudioInput() (bool, error)

	MixerDevice() MixerDevice

	PlayingSlotIndex() (int, error)
	AddPlayingSlotIndexListener(cb func(int)) (Unsubscribe, error)
	ClipSlots() ([]ClipSlot, error)

	Fire(slotIndex int) error
}

// MixerDevice groups the per-track mixer parameters.
type MixerDevice interface {
	Volume() DeviceParameter
	Panning() DeviceParameter
	Sends() ([]DeviceParameter, error)
}

// DeviceParameter is a single continuous parameter: a mixer knob, or the
// last device parameter the user clicked on in the DAW's UI.
type DeviceParameter interface {
	Name() (string, error)
	Value() (float64, error)
	Min() (float64, error)
	Max() (float64, error)
	DefaultValue() (float64, error)

	SetValue(v float64) error
	AddValueListener(cb func(float64)) (Unsubscribe, error)
}

// ClipSlot is one row of a track's session view; it may or may not hold a
// clip.
type ClipSlot interface {
	HasClip() (bool, error)
	Clip() (Clip, error)
}

// Clip is the playable content of a non-empty ClipSlot.
type Clip interface {
	Name() (string, error)
	AddNameListener(cb func(string)) (Unsubscribe, error)

	Color() (Color, error)
	AddColorListener(cb func(Color)) (Unsubscribe, error)
}

// DecodeColor normalizes the two wire shapes a DAW's color property is
// observed to use: a packed 0xRRGGBB integer (int, int32, int64 or
// uint32), or an R,G,B byte triple given as a [3]byte. An already-decoded
// Color passes through. Any other type, including other structs with
// R,G,B fields, is an error — callers log and skip rather than guess.
func DecodeColor(raw any) (Color, error) {
	switch v := raw.(type) {
	case Color:
		return v, nil
	case int:
		return unpackRGB(int64(v)), nil
	case int32:
		return unpackRGB(int64(v)), nil
	case int64:
		return unpackRGB(v), nil
	case uint32:
		return unpackRGB(int64(v)), nil
	case [3]byte:
		return Color{R: v[0], G: v[1], B: v[2]}, nil
	default:
		return Color{}, fmt.Errorf("daw: unrecognized color shape %T", raw)
	}
}

func unpackRGB(packed int64) Color {
	return Color{
		R: byte((packed >> 16) & 0xFF),
		G: byte((packed >> 8) & 0xFF),
		B: byte(packed & 0xFF),
	}
}

package ring

import "go-ringbridge/daw"

// EventKind names one row of the outbound event taxonomy. Field usage per
// kind is documented on Event.
type EventKind int

const (
	EventMute EventKind = iota
	EventSolo
	EventArm
	EventVolume
	EventPanning
	EventSend
	EventInfo
	EventSelected
	EventPlayingClip
	EventParam
	EventTransport
)

func (k EventKind) String() string {
	switch k {
	case EventMute:
		return "mute"
	case EventSolo:
		return "solo"
	case EventArm:
		return "arm"
	case EventVolume:
		return "volume"
	case EventPanning:
		return "panning"
	case EventSend:
		return "send"
	case EventInfo:
		return "info"
	case EventSelected:
		return "selected"
	case EventPlayingClip:
		return "playing_clip"
	case EventParam:
		return "param"
	case EventTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Event is one outbound record. Not every field is meaningful for every
// Kind:
//
//   - EventMute/EventSolo/EventArm: Index, Bool.
//   - EventVolume/EventPanning/EventSend: Index, Value (raw), Normalized;
//     EventSend also sets SendIndex.
//   - EventInfo: Index, Name, Color, IsMIDI.
//   - EventSelected: Index (absolute), RingIndex (-1 if outside the ring),
//     Name, Color.
//   - EventPlayingClip: Name, Color (both zero when the slot is empty or
//     unselected).
//   - EventParam: Name, Value, Normalized, Min, Max (all zero when nothing
//     is selected).
//   - EventTransport: Playing, Recording.
type Event struct {
	Kind EventKind

	Index     int
	RingIndex int
	SendIndex int

	Value      float64
	Normalized float64
	Min, Max   float64

	Name  string
	Color daw.Color

	IsMIDI bool
	Bool   bool

	Playing, Recording bool
}

// Sink is a single synchronous, non-throwing outbound function. The core
// is agnostic to how many sinks exist behind it — cmd/ringbridge fans one
// Manager out to as many as are configured.
type Sink func(Event)

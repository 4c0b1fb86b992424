package midisurface

// ControllerType identifies the kind of grid controller.
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
)

// PadEvent is sent when a pad/button is pressed on a grid controller. Row
// and Col are the raw grid coordinate (rows 0-7 and side column 8 for the
// pads, row 8 for the top button row); Bridge decides what each cell
// addresses.
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate is one cell of a batched LED write.
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Controller is the interface for a MIDI grid controller acting as a
// hardware surface's input/output device.
type Controller interface {
	ID() string
	Type() ControllerType

	PadEvents() <-chan PadEvent

	SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error // maps RGB to palette
	SetLEDBatch(updates []LEDUpdate) error
	ClearLEDs() error

	Close() error
}

// Launchpad X color palette (velocity values 0-127).
// See Programmer's Reference Manual for full palette.
const (
	ColorOff          uint8 = 0
	ColorDimRed       uint8 = 7
	ColorRed          uint8 = 5
	ColorBrightRed    uint8 = 72
	ColorDimGreen     uint8 = 19
	ColorGreen        uint8 = 21
	ColorBrightGreen  uint8 = 87
	ColorDimYellow    uint8 = 97
	ColorYellow       uint8 = 13
	ColorBrightYellow uint8 = 62
	ColorDimOrange    uint8 = 11
	ColorOrange       uint8 = 9
	ColorBrightOrange uint8 = 84
	ColorDimBlue      uint8 = 43
	ColorBlue         uint8 = 45
	ColorBrightBlue   uint8 = 78
	ColorCyan         uint8 = 37
	ColorPurple       uint8 = 49
	ColorPink         uint8 = 53
	ColorWhite        uint8 = 3
	ColorBrightWhite  uint8 = 119

	// Channel modes for SetLEDRGB/SetLEDBatch (use as the 'channel' param).
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

package midisurface

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"go-ringbridge/ring"
)

// gridWidth is the number of ring-index columns the bottom 8x8 grid
// addresses. It matches the ring window width cmd/ringbridge configures.
const gridWidth = 8

// Bridge turns a Controller's pad presses into ring.Manager commands and
// renders ring.Event back onto the Controller's LEDs. It never touches
// ring.Manager's internal state — only its exported command-dispatch
// methods.
//
// Layout:
//   - Rows 0-7, cols 0-7: a per-column fader for whichever property is
//     active. Pressing row R in column C sets that column's ring index to
//     roughly R/7 of the property's range.
//   - Row 8 (top CC row), cols 0-4: mode buttons (volume, panning, send 0,
//     send 1, selected parameter).
//   - Row 8, cols 5-6: navigate the ring left/right.
//   - Col 8 (side column), rows 0-7: select the track at that ring index.
type Bridge struct {
	manager *ring.Manager

	mu     sync.Mutex
	ctrl   Controller
	active ring.PropertyKind
	sendIx int
	mute   [gridWidth]bool
}

// NewBridge constructs a Bridge over manager. Call Attach once a
// Controller has been detected.
func NewBridge(manager *ring.Manager) *Bridge {
	return &Bridge{manager: manager, active: ring.PropertyVolume}
}

// Attach wires ctrl's pad events into manager commands until ctx is done.
// Safe to call once per connected controller; a second controller
// connecting later should get its own Bridge.
func (b *Bridge) Attach(ctx context.Context, ctrl Controller) {
	b.mu.Lock()
	b.ctrl = ctrl
	b.mu.Unlock()

	b.manager.SetActiveProperty(ring.Volume())
	b.manager.RequestFullState()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ctrl.PadEvents():
				if !ok {
					return
				}
				b.handlePad(ev)
			}
		}
	}()
}

func (b *Bridge) handlePad(ev PadEvent) {
	switch {
	case ev.Row == 8 && ev.Col <= 4:
		b.handleModeButton(ev.Col)
	case ev.Row == 8 && ev.Col == 5:
		b.manager.NavigateRing(-1)
	case ev.Row == 8 && ev.Col == 6:
		b.manager.NavigateRing(1)
	case ev.Col == 8 && ev.Row >= 0 && ev.Row < gridWidth:
		b.manager.SelectTrackInRing(ev.Row)
	case ev.Row >= 0 && ev.Row < gridWidth && ev.Col >= 0 && ev.Col < gridWidth:
		raw := ev.Row * 255 / (gridWidth - 1)
		b.manager.SetActivePropertyValue(ev.Col, raw)
	default:
		glog.V(2).Infof("midisurface: unmapped pad row=%d col=%d", ev.Row, ev.Col)
	}
}

func (b *Bridge) handleModeButton(col int) {
	var prop ring.ActiveProperty
	var kind ring.PropertyKind
	sendIx := 0
	switch col {
	case 0:
		prop, kind = ring.Volume(), ring.PropertyVolume
	case 1:
		prop, kind = ring.Panning(), ring.PropertyPanning
	case 2:
		prop, kind, sendIx = ring.Send(0), ring.PropertySend, 0
	case 3:
		prop, kind, sendIx = ring.Send(1), ring.PropertySend, 1
	case 4:
		prop, kind = ring.SelectedParameter(), ring.PropertySelectedParameter
	default:
		return
	}
	b.mu.Lock()
	b.active, b.sendIx = kind, sendIx
	b.mu.Unlock()
	b.manager.SetActiveProperty(prop)
}

// RenderEvent is the ring.Sink this bridge presents to cmd/ringbridge.
func (b *Bridge) RenderEvent(e ring.Event) {
	b.mu.Lock()
	ctrl := b.ctrl
	active := b.active
	sendIx := b.sendIx
	b.mu.Unlock()
	if ctrl == nil {
		return
	}

	switch e.Kind {
	case ring.EventVolume:
		if active == ring.PropertyVolume && e.Index < gridWidth {
			renderFaderColumn(ctrl, e.Index, e.Normalized, ColorGreen)
		}
	case ring.EventPanning:
		if active == ring.PropertyPanning && e.Index < gridWidth {
			renderFaderColumn(ctrl, e.Index, e.Normalized, ColorCyan)
		}
	case ring.EventSend:
		if active == ring.PropertySend && e.SendIndex == sendIx && e.Index < gridWidth {
			renderFaderColumn(ctrl, e.Index, e.Normalized, ColorOrange)
		}
	case ring.EventParam:
		if active == ring.PropertySelectedParameter {
			renderFaderRow(ctrl, e.Normalized, ColorPurple)
		}
	case ring.EventMute:
		if e.Index < gridWidth {
			b.mu.Lock()
			b.mute[e.Index] = e.Bool
			b.mu.Unlock()
			color := ColorOff
			if e.Bool {
				color = ColorRed
			}
			ctrl.SetLEDRGB(8, e.Index, paletteToRGB(color), ChannelStatic)
		}
	case ring.EventSelected:
		if e.RingIndex >= 0 && e.RingIndex < gridWidth {
			ctrl.SetLEDRGB(e.RingIndex, 8, [3]uint8{e.Color.R, e.Color.G, e.Color.B}, ChannelStatic)
		}
	}
}

// renderFaderColumn lights rows [0, round(norm*7)] of column col.
func renderFaderColumn(ctrl Controller, col int, norm float64, color uint8) {
	lit := int(norm*float64(gridWidth-1) + 0.5)
	var updates []LEDUpdate
	rgb := paletteToRGB(color)
	for row := 0; row < gridWidth; row++ {
		c := [3]uint8{0, 0, 0}
		if row <= lit {
			c = rgb
		}
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: c, Channel: ChannelStatic})
	}
	ctrl.SetLEDBatch(updates)
}

// renderFaderRow lights the top CC row proportionally to norm, used for
// the selected-parameter value since it has no per-column identity.
func renderFaderRow(ctrl Controller, norm float64, color uint8) {
	lit := int(norm*float64(gridWidth-1) + 0.5)
	var updates []LEDUpdate
	rgb := paletteToRGB(color)
	for col := 0; col < gridWidth; col++ {
		c := [3]uint8{0, 0, 0}
		if col <= lit {
			c = rgb
		}
		updates = append(updates, LEDUpdate{Row: 8, Col: col, Color: c, Channel: ChannelStatic})
	}
	ctrl.SetLEDBatch(updates)
}

// paletteToRGB approximates a palette velocity back to an RGB triple for
// controllers whose SetLEDRGB/SetLEDBatch take RGB rather than velocity;
// exact round-tripping isn't needed since mapRGBToLaunchpad snaps to the
// nearest palette entry again on send.
func paletteToRGB(v uint8) [3]uint8 {
	switch v {
	case ColorRed, ColorDimRed, ColorBrightRed:
		return [3]uint8{255, 0, 0}
	case ColorGreen, ColorDimGreen, ColorBrightGreen:
		return [3]uint8{0, 255, 0}
	case ColorCyan:
		return [3]uint8{0, 200, 200}
	case ColorOrange, ColorDimOrange, ColorBrightOrange:
		return [3]uint8{255, 100, 0}
	case ColorPurple:
		return [3]uint8{150, 0, 200}
	default:
		return [3]uint8{0, 0, 0}
	}
}

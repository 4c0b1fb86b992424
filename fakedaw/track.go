package fakedaw

import (
	"fmt"

	"go-ringbridge/daw"
)

// Track is the in-memory double of daw.Track. All of its mutable state is
// only ever touched on the owning Song's worker goroutine.
type Track struct {
	w  *worker
	id daw.TrackID

	name  listenable[string]
	color listenable[daw.Color]
	mute  listenable[bool]
	solo  listenable[bool]
	arm   listenable[bool]

	canBeArmed   bool
	hasMIDI      bool
	hasAudio     bool
	isMaster     bool
	isReturn     bool
	getErr       map[string]error
	setErr       map[string]error

	mixer     *MixerDevice
	playSlot  listenable[int]
	clipSlots []*ClipSlot
}

func newTrack(w *worker, id daw.TrackID, name string, hasMIDI, hasAudio, canBeArmed bool) *Track {
	t := &Track{
		w:          w,
		id:         id,
		canBeArmed: canBeArmed,
		hasMIDI:    hasMIDI,
		hasAudio:   hasAudio,
		getErr:     map[string]error{},
		setErr:     map[string]error{},
		playSlot:   listenable[int]{value: -1},
	}
	t.name.value = name
	t.mixer = newMixerDevice(w, hasMIDI)
	return t
}

func (t *Track) ID() daw.TrackID { return t.id }

// checkGetErr and checkSetErr read the injected-error maps on the worker
// goroutine, matching where InjectGetError/InjectSetError write them.
func (t *Track) checkGetErr(property string) error {
	return callR(t.w, func() error { return t.getErr[property] })
}

func (t *Track) checkSetErr(property string) error {
	return callR(t.w, func() error { return t.setErr[property] })
}

func (t *Track) Name() (string, error) {
	if err := t.checkGetErr("name"); err != nil {
		return "", err
	}
	return callR(t.w, t.name.get), nil
}

func (t *Track) SetName(name string) error {
	if err := t.checkSetErr("name"); err != nil {
		return err
	}
	call(t.w, func() { t.name.setAndNotify(name, equalComparable[string]) })
	return nil
}

func (t *Track) AddNameListener(cb func(string)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.name.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) Color() (daw.Color, error) {
	if err := t.checkGetErr("color"); err != nil {
		return daw.Color{}, err
	}
	return callR(t.w, t.color.get), nil
}

func (t *Track) AddColorListener(cb func(daw.Color)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.color.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) Mute() (bool, error) {
	if err := t.checkGetErr("mute"); err != nil {
		return false, err
	}
	return callR(t.w, t.mute.get), nil
}

func (t *Track) SetMute(v bool) error {
	if err := t.checkSetErr("mute"); err != nil {
		return err
	}
	call(t.w, func() { t.mute.setAndNotify(v, equalComparable[bool]) })
	return nil
}

func (t *Track) AddMuteListener(cb func(bool)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.mute.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) Solo() (bool, error) {
	if err := t.checkGetErr("solo"); err != nil {
		return false, err
	}
	return callR(t.w, t.solo.get), nil
}

func (t *Track) SetSolo(v bool) error {
	if err := t.checkSetErr("solo"); err != nil {
		return err
	}
	call(t.w, func() { t.solo.setAndNotify(v, equalComparable[bool]) })
	return nil
}

func (t *Track) AddSoloListener(cb func(bool)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.solo.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) CanBeArmed() (bool, error) { return t.canBeArmed, nil }

func (t *Track) Arm() (bool, error) {
	if err := t.checkGetErr("arm"); err != nil {
		return false, err
	}
	return callR(t.w, t.arm.get), nil
}

func (t *Track) SetArm(v bool) error {
	if err := t.checkSetErr("arm"); err != nil {
		return err
	}
	if !t.canBeArmed {
		return fmt.Errorf("fakedaw: track %s cannot be armed", t.id)
	}
	call(t.w, func() { t.arm.setAndNotify(v, equalComparable[bool]) })
	return nil
}

func (t *Track) AddArmListener(cb func(bool)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.arm.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) HasMIDIInput() (bool, error)  { return t.hasMIDI, nil }
func (t *Track) HasAudioInput() (bool, error) { return t.hasAudio, nil }

func (t *Track) MixerDevice() daw.MixerDevice { return t.mixer }

func (t *Track) PlayingSlotIndex() (int, error) {
	return callR(t.w, t.playSlot.get), nil
}

func (t *Track) AddPlayingSlotIndexListener(cb func(int)) (daw.Unsubscribe, error) {
	var unsub func()
	call(t.w, func() { unsub = t.playSlot.addListener(cb) })
	return func() error { call(t.w, unsub); return nil }, nil
}

func (t *Track) ClipSlots() ([]daw.ClipSlot, error) {
	return callR(t.w, func() []daw.ClipSlot {
		out := make([]daw.ClipSlot, len(t.clipSlots))
		for i, s := range t.clipSlots {
			out[i] = s
		}
		return out
	}), nil
}

func (t *Track) Fire(slotIndex int) error {
	call(t.w, func() {
		t.playSlot.setAndNotify(slotIndex, equalComparable[int])
	})
	return nil
}

// InjectGetError makes the next (and every subsequent) read of property
// fail with err, until cleared with InjectGetError(property, nil).
func (t *Track) InjectGetError(property string, err error) {
	call(t.w, func() {
		if err == nil {
			delete(t.getErr, property)
		} else {
			t.getErr[property] = err
		}
	})
}

// InjectSetError is the write-path equivalent of InjectGetError.
func (t *Track) InjectSetError(property string, err error) {
	call(t.w, func() {
		if err == nil {
			delete(t.setErr, property)
		} else {
			t.setErr[property] = err
		}
	})
}

// SimulateExternalMute mimics the DAW GUI (or another controller) changing
// mute directly, bypassing SetMute's call path but still routed through
// the worker so listener dispatch is ordered correctly.
func (t *Track) SimulateExternalMute(v bool) {
	call(t.w, func() { t.mute.setAndNotify(v, equalComparable[bool]) })
}

// SimulateRename mimics an external rename.
func (t *Track) SimulateRename(name string) {
	call(t.w, func() { t.name.setAndNotify(name, equalComparable[string]) })
}

// SimulateRecolor mimics an external recolor.
func (t *Track) SimulateRecolor(c daw.Color) {
	call(t.w, func() { t.color.setAndNotify(c, equalComparable[daw.Color]) })
}

// SimulateFire mimics the DAW firing a clip slot (e.g. quantized launch).
func (t *Track) SimulateFire(slotIndex int) {
	call(t.w, func() { t.playSlot.setAndNotify(slotIndex, equalComparable[int]) })
}

// AddClipSlot appends an (initially empty) clip slot to the track, for
// test setup.
func (t *Track) AddClipSlot() *ClipSlot {
	slot := &ClipSlot{w: t.w}
	call(t.w, func() { t.clipSlots = append(t.clipSlots, slot) })
	return slot
}

// MixerDevice is the in-memory double of daw.MixerDevice.
type MixerDevice struct {
	volume  *DeviceParameter
	panning *DeviceParameter
	sends   []*DeviceParameter
}

func newMixerDevice(w *worker, isMIDI bool) *MixerDevice {
	m := &MixerDevice{
		volume:  newDeviceParameter(w, "Volume", 0.85, 0, 1, 0.85),
		panning: newDeviceParameter(w, "Pan", 0, -1, 1, 0),
	}
	return m
}

func (m *MixerDevice) Volume() daw.DeviceParameter  { return m.volume }
func (m *MixerDevice) Panning() daw.DeviceParameter { return m.panning }
func (m *MixerDevice) Sends() ([]daw.DeviceParameter, error) {
	out := make([]daw.DeviceParameter, len(m.sends))
	for i, s := range m.sends {
		out[i] = s
	}
	return out, nil
}

// AddSend appends a new send parameter (one per return track, in order),
// for test setup.
func (m *MixerDevice) AddSend(w *worker) *DeviceParameter {
	s := newDeviceParameter(w, fmt.Sprintf("Send %c", 'A'+len(m.sends)), 0, 0, 1, 0)
	m.sends = append(m.sends, s)
	return s
}

// DeviceParameter is the in-memory double of daw.DeviceParameter, reused
// for mixer knobs, sends, and the selected device parameter.
type DeviceParameter struct {
	w            *worker
	name         string
	value        listenable[float64]
	min, max     float64
	defaultValue float64
	getErr       error
	setErr       error
}

func newDeviceParameter(w *worker, name string, value, min, max, defaultValue float64) *DeviceParameter {
	p := &DeviceParameter{w: w, name: name, min: min, max: max, defaultValue: defaultValue}
	p.value.value = value
	return p
}

func (p *DeviceParameter) Name() (string, error) { return p.name, nil }

func (p *DeviceParameter) Value() (float64, error) {
	if p.getErr != nil {
		return 0, p.getErr
	}
	return callR(p.w, p.value.get), nil
}

func (p *DeviceParameter) Min() (float64, error) { return p.min, nil }
func (p *DeviceParameter) Max() (float64, error) { return p.max, nil }
func (p *DeviceParameter) DefaultValue() (float64, error) { return p.defaultValue, nil }

func (p *DeviceParameter) SetValue(v float64) error {
	if p.setErr != nil {
		return p.setErr
	}
	if v < p.min {
		v = p.min
	}
	if v > p.max {
		v = p.max
	}
	call(p.w, func() { p.value.setAndNotify(v, equalComparable[float64]) })
	return nil
}

func (p *DeviceParameter) AddValueListener(cb func(float64)) (daw.Unsubscribe, error) {
	var unsub func()
	call(p.w, func() { unsub = p.value.addListener(cb) })
	return func() error { call(p.w, unsub); return nil }, nil
}

// SimulateExternalValue mimics the DAW (or another controller) changing
// this parameter's value directly.
func (p *DeviceParameter) SimulateExternalValue(v float64) {
	call(p.w, func() { p.value.setAndNotify(v, equalComparable[float64]) })
}

// InjectGetError / InjectSetError mirror Track's error injection, for
// testing the selected-parameter metadata fetch failure path.
func (p *DeviceParameter) InjectGetError(err error) { p.getErr = err }
func (p *DeviceParameter) InjectSetError(err error) { p.setErr = err }

// ClipSlot is the in-memory double of daw.ClipSlot.
type ClipSlot struct {
	w    *worker
	clip *Clip
}

func (s *ClipSlot) HasClip() (bool, error) { return s.clip != nil, nil }

func (s *ClipSlot) Clip() (daw.Clip, error) {
	if s.clip == nil {
		return nil, fmt.Errorf("fakedaw: slot has no clip")
	}
	return s.clip, nil
}

// SetClip installs a new clip with the given name and color in the slot,
// for test setup, and returns it. A slot cannot be emptied again.
func (s *ClipSlot) SetClip(name string, color daw.Color) *Clip {
	c := &Clip{w: s.w}
	c.name.value = name
	c.color.value = color
	s.clip = c
	return c
}

// Clip is the in-memory double of daw.Clip.
type Clip struct {
	w     *worker
	name  listenable[string]
	color listenable[daw.Color]
}

func (c *Clip) Name() (string, error) { return callR(c.w, c.name.get), nil }

func (c *Clip) AddNameListener(cb func(string)) (daw.Unsubscribe, error) {
	var unsub func()
	call(c.w, func() { unsub = c.name.addListener(cb) })
	return func() error { call(c.w, unsub); return nil }, nil
}

func (c *Clip) Color() (daw.Color, error) { return callR(c.w, c.color.get), nil }

func (c *Clip) AddColorListener(cb func(daw.Color)) (daw.Unsubscribe, error) {
	var unsub func()
	call(c.w, func() { unsub = c.color.addListener(cb) })
	return func() error { call(c.w, unsub); return nil }, nil
}

// SimulateRename / SimulateRecolor mimic external clip edits.
func (c *Clip) SimulateRename(name string)         { call(c.w, func() { c.name.setAndNotify(name, equalComparable[string]) }) }
func (c *Clip) SimulateRecolor(col daw.Color)       { call(c.w, func() { c.color.setAndNotify(col, equalComparable[daw.Color]) }) }

// Package joypad implements the DMG joypad latch at 0xFF00.
package joypad

import (
	"bytes"
	"encoding/gob"
)

// Logical key indices, matching spec §4.5.
const (
	Right  = 0
	Left   = 1
	Up     = 2
	Down   = 3
	A      = 4
	B      = 5
	Select = 6
	Start  = 7
)

// Requester raises a bit on the interrupt controller (interrupt.Joypad).
type Requester func(bit int)

// Joypad holds the pressed/released state of all eight keys (1=released,
// 0=pressed, matching the active-low hardware convention) and the last
// row-selection nibble written to 0xFF00.
type Joypad struct {
	state byte // bit i: 1=released, 0=pressed
	sel   byte // full byte as last written; bits 5-4 select the rows
	req   Requester
}

// New returns a Joypad with all keys released and a selection byte of 0,
// so bits 5-4 are both clear and both rows are selected.
func New(req Requester) *Joypad {
	return &Joypad{state: 0xFF, req: req}
}

// WriteSelect stores the full byte written to 0xFF00. Only bits 5-4 are
// meaningful as row selectors, but the upper bits are kept verbatim so
// Read can echo them back unchanged.
func (j *Joypad) WriteSelect(v byte) { j.sel = v }

// Read returns the value visible at 0xFF00: the upper bits echo back
// exactly what was last written via WriteSelect, bits 3-0 are the AND of
// the selected row(s), with pressed keys read as 0.
func (j *Joypad) Read() byte {
	res := j.sel | 0x0F
	if j.sel&0x10 == 0 { // P14 low selects D-Pad: Right,Left,Up,Down
		if j.state&(1<<Right) == 0 {
			res &^= 0x01
		}
		if j.state&(1<<Left) == 0 {
			res &^= 0x02
		}
		if j.state&(1<<Up) == 0 {
			res &^= 0x04
		}
		if j.state&(1<<Down) == 0 {
			res &^= 0x08
		}
	}
	if j.sel&0x20 == 0 { // P15 low selects Buttons: A,B,Select,Start
		if j.state&(1<<A) == 0 {
			res &^= 0x01
		}
		if j.state&(1<<B) == 0 {
			res &^= 0x02
		}
		if j.state&(1<<Select) == 0 {
			res &^= 0x04
		}
		if j.state&(1<<Start) == 0 {
			res &^= 0x08
		}
	}
	return res
}

// isSelected reports whether the row owning key k is currently selected.
func (j *Joypad) isSelected(k int) bool {
	if k <= Down {
		return j.sel&0x10 == 0
	}
	return j.sel&0x20 == 0
}

// OnKeyPressed clears bit k (marks it pressed). If k's row is selected and
// the key was previously released, this is a 1->0 transition on the
// latch and raises IF.bit4 (Joypad).
func (j *Joypad) OnKeyPressed(k int) {
	wasReleased := j.state&(1<<uint(k)) != 0
	j.state &^= 1 << uint(k)
	if wasReleased && j.isSelected(k) && j.req != nil {
		j.req(4) // interrupt.Joypad
	}
}

// OnKeyReleased sets bit k (marks it released).
func (j *Joypad) OnKeyReleased(k int) {
	j.state |= 1 << uint(k)
}

type persisted struct {
	State, Select byte
}

// SaveState returns a gob-encoded snapshot of the latch.
func (j *Joypad) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(persisted{State: j.state, Select: j.sel})
	return buf.Bytes()
}

// LoadState restores the latch from a snapshot produced by SaveState.
func (j *Joypad) LoadState(data []byte) {
	var s persisted
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	j.state, j.sel = s.State, s.Select
}

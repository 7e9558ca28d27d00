// Package timer implements the DMG DIV/TIMA/TMA/TAC timer block.
package timer

import (
	"bytes"
	"encoding/gob"
)

// selectBit maps TAC's clock-select bits to the divider bit whose falling
// edge clocks TIMA.
var selectBit = [4]uint{9, 3, 5, 7}

// Requester raises a bit on the interrupt controller (interrupt.Timer).
type Requester func(bit int)

// Timer owns DIV's internal 16-bit counter plus TIMA/TMA/TAC. A TIMA
// overflow reloads it from TMA and requests interrupt.Timer in the same
// falling-edge step that overflowed it.
type Timer struct {
	divInternal uint16
	tima        byte
	tma         byte
	tac         byte // low 3 bits used

	req Requester
}

// New returns a Timer that raises interrupts through req.
func New(req Requester) *Timer { return &Timer{req: req} }

// DIV returns the memory-visible divider (0xFF04): the high byte of the
// internal 16-bit counter.
func (t *Timer) DIV() byte { return byte(t.divInternal >> 8) }

// WriteDIV resets the internal counter (and therefore DIV) to zero. A
// write here can itself cause a falling edge on the timer input, which
// increments TIMA exactly like any other falling edge.
func (t *Timer) WriteDIV() {
	old := t.timerInput()
	t.divInternal = 0
	if old && !t.timerInput() {
		t.incrementTIMA()
	}
}

// TIMA returns the current counter (0xFF05).
func (t *Timer) TIMA() byte { return t.tima }

// WriteTIMA sets the counter.
func (t *Timer) WriteTIMA(v byte) {
	t.tima = v
}

// TMA returns the reload value (0xFF06).
func (t *Timer) TMA() byte { return t.tma }

// WriteTMA sets the reload value.
func (t *Timer) WriteTMA(v byte) { t.tma = v }

// TAC returns the control register (0xFF07); unused bits read as 1.
func (t *Timer) TAC() byte { return 0xF8 | (t.tac & 0x07) }

// WriteTAC sets the control register. Changing either the enable bit or
// the clock-select bits can itself produce a falling edge, which is
// handled the same as any other falling edge.
func (t *Timer) WriteTAC(v byte) {
	old := t.timerInput()
	t.tac = v & 0x07
	if old && !t.timerInput() {
		t.incrementTIMA()
	}
}

// Tick advances the timer by the given number of master cycles.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		old := t.timerInput()
		t.divInternal++
		falling := old && !t.timerInput()

		if falling {
			t.incrementTIMA()
		}
	}
}

func (t *Timer) timerInput() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	bit := selectBit[t.tac&0x03]
	return (t.divInternal>>bit)&1 != 0
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.req != nil {
			t.req(2) // interrupt.Timer
		}
		return
	}
	t.tima++
}

type state struct {
	DivInternal uint16
	TIMA, TMA   byte
	TAC         byte
}

// SaveState returns a gob-encoded snapshot of the timer's registers.
func (t *Timer) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(state{
		DivInternal: t.divInternal, TIMA: t.tima, TMA: t.tma, TAC: t.tac,
	})
	return buf.Bytes()
}

// LoadState restores the timer from a snapshot produced by SaveState.
func (t *Timer) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	t.divInternal, t.tima, t.tma, t.tac = s.DivInternal, s.TIMA, s.TMA, s.TAC
}

// Package apu exposes the DMG's sound registers (NR10-NR52 and the wave
// RAM window) as plain read/write storage. Channel synthesis, mixing, and
// sample generation are out of scope; a caller that wants audio output
// gets silence, but every register the hardware exposes reads back
// exactly what was last written to it (with the same fixed bits real
// hardware reports), so ROMs that probe NR52/NR10-NR44 before deciding
// whether to use sound still see sane values.
package apu

import (
	"bytes"
	"encoding/gob"
)

// APU holds the raw register contents for the four sound channels plus
// the mixer/power registers (NR50-NR52) and wave RAM.
type APU struct {
	enabled bool

	nr10, nr11, nr12, nr13, nr14 byte // CH1 square+sweep
	nr21, nr22, nr23, nr24       byte // CH2 square
	nr30, nr31, nr32, nr33, nr34 byte // CH3 wave
	nr41, nr42, nr43, nr44       byte // CH4 noise
	nr50, nr51, nr52             byte // mixer/power

	waveRAM [16]byte // FF30-FF3F
}

// New returns a powered-on APU with the DMG's post-boot mixer defaults
// (max master volume; NR51=0xF3 routes all four channels to the left
// output and channels 1-2 to the right).
func New() *APU {
	return &APU{enabled: true, nr50: 0x77, nr51: 0xF3, nr52: 0xF1}
}

// CPURead reads an APU register, masking in the fixed high bits real
// hardware always reports for write-only fields.
func (a *APU) CPURead(addr uint16) byte {
	switch addr {
	case 0xFF10:
		return 0x80 | a.nr10
	case 0xFF11:
		return 0x3F | a.nr11
	case 0xFF12:
		return a.nr12
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return 0xBF | a.nr14
	case 0xFF16:
		return 0x3F | a.nr21
	case 0xFF17:
		return a.nr22
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return 0xBF | a.nr24
	case 0xFF1A:
		return 0x7F | a.nr30
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return 0x9F | a.nr32
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return 0xBF | a.nr34
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return a.nr42
	case 0xFF22:
		return a.nr43
	case 0xFF23:
		return 0xBF | a.nr44
	case 0xFF24:
		return a.nr50
	case 0xFF25:
		return a.nr51
	case 0xFF26:
		pwr := byte(0)
		if a.enabled {
			pwr = 0x80
		}
		return 0x70 | pwr | (a.nr52 & 0x0F)
	case 0xFF30, 0xFF31, 0xFF32, 0xFF33, 0xFF34, 0xFF35, 0xFF36, 0xFF37,
		0xFF38, 0xFF39, 0xFF3A, 0xFF3B, 0xFF3C, 0xFF3D, 0xFF3E, 0xFF3F:
		return a.waveRAM[addr-0xFF30]
	default:
		return 0xFF
	}
}

// CPUWrite writes an APU register. Writes to any register other than
// NR52 while the APU is powered off are ignored, matching real hardware
// (wave RAM is exempt from this gating).
func (a *APU) CPUWrite(addr uint16, v byte) {
	if addr == 0xFF26 {
		a.enabled = (v & 0x80) != 0
		if !a.enabled {
			*a = APU{enabled: false, nr50: a.nr50, nr51: a.nr51, waveRAM: a.waveRAM}
		}
		return
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.waveRAM[addr-0xFF30] = v
		return
	}
	if !a.enabled {
		return
	}
	switch addr {
	case 0xFF10:
		a.nr10 = v
	case 0xFF11:
		a.nr11 = v
	case 0xFF12:
		a.nr12 = v
	case 0xFF13:
		a.nr13 = v
	case 0xFF14:
		a.nr14 = v
	case 0xFF16:
		a.nr21 = v
	case 0xFF17:
		a.nr22 = v
	case 0xFF18:
		a.nr23 = v
	case 0xFF19:
		a.nr24 = v
	case 0xFF1A:
		a.nr30 = v
	case 0xFF1B:
		a.nr31 = v
	case 0xFF1C:
		a.nr32 = v
	case 0xFF1D:
		a.nr33 = v
	case 0xFF1E:
		a.nr34 = v
	case 0xFF20:
		a.nr41 = v
	case 0xFF21:
		a.nr42 = v
	case 0xFF22:
		a.nr43 = v
	case 0xFF23:
		a.nr44 = v
	case 0xFF24:
		a.nr50 = v
	case 0xFF25:
		a.nr51 = v
	}
}

// PullSamples always reports silence: channel synthesis is out of scope.
// It exists so a front end can still open an audio player against the
// APU without special-casing "no sound" at the call site.
func (a *APU) PullSamples(max int) []int16 {
	if max <= 0 {
		return nil
	}
	return make([]int16, max)
}

type apuState struct {
	Enabled bool
	NR10, NR11, NR12, NR13, NR14 byte
	NR21, NR22, NR23, NR24       byte
	NR30, NR31, NR32, NR33, NR34 byte
	NR41, NR42, NR43, NR44       byte
	NR50, NR51, NR52             byte
	WaveRAM                      [16]byte
}

// SaveState returns a gob-encoded snapshot of every register.
func (a *APU) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(apuState{
		Enabled: a.enabled,
		NR10: a.nr10, NR11: a.nr11, NR12: a.nr12, NR13: a.nr13, NR14: a.nr14,
		NR21: a.nr21, NR22: a.nr22, NR23: a.nr23, NR24: a.nr24,
		NR30: a.nr30, NR31: a.nr31, NR32: a.nr32, NR33: a.nr33, NR34: a.nr34,
		NR41: a.nr41, NR42: a.nr42, NR43: a.nr43, NR44: a.nr44,
		NR50: a.nr50, NR51: a.nr51, NR52: a.nr52,
		WaveRAM: a.waveRAM,
	})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (a *APU) LoadState(data []byte) {
	var s apuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	a.enabled = s.Enabled
	a.nr10, a.nr11, a.nr12, a.nr13, a.nr14 = s.NR10, s.NR11, s.NR12, s.NR13, s.NR14
	a.nr21, a.nr22, a.nr23, a.nr24 = s.NR21, s.NR22, s.NR23, s.NR24
	a.nr30, a.nr31, a.nr32, a.nr33, a.nr34 = s.NR30, s.NR31, s.NR32, s.NR33, s.NR34
	a.nr41, a.nr42, a.nr43, a.nr44 = s.NR41, s.NR42, s.NR43, s.NR44
	a.nr50, a.nr51, a.nr52 = s.NR50, s.NR51, s.NR52
	a.waveRAM = s.WaveRAM
}

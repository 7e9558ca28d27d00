package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC3 implements ROM/RAM banking plus the RTC register file. RTC
// registers are plain read/writeback state: there is no wall-clock
// ticking, only the latch-and-register-select protocol real software
// uses to read the clock.
//
// Banking behavior:
//   - 0000-1FFF: RAM/RTC enable (0x0A in low nibble)
//   - 2000-3FFF: ROM bank, 7 bits (0 maps to 1)
//   - 4000-5FFF: RAM bank (0-3) or RTC register select (0x08-0x0C)
//   - 6000-7FFF: latch: a 0x00->0x01 write copies the live registers
//     into the latched snapshot that 0xA000-0xBFFF reads expose
//   - A000-BFFF: external RAM or latched RTC register, per the last
//     4000-5FFF select
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits (1..127)
	sel        byte // RAM bank (0..3) or RTC register select (0x08..0x0C)

	rtc       rtcRegs
	rtcLatch  rtcRegs
	latchPrev byte
}

// rtcRegs is the MBC3 RTC register file: seconds, minutes, hours,
// lower 8 bits of the day counter, and the day-high byte (bit0: day
// counter bit 8, bit6: halt, bit7: day-carry).
type rtcRegs struct {
	S, M, H, DL, DH byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBank = 1
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.sel >= 0x08 && m.sel <= 0x0C {
			return m.readRTC(m.sel)
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		rb := int(m.sel & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) readRTC(reg byte) byte {
	switch reg {
	case 0x08:
		return m.rtcLatch.S
	case 0x09:
		return m.rtcLatch.M
	case 0x0A:
		return m.rtcLatch.H
	case 0x0B:
		return m.rtcLatch.DL
	case 0x0C:
		return m.rtcLatch.DH
	default:
		return 0xFF
	}
}

func (m *MBC3) writeRTC(reg, value byte) {
	switch reg {
	case 0x08:
		m.rtc.S = value
	case 0x09:
		m.rtc.M = value
	case 0x0A:
		m.rtc.H = value
	case 0x0B:
		m.rtc.DL = value
	case 0x0C:
		m.rtc.DH = value
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.sel = value
	case addr < 0x8000:
		if m.latchPrev == 0x00 && value == 0x01 {
			m.rtcLatch = m.rtc
		}
		m.latchPrev = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.sel >= 0x08 && m.sel <= 0x0C {
			m.writeRTC(m.sel, value)
			return
		}
		if len(m.ram) == 0 {
			return
		}
		rb := int(m.sel & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}

type mbc3State struct {
	RamEnabled    bool
	RomBank, Sel  byte
	RTC, RTCLatch rtcRegs
	LatchPrev     byte
}

// SaveState returns a gob-encoded snapshot of the banking and RTC
// registers (external RAM is not included; see BatteryBacked).
func (m *MBC3) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc3State{
		RamEnabled: m.ramEnabled, RomBank: m.romBank, Sel: m.sel,
		RTC: m.rtc, RTCLatch: m.rtcLatch, LatchPrev: m.latchPrev,
	})
	return buf.Bytes()
}

// LoadState restores the banking and RTC registers from a snapshot.
func (m *MBC3) LoadState(data []byte) {
	var s mbc3State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ramEnabled, m.romBank, m.sel = s.RamEnabled, s.RomBank, s.Sel
	m.rtc, m.rtcLatch, m.latchPrev = s.RTC, s.RTCLatch, s.LatchPrev
}

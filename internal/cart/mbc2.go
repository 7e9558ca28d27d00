package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC2 implements MBC2 ROM banking with its built-in 512x4-bit RAM.
// There is no external RAM chip: the cartridge itself carries 512
// nibbles at 0xA000-0xA1FF, mirrored through the rest of the
// 0xA000-0xBFFF window, and only the low nibble of each stored byte
// is meaningful (the high nibble reads back as 1s).
type MBC2 struct {
	rom []byte
	ram [512]byte // low nibble significant

	ramEnabled bool
	romBank    byte // 4 bits (0 maps to 1)
}

// NewMBC2 returns an MBC2 cartridge. MBC2 RAM size is fixed by the
// chip, so no ramSize parameter is needed.
func NewMBC2(rom []byte) *MBC2 {
	m := &MBC2{rom: rom}
	m.romBank = 1
	return m
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x0F)
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
		return 0xF0 | (m.ram[addr&0x01FF] & 0x0F)
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		// Bit 8 of the address (addr.bit8) selects enable-vs-bank-select:
		// set -> ROM bank number, clear -> RAM enable.
		if addr&0x0100 != 0 {
			v := value & 0x0F
			if v == 0 {
				v = 1
			}
			m.romBank = v
		} else {
			m.ramEnabled = (value & 0x0F) == 0x0A
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[addr&0x01FF] = value & 0x0F
	}
}

// SaveRAM returns the 512 nibbles of built-in RAM (one byte each, low
// nibble significant), matching the flat battery-save format.
func (m *MBC2) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram[:])
	return out
}

func (m *MBC2) LoadRAM(data []byte) {
	n := copy(m.ram[:], data)
	_ = n
}

type mbc2State struct {
	RamEnabled bool
	RomBank    byte
}

// SaveState returns a gob-encoded snapshot of the banking registers.
// The built-in RAM is battery-backed state, not banking state; see
// SaveRAM/LoadRAM.
func (m *MBC2) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc2State{RamEnabled: m.ramEnabled, RomBank: m.romBank})
	return buf.Bytes()
}

// LoadState restores the banking registers from a snapshot.
func (m *MBC2) LoadState(data []byte) {
	var s mbc2State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ramEnabled, m.romBank = s.RamEnabled, s.RomBank
}

// Package core wires the CPU, bus, and their sub-components into a single
// boundary type, Machine, that a front end (cmd/gbemu, cmd/cpurunner, or a
// test harness) drives one instruction or one frame at a time.
package core

import (
	"bytes"
	"encoding/gob"

	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/bus"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/coreerr"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/cpu"
)

// CyclesPerFrame is the DMG's cycle budget for one 59.7 Hz frame
// (154 scanlines * 456 dots). Tick clamps any single call to this many
// cycles so a caller that stalls (debugger breakpoint, paused window)
// can't advance the machine by more than one frame's worth of work.
const CyclesPerFrame = 70224

// Machine owns a CPU and its bus and exposes the spec's external
// interface: ROM/battery loading, single-step and frame-tick execution,
// framebuffer access, and key/serial callbacks.
type Machine struct {
	bus *bus.Bus
	cpu *cpu.CPU
}

// LoadROM constructs a Machine from ROM bytes, choosing a cartridge MBC
// implementation from the header. It returns coreerr.UnsupportedCartridgeError
// or coreerr.MalformedROMError on a bad ROM.
func LoadROM(rom []byte) (*Machine, error) {
	b, err := bus.New(rom)
	if err != nil {
		return nil, err
	}
	c := cpu.New(b)
	c.ResetNoBoot()
	m := &Machine{bus: b, cpu: c}
	m.applyPostBootDefaults()
	return m, nil
}

// LoadROMWithBootROM is the same as LoadROM but runs the given DMG boot
// ROM from 0x0000 instead of jumping straight to cartridge entry point.
func LoadROMWithBootROM(rom, boot []byte) (*Machine, error) {
	b, err := bus.New(rom)
	if err != nil {
		return nil, err
	}
	b.SetBootROM(boot)
	c := cpu.New(b)
	c.SetPC(0x0000)
	m := &Machine{bus: b, cpu: c}
	return m, nil
}

func (m *Machine) applyPostBootDefaults() {
	b := m.bus
	b.Write(0xFF00, 0xCF)
	b.Write(0xFF05, 0x00)
	b.Write(0xFF06, 0x00)
	b.Write(0xFF07, 0x00)
	b.Write(0xFF40, 0x91)
	b.Write(0xFF42, 0x00)
	b.Write(0xFF43, 0x00)
	b.Write(0xFF45, 0x00)
	b.Write(0xFF47, 0xFC)
	b.Write(0xFF48, 0xFF)
	b.Write(0xFF49, 0xFF)
	b.Write(0xFF4A, 0x00)
	b.Write(0xFF4B, 0x00)
	b.Write(0xFFFF, 0x00)
}

// LoadBattery restores battery-backed external RAM from a flat byte slice
// with no header (spec's battery-RAM format). It is a no-op if the loaded
// cartridge has no battery-backed RAM.
func (m *Machine) LoadBattery(data []byte) {
	if bb, ok := m.bus.Cart().(interface{ LoadRAM([]byte) }); ok {
		bb.LoadRAM(data)
	}
}

// SerializeBattery returns the cartridge's external RAM as a flat byte
// slice, or nil if the cartridge has no battery-backed RAM.
func (m *Machine) SerializeBattery() []byte {
	if bb, ok := m.bus.Cart().(interface{ SaveRAM() []byte }); ok {
		return bb.SaveRAM()
	}
	return nil
}

// Step executes exactly one CPU instruction (or one pending-interrupt
// service routine) and returns the number of cycles it consumed. A
// non-nil error is a *coreerr.InvalidOpcodeError: one of the eleven
// genuinely undefined primary opcodes was fetched, and emulation must
// stop per spec §7.
func (m *Machine) Step() (cycles int, err error) {
	return m.cpu.Step()
}

// Tick runs instructions until at least `cycles` CPU cycles have elapsed,
// clamped to CyclesPerFrame so a single call never runs more than one
// frame's worth of emulation. It stops early and returns a non-nil error
// if Step ever returns one.
func (m *Machine) Tick(cycles int) error {
	if cycles > CyclesPerFrame {
		cycles = CyclesPerFrame
	}
	ran := 0
	for ran < cycles {
		c, err := m.cpu.Step()
		if err != nil {
			return err
		}
		ran += c
	}
	return nil
}

// Framebuffer returns the PPU's current ARGB8888 frame, 160x144 pixels
// row-major. The returned pointer is owned by the Machine and is
// overwritten as emulation continues; callers that need a stable copy
// should copy it out.
func (m *Machine) Framebuffer() *[160 * 144]uint32 {
	return m.bus.PPU().Framebuffer()
}

// OnKeyPressed/OnKeyReleased forward joypad button transitions using the
// joypad package's key constants (joypad.Right, joypad.A, and so on).
func (m *Machine) OnKeyPressed(key int)  { m.bus.OnKeyPressed(key) }
func (m *Machine) OnKeyReleased(key int) { m.bus.OnKeyReleased(key) }

// OnSerialByte registers a callback invoked with each byte the cartridge
// writes out over the serial port (0xFF01/0xFF02). Only one callback is
// active at a time; a later call replaces an earlier one.
func (m *Machine) OnSerialByte(fn func(b byte)) {
	m.bus.SetSerialWriter(writerFunc(fn))
}

type writerFunc func(b byte)

func (f writerFunc) Write(p []byte) (int, error) {
	for _, b := range p {
		f(b)
	}
	return len(p), nil
}

// SaveState returns a gob-encoded snapshot covering CPU registers and IME
// state plus the full bus snapshot (WRAM/HRAM/serial/DMA, PPU, timer,
// joypad, interrupt controller, and cartridge banking/RTC registers).
// This is distinct from SerializeBattery's flat external-RAM format.
func (m *Machine) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(m.cpu.SaveState())
	_ = enc.Encode(m.bus.SaveState())
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState. It returns a
// coreerr.IOError if the data is malformed.
func (m *Machine) LoadState(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var cpuBytes, busBytes []byte
	if err := dec.Decode(&cpuBytes); err != nil {
		return coreerr.IO("core.LoadState", err)
	}
	if err := dec.Decode(&busBytes); err != nil {
		return coreerr.IO("core.LoadState", err)
	}
	m.cpu.LoadState(cpuBytes)
	m.bus.LoadState(busBytes)
	return nil
}

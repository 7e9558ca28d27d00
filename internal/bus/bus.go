// Package bus implements the DMG memory map: it routes CPU-visible
// addresses to the cartridge, VRAM/OAM (via the PPU), work/high RAM,
// and the timer/joypad/interrupt/serial I/O registers.
package bus

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/timer"
)

// Bus wires CPU-visible address space to the cartridge, WRAM, HRAM, PPU,
// timer, joypad, and interrupt controller.
type Bus struct {
	cart cart.Cartridge

	// Work RAM (WRAM) 8 KiB at 0xC000-0xDFFF; Echo 0xE000-0xFDFF mirrors C000-DDFF.
	wram [0x2000]byte

	// High RAM (HRAM) 0xFF80-0xFFFE (127 bytes)
	hram [0x7F]byte

	ppu   *ppu.PPU
	timer *timer.Timer
	joy   *joypad.Joypad
	ic    *interrupt.Controller
	apu   *apu.APU

	// Serial
	sb byte      // FF01 data
	sc byte      // FF02 control (bit7 start, bit0 clock source; external transfer completes immediately)
	sw io.Writer // sink for serial output (optional)

	// OAM DMA: copies the 160-byte page synchronously at the point of
	// the 0xFF46 write (no gradual per-cycle drip, no CPU stall modeled).
	dma byte // FF46

	// Boot ROM support
	bootROM     []byte
	bootEnabled bool

	debugTimer bool
}

// New constructs a Bus with a cartridge implementation chosen from the
// ROM header.
func New(rom []byte) (*Bus, error) {
	c, err := cart.NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	return NewWithCartridge(c), nil
}

// NewWithCartridge wires a provided cartridge implementation.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.ic = interrupt.New()
	b.ppu = ppu.New(func(bit int) { b.ic.Request(bit) })
	b.timer = timer.New(func(bit int) { b.ic.Request(bit) })
	b.joy = joypad.New(func(bit int) { b.ic.Request(bit) })
	b.apu = apu.New()
	if os.Getenv("GB_DEBUG_TIMER") != "" {
		b.debugTimer = true
	}
	return b
}

// PPU returns the internal PPU for read-only rendering helpers.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart returns the underlying cartridge for optional battery operations.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Interrupts returns the interrupt controller for CPU servicing.
func (b *Bus) Interrupts() *interrupt.Controller { return b.ic }

// APU returns the sound register block for a front end to query (e.g. to
// open an audio player against it; it always produces silence).
func (b *Bus) APU() *apu.APU { return b.apu }

// OnKeyPressed/OnKeyReleased forward joypad transitions; k is one of the
// joypad package's key constants.
func (b *Bus) OnKeyPressed(k int)  { b.joy.OnKeyPressed(k) }
func (b *Bus) OnKeyReleased(k int) { b.joy.OnKeyReleased(k) }

// SetSerialWriter sets a sink that receives bytes written via the serial port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// SetBootROM loads a DMG boot ROM to be mapped at 0x0000-0x00FF until disabled via 0xFF50 write.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && addr < 0x0100 && len(b.bootROM) >= 0x100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		return b.wram[mirror-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		return 0x00
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFF00:
		return b.joy.Read()
	case addr == 0xFF04:
		return b.timer.DIV()
	case addr == 0xFF05:
		return b.timer.TIMA()
	case addr == 0xFF06:
		return b.timer.TMA()
	case addr == 0xFF07:
		return b.timer.TAC()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr >= 0xFF10 && addr <= 0xFF26, addr >= 0xFF30 && addr <= 0xFF3F:
		return b.apu.CPURead(addr)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF50:
		return 0xFF
	case addr == 0xFF0F:
		return b.ic.IF()
	case addr == 0xFFFF:
		return b.ic.IE()
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		if mirror >= 0xC000 && mirror <= 0xDDFF {
			b.wram[mirror-0xC000] = value
		}
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFF00:
		b.joy.WriteSelect(value)
	case addr == 0xFF04:
		b.timer.WriteDIV()
	case addr == 0xFF05:
		b.timer.WriteTIMA(value)
	case addr == 0xFF06:
		b.timer.WriteTMA(value)
	case addr == 0xFF07:
		b.timer.WriteTAC(value)
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if (b.sc & 0x80) != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.ic.Request(interrupt.Serial)
			b.sc &^= 0x80
		}
	case addr >= 0xFF10 && addr <= 0xFF26, addr >= 0xFF30 && addr <= 0xFF3F:
		b.apu.CPUWrite(addr, value)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF46:
		b.dma = value
		b.doOAMDMA(value)
	case addr == 0xFF50:
		if value != 0x00 {
			b.bootEnabled = false
		}
	case addr == 0xFF0F:
		b.ic.SetIF(value)
	case addr == 0xFFFF:
		b.ic.SetIE(value)
	}
}

// doOAMDMA copies 160 bytes from src*0x100 into OAM synchronously, at
// the point of the 0xFF46 write. Real hardware stalls the CPU bus
// during the transfer; that stall is not modeled here.
func (b *Bus) doOAMDMA(src byte) {
	base := uint16(src) << 8
	oam := b.ppu.OAMBytes()
	for i := 0; i < 0xA0; i++ {
		oam[i] = b.Read(base + uint16(i))
	}
	b.ppu.InvalidateAllSprites()
}

// Tick advances the timer and PPU by the given number of CPU cycles.
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	b.timer.Tick(cycles)
	b.ppu.Tick(cycles)
}

type busState struct {
	WRAM   [0x2000]byte
	HRAM   [0x7F]byte
	SB, SC byte
	DMA    byte
	BootEn bool
}

// SaveState returns a gob-encoded snapshot of WRAM/HRAM/serial/DMA plus
// the PPU, timer, joypad, interrupt, and cartridge sub-states.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(busState{
		WRAM: b.wram, HRAM: b.hram, SB: b.sb, SC: b.sc, DMA: b.dma, BootEn: b.bootEnabled,
	})
	_ = enc.Encode(b.ppu.SaveState())
	_ = enc.Encode(b.timer.SaveState())
	_ = enc.Encode(b.joy.SaveState())
	_ = enc.Encode(b.ic.SaveState())
	_ = enc.Encode(b.apu.SaveState())
	_ = enc.Encode(b.cart.SaveState())
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (b *Bus) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s busState
	if err := dec.Decode(&s); err != nil {
		return
	}
	b.wram, b.hram = s.WRAM, s.HRAM
	b.sb, b.sc, b.dma, b.bootEnabled = s.SB, s.SC, s.DMA, s.BootEn

	var sub []byte
	if err := dec.Decode(&sub); err == nil {
		b.ppu.LoadState(sub)
	}
	if err := dec.Decode(&sub); err == nil {
		b.timer.LoadState(sub)
	}
	if err := dec.Decode(&sub); err == nil {
		b.joy.LoadState(sub)
	}
	if err := dec.Decode(&sub); err == nil {
		b.ic.LoadState(sub)
	}
	if err := dec.Decode(&sub); err == nil {
		b.apu.LoadState(sub)
	}
	if err := dec.Decode(&sub); err == nil {
		b.cart.LoadState(sub)
	}
}

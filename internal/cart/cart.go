package cart

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/coreerr"
)

// Cartridge defines the minimal interface the MMU needs for ROM/RAM banking.
// Implementations can be ROM-only or MBC variants. Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000–0x7FFF) and external RAM (0xA000–0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000–0x7FFF) and external RAM writes (0xA000–0xBFFF).
	Write(addr uint16, value byte)
	// SaveState/LoadState serialize internal banking registers (and RTC
	// shadow registers where applicable) for save states. External RAM
	// contents are NOT included here; see BatteryBacked.
	SaveState() []byte
	LoadState(data []byte)
}

// BatteryBacked is an optional interface for cartridges with external RAM
// to be persisted as battery-backed save data (spec §6's flat-bytes
// format: no header, no checksum).
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// NewCartridge picks an implementation based on the ROM header's cart-type
// byte (0x147). It returns an UnsupportedCartridgeError for a byte that
// maps to no known MBC family, and a MalformedROMError if the ROM is too
// small to contain a header at all or its length differs from the size
// the header's ROM-size byte declares.
func NewCartridge(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, coreerr.MalformedROM(err)
	}
	if h.ROMSizeBytes != 0 && len(rom) != h.ROMSizeBytes {
		return nil, coreerr.MalformedROM(fmt.Errorf("ROM is %d bytes, header declares %d", len(rom), h.ROMSizeBytes))
	}
	switch h.CartType {
	case 0x00, 0x08, 0x09:
		return NewNoMBC(rom, h.RAMSizeBytes), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), nil
	case 0x05, 0x06:
		return NewMBC2(rom), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), nil
	default:
		return nil, coreerr.UnsupportedCartridge(h.CartType)
	}
}

package ppu

import "testing"

// advanceLines ticks the PPU forward by n full visible lines (456 dots each).
func advanceLines(p *PPU, n int) { p.Tick(456 * n) }

func TestWindowLineCounterAdvancesOnlyWhenVisible(t *testing.T) {
	p := New(nil)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20) // LCD+BG+Window on
	p.CPUWrite(0xFF4A, 10)             // WY = 10
	p.CPUWrite(0xFF4B, 7)              // WX = 7 -> winXStart=0

	advanceLines(p, 11) // lines 0..10, i.e. through line WY, rendering each HBLANK
	if p.windowLine == 0 {
		t.Fatalf("expected windowLine to advance past WY, got %d", p.windowLine)
	}
}

func TestWindowNotVisibleWhenWXTooLarge(t *testing.T) {
	p := New(nil)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)
	p.CPUWrite(0xFF4A, 5)
	p.CPUWrite(0xFF4B, 200) // WX-7 >= 160: never visible

	advanceLines(p, 8)
	if p.windowLine != 0 {
		t.Fatalf("expected windowLine=0 when WX>=167, got %d", p.windowLine)
	}
}

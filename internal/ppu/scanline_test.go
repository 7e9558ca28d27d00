package ppu

import "testing"

type mockMap map[uint16]byte

func (m mockMap) TileMapEntry(mapBase uint16, mapX, mapY uint16) byte {
	return m[mapBase+mapY*32+mapX]
}

func identityIndex(n byte) int { return int(n) }

func TestScanlineFetcherSCXOffsetAndTileWrap(t *testing.T) {
	mapBase := uint16(0x9800)
	tilemap := mockMap{}
	cache := mockCache{}
	fineY := byte(0)
	for tile := 0; tile < 32; tile++ {
		tilemap[mapBase+uint16(tile)] = byte(tile)
		lo := byte(tile)
		hi := ^byte(tile)
		var row [8]byte
		for i := 0; i < 8; i++ {
			b := 7 - byte(i)
			row[i] = ((hi>>b)&1)<<1 | ((lo >> b) & 1)
		}
		cache[[2]int{tile, int(fineY)}] = row
	}

	out := RenderBGScanline(cache, tilemap, mapBase, identityIndex, 5, 0, 0)
	for i := 0; i < 3; i++ {
		want := cache[[2]int{0, 0}][5+i]
		if out[i] != want {
			t.Fatalf("px %d got %d want %d", i, out[i], want)
		}
	}
	for i := 0; i < 8; i++ {
		want := cache[[2]int{1, 0}][i]
		if out[3+i] != want {
			t.Fatalf("tile1 px %d got %d want %d", i, out[3+i], want)
		}
	}
}

func TestScanlineFetcherSCYRowSelect(t *testing.T) {
	// bgY = ly+scy = 11 -> mapY=1, fineY=3
	mapBase := uint16(0x9800)
	tilemap := mockMap{mapBase + 32 + 0: 0, mapBase + 32 + 1: 1}
	cache := mockCache{
		{0, 3}: {0, 0, 1, 0, 0, 1, 1, 0},
		{1, 3}: {1, 1, 0, 1, 0, 1, 0, 1},
	}

	out := RenderBGScanline(cache, tilemap, mapBase, identityIndex, 0, 11, 0)
	for i := 0; i < 8; i++ {
		if out[i] != cache[[2]int{0, 3}][i] {
			t.Fatalf("tile0 px %d got %d want %d", i, out[i], cache[[2]int{0, 3}][i])
		}
	}
	for i := 0; i < 8; i++ {
		if out[8+i] != cache[[2]int{1, 3}][i] {
			t.Fatalf("tile1 px %d got %d want %d", i, out[8+i], cache[[2]int{1, 3}][i])
		}
	}
}

func TestWindowScanlineWXAndTiles(t *testing.T) {
	mapBase := uint16(0x9800)
	tilemap := mockMap{mapBase: 0, mapBase + 1: 1}
	cache := mockCache{
		{0, 2}: {1, 0, 1, 0, 1, 0, 1, 0},
		{1, 2}: {0, 1, 0, 1, 0, 1, 0, 1},
	}

	out := RenderWindowScanline(cache, tilemap, mapBase, identityIndex, 20, 2)
	for x := 0; x < 20; x++ {
		if out[x] != 0 {
			t.Fatalf("pre-window px %d = %d, want 0", x, out[x])
		}
	}
	for i := 0; i < 8; i++ {
		if out[20+i] != cache[[2]int{0, 2}][i] {
			t.Fatalf("tile0 px %d got %d want %d", i, out[20+i], cache[[2]int{0, 2}][i])
		}
	}
	for i := 0; i < 8; i++ {
		if out[28+i] != cache[[2]int{1, 2}][i] {
			t.Fatalf("tile1 px %d got %d want %d", i, out[28+i], cache[[2]int{1, 2}][i])
		}
	}
}

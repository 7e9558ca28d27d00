package ppu

// TileMapReader returns the tile number stored at a tile-map cell.
type TileMapReader interface {
	TileMapEntry(mapBase uint16, mapX, mapY uint16) byte
}

// RenderBGScanline renders 160 BG color indices for the given line using
// the cached-tile fetcher/FIFO pipeline.
func RenderBGScanline(cache TileRowReader, mapReader TileMapReader, mapBase uint16, tileAddrIndex func(byte) int, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	fineY := int(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(scx)
	mapX := (startX >> 3) & 31
	fineX := int(startX & 7)

	var q fifo
	f := newBGFetcher(cache, &q)
	tileNum := mapReader.TileMapEntry(mapBase, mapX, mapY)
	f.Configure(tileAddrIndex(tileNum), fineY)
	f.Fetch()
	for i := 0; i < fineX; i++ {
		_, _ = q.Pop()
	}

	for x := 0; x < 160; x++ {
		if q.Len() == 0 {
			mapX = (mapX + 1) & 31
			tileNum = mapReader.TileMapEntry(mapBase, mapX, mapY)
			f.Configure(tileAddrIndex(tileNum), fineY)
			f.Fetch()
		}
		px, _ := q.Pop()
		out[x] = px
	}
	return out
}

// RenderWindowScanline renders the window layer for a scanline starting
// at wxStart (WX-7), using winLine as the line within the window.
// Pixels before wxStart are left at color index 0.
func RenderWindowScanline(cache TileRowReader, mapReader TileMapReader, mapBase uint16, tileAddrIndex func(byte) int, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}
	mapY := uint16(winLine>>3) & 31
	fineY := winLine & 7
	mapX := uint16(0)

	var q fifo
	f := newBGFetcher(cache, &q)
	tileNum := mapReader.TileMapEntry(mapBase, mapX, mapY)
	f.Configure(tileAddrIndex(tileNum), int(fineY))
	f.Fetch()
	for x := wxStart; x < 160; x++ {
		if q.Len() == 0 {
			mapX = (mapX + 1) & 31
			tileNum = mapReader.TileMapEntry(mapBase, mapX, mapY)
			f.Configure(tileAddrIndex(tileNum), int(fineY))
			f.Fetch()
		}
		px, _ := q.Pop()
		out[x] = px
	}
	return out
}

package ppu

// bgFetcher and fifo implement the same pixel-fetch pipeline the PPU's
// compositor is built on, now sourcing pixels from the decoded tile
// cache instead of re-reading raw VRAM bytes per pixel.

// TileRowReader returns the 8 already-decoded color indices (0..3) for
// one row of a physical tile (0..383).
type TileRowReader interface {
	TileRow(tileIndex, row int) [8]byte
}

// fifo is a simple ring buffer for 2-bit color indices (0..3).
type fifo struct {
	buf  [32]byte // room for several tiles
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }
func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}
func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// bgFetcher pulls one cached tile row (8 pixels) into the FIFO.
type bgFetcher struct {
	cache     TileRowReader
	fifo      *fifo
	tileIndex int
	row       int
}

func newBGFetcher(cache TileRowReader, f *fifo) *bgFetcher { return &bgFetcher{cache: cache, fifo: f} }

// Configure selects which physical tile/row the next Fetch pulls.
func (fch *bgFetcher) Configure(tileIndex, row int) {
	fch.tileIndex = tileIndex
	fch.row = row & 7
}

// Fetch pushes the 8 cached pixels for the configured tile row to the FIFO.
func (fch *bgFetcher) Fetch() {
	px := fch.cache.TileRow(fch.tileIndex, fch.row)
	for i := 0; i < 8; i++ {
		_ = fch.fifo.Push(px[i])
	}
}

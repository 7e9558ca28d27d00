package ppu

import "testing"

func TestFIFO(t *testing.T) {
	var q fifo
	if q.Len() != 0 {
		t.Fatal("new fifo not empty")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop from empty should fail")
	}
	for i := 0; i < 32; i++ {
		if !q.Push(byte(i)) {
			t.Fatal("unexpected full")
		}
	}
	if q.Push(0) {
		t.Fatal("should be full")
	}
	for i := 0; i < 32; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatal("unexpected empty")
		}
		if v != byte(i)&3 {
			t.Fatalf("got %d want %d", v, byte(i)&3)
		}
	}
}

type mockCache map[[2]int][8]byte

func (m mockCache) TileRow(tileIndex, row int) [8]byte { return m[[2]int{tileIndex, row}] }

func TestBGFetcherFetchesEightPixels(t *testing.T) {
	lo, hi := byte(0x55), byte(0x33)
	var row [8]byte
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		row[i] = ((hi>>b)&1)<<1 | ((lo >> b) & 1)
	}
	cache := mockCache{{0, 0}: row}

	var q fifo
	f := newBGFetcher(cache, &q)
	f.Configure(0, 0)
	f.Fetch()
	if q.Len() != 8 {
		t.Fatalf("expected 8 pixels in fifo, got %d", q.Len())
	}
	for i := 0; i < 8; i++ {
		got, _ := q.Pop()
		if got != row[i] {
			t.Fatalf("px %d got %d want %d", i, got, row[i])
		}
	}
}

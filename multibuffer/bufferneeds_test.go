package multibuffer

import "testing"

func TestBlocksRequired(t *testing.T) {
	cases := []struct{ size, chunkSize, want int }{
		{10, 5, 2},
		{11, 5, 3},
		{0, 5, 0},
		{5, 0, 5}, // chunkSize <= 0 degrades to one block per chunk
	}
	for _, c := range cases {
		if got := BlocksRequired(c.size, c.chunkSize); got != c.want {
			t.Errorf("BlocksRequired(%d, %d) = %d, want %d", c.size, c.chunkSize, got, c.want)
		}
	}
}

func TestBestFactorFitsWithinAvailable(t *testing.T) {
	// available=10 reserves 2, leaving 8 usable buffers; size=100 has no
	// divisor <= 8 other than 1,2,4,5 (it is 4*25), so the best exact
	// divisor found scanning down from 8 is 5.
	got := BestFactor(10, 100)
	if got < 1 || got > 8 {
		t.Fatalf("BestFactor(10, 100) = %d, want in [1, 8]", got)
	}
	if 100%got != 0 {
		t.Errorf("BestFactor(10, 100) = %d does not evenly divide 100", got)
	}
}

func TestBestFactorSmallSizeFitsWhole(t *testing.T) {
	if got := BestFactor(10, 3); got != 3 {
		t.Errorf("BestFactor(10, 3) = %d, want 3", got)
	}
}

func TestBestFactorNarrowAvailable(t *testing.T) {
	if got := BestFactor(2, 50); got != 1 {
		t.Errorf("BestFactor(2, 50) = %d, want 1 (no buffers to spare)", got)
	}
}

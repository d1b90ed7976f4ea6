package stats

import "testing"

func TestLifetimeHistGrowsAndAccumulates(t *testing.T) {
	var h LifetimeHist
	h.Add(0)
	h.Add(0)
	h.AddN(5, 3)

	snap := h.Snapshot()
	if len(snap) != 6 {
		t.Fatalf("len(snapshot) = %d, want 6", len(snap))
	}
	if snap[0] != 2 {
		t.Fatalf("bucket 0 = %d, want 2", snap[0])
	}
	if snap[5] != 3 {
		t.Fatalf("bucket 5 = %d, want 3", snap[5])
	}
}

func TestSizeHistSmallAndLarge(t *testing.T) {
	h := NewSizeHist()
	h.Add(16)
	h.Add(16)
	h.Add(1 << 20) // overflows into the map

	seen := map[uint64]uint64{}
	h.ForEach(func(size, count uint64) { seen[size] = count })

	if seen[16] != 2 {
		t.Fatalf("count for size 16 = %d, want 2", seen[16])
	}
	if seen[1<<20] != 1 {
		t.Fatalf("count for size 1<<20 = %d, want 1", seen[1<<20])
	}
}

package stats

// LifetimeHist buckets durations (in whatever time unit the trace
// uses) into a sparse, growable histogram; the hist command fills it
// with each object's unreachable time minus its most-recent-use time. The bucket-slice-that-grows-on-demand technique
// is carried over from a lifetime-distribution tool that bucketed
// object age by completed-GC-cycle-count instead of by duration;
// here the same growable-slice trick buckets duration directly.
type LifetimeHist struct {
	bins []uint64
}

// AddN adds n observations to bucket i, growing the histogram if needed.
func (h *LifetimeHist) AddN(i uint32, n uint64) {
	if i >= uint32(len(h.bins)) {
		h.bins = append(h.bins, make([]uint64, i-uint32(len(h.bins))+1)...)
	}
	h.bins[i] += n
}

// Add records a single observation in bucket i.
func (h *LifetimeHist) Add(i uint32) {
	h.AddN(i, 1)
}

// Snapshot returns a copy of the current bucket counts.
func (h *LifetimeHist) Snapshot() []uint64 {
	out := make([]uint64, len(h.bins))
	copy(out, h.bins)
	return out
}

// SizeHist buckets shallow object sizes reported by unreachable_object.
// Small sizes get a dense array slot; anything beyond the dense range
// overflows into a map, the same small-value-array-plus-map-overflow
// split used by a companion allocation-size distribution tool in the
// same corpus, where most allocations are small and a long tail of
// large ones would otherwise blow up a flat array.
type SizeHist struct {
	small [32 << 10]uint64
	large map[uint64]uint64
}

// NewSizeHist creates an empty SizeHist.
func NewSizeHist() *SizeHist {
	return &SizeHist{large: make(map[uint64]uint64)}
}

// Add records one observation of the given size in bytes.
func (s *SizeHist) Add(size uint64) {
	if size >= 1 && size <= uint64(len(s.small)) {
		s.small[size-1]++
		return
	}
	s.large[size]++
}

// ForEach calls f once per (size, count) pair with a non-zero count,
// in no particular order across the large-size map.
func (s *SizeHist) ForEach(f func(size, count uint64)) {
	for i := range s.small {
		if s.small[i] != 0 {
			f(uint64(i+1), s.small[i])
		}
	}
	for size, count := range s.large {
		if count != 0 {
			f(size, count)
		}
	}
}

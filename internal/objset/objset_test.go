package objset

import "testing"

func TestAddReportsFirstInsertion(t *testing.T) {
	var s Set
	if !s.Add(42) {
		t.Fatalf("first Add returned false")
	}
	if s.Add(42) {
		t.Fatalf("second Add of the same id returned true")
	}
}

func TestRemove(t *testing.T) {
	var s Set
	s.Add(7)
	if !s.Remove(7) {
		t.Fatalf("Remove of present id returned false")
	}
	if s.Remove(7) {
		t.Fatalf("Remove of already-removed id returned true")
	}
	if s.Contains(7) {
		t.Fatalf("removed id still reported as contained")
	}
}

func TestContainsAcrossBitmapWords(t *testing.T) {
	var s Set
	ids := []uint32{0, 1, 8, 65535, 65536, 1 << 20}
	for _, id := range ids {
		s.Add(id)
	}
	for _, id := range ids {
		if !s.Contains(id) {
			t.Fatalf("id %d not contained after Add", id)
		}
	}
	if s.Contains(2) {
		t.Fatalf("unrelated id 2 reported as contained")
	}
}

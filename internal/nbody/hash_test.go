package nbody

import "testing"

func TestHash(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint32
	}{
		{0, 0x6b4ed927},
		{1, 0xb48681b6},
		{2, 0xe267b84c},
		{42, 0xc343bb70},
		{0xffffffff, 0xfe64c182},
	}

	for _, tt := range tests {
		if got := Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%d) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestSeed_DistinctPerBodyAndTag(t *testing.T) {
	seen := make(map[uint32]int)
	for i := 0; i < 1000; i++ {
		s := Seed(i, 1)
		if prev, ok := seen[s]; ok {
			t.Fatalf("bodies %d and %d share seed %#x", prev, i, s)
		}
		seen[s] = i
	}

	if Seed(7, 1) == Seed(7, 2) {
		t.Error("time tag does not change the seed")
	}
}

func TestMinstd(t *testing.T) {
	r := newMinstd(0)
	if r.x != 1 {
		t.Errorf("zero seed should map to 1, got %d", r.x)
	}

	r = newMinstd(1)
	if got := r.next(); got != 48271 {
		t.Errorf("first draw from seed 1 = %d, want 48271", got)
	}

	r = newMinstd(Hash(99))
	for i := 0; i < 10000; i++ {
		v := r.uniform(-1, 1)
		if v < -1 || v > 1 {
			t.Fatalf("uniform draw %d out of range: %v", i, v)
		}
	}
}

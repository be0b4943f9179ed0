package bloom

import "testing"

func TestSizer_KnownValues(t *testing.T) {
	s := NewSizer()

	// n=1000, p=0.01 → m ≈ 9586, k ≈ 7 (standard bloom formulas).
	m, k := s.Size(1000, 0.01)
	if m < 9000 || m > 10000 {
		t.Errorf("m = %d, want ≈9586", m)
	}
	if k != 7 {
		t.Errorf("k = %d, want 7", k)
	}
}

func TestSizer_ClampsDegenerateInput(t *testing.T) {
	s := NewSizer()

	m, k := s.Size(0, 0.01)
	if m == 0 || k == 0 {
		t.Errorf("zero capacity must clamp: m=%d k=%d", m, k)
	}

	m, k = s.Size(100, 0)
	if m == 0 || k == 0 {
		t.Errorf("invalid p must fall back to default: m=%d k=%d", m, k)
	}

	m, k = s.Size(100, 1.5)
	if m == 0 || k == 0 {
		t.Errorf("invalid p must fall back to default: m=%d k=%d", m, k)
	}
}

func TestFilter_AddContainClear(t *testing.T) {
	f := NewFactory().New(100, 0.01)

	key := []byte("18005551234")
	if f.MightContain(key) {
		t.Error("fresh filter should not contain key")
	}

	f.Add(key)
	if !f.MightContain(key) {
		t.Error("filter must contain added key (no false negatives)")
	}

	f.Clear()
	if f.MightContain(key) {
		t.Error("cleared filter should not contain key")
	}
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	f := NewFactory().New(1000, 0.01)

	keys := [][]byte{
		[]byte("18005551234"),
		[]byte("19005550000"),
		[]byte("441632960961"),
		[]byte("919876543210"),
	}
	for _, k := range keys {
		f.Add(k)
	}
	for _, k := range keys {
		if !f.MightContain(k) {
			t.Errorf("false negative for %s", k)
		}
	}
}

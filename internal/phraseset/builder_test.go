package phraseset

import "testing"

func TestBuilder_Insert_RejectsOutOfOrder(t *testing.T) {
	b := NewBuilder()
	if err := b.Insert([]uint32{1, 2}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := b.Insert([]uint32{1, 1}); err == nil {
		t.Fatal("expected an error inserting a sequence out of ascending order")
	}
	if err := b.Insert([]uint32{1, 2}); err == nil {
		t.Fatal("expected an error inserting a duplicate sequence")
	}
	if err := b.Insert([]uint32{1, 2, 0}); err != nil {
		t.Fatalf("Insert of a strict extension should be accepted: %v", err)
	}
}

func TestSequenceLess(t *testing.T) {
	cases := []struct {
		a, b []uint32
		want bool
	}{
		{[]uint32{1}, []uint32{2}, true},
		{[]uint32{1, 2}, []uint32{1, 2, 3}, true},
		{[]uint32{1, 2, 3}, []uint32{1, 2}, false},
		{[]uint32{1, 2}, []uint32{1, 2}, false},
		{nil, []uint32{1}, true},
	}
	for _, tc := range cases {
		if got := sequenceLess(tc.a, tc.b); got != tc.want {
			t.Errorf("sequenceLess(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

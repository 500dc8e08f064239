package testutil

import (
	"reflect"
	"testing"
)

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "valid JSON string",
			arg:  `{"name":"gnome","n":3}`,
			want: map[string]interface{}{"name": "gnome", "n": float64(3)},
		},
		{
			name: "valid JSON bytes",
			arg:  []byte(`["dwarf","lilliput"]`),
			want: []interface{}{"dwarf", "lilliput"},
		},
		{
			name: "non-string, non-byte-slice type",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSources(t *testing.T) {
	c := &Counter{}
	for i := 0; i < 3; i++ {
		if n := c.Next(); n != i {
			t.Fatalf("Counter gave %d, not %d", n, i)
		}
	}

	s := NewCycle(0, 3)
	got := []int{s.Next(), s.Next(), s.Next()}
	if !reflect.DeepEqual(got, []int{0, 3, 0}) {
		t.Fatalf("Cycle gave %v", got)
	}
	if s.Calls != 3 {
		t.Fatalf("Cycle calls %d", s.Calls)
	}
}

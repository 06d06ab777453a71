package image

import (
	"errors"
	"testing"

	"github.com/oswald-vm/oswald/internal/vm"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	p := vm.Program{
		Base:  300,
		Limit: 100,
		Words: []vm.Word{
			vm.ToWord(15, vm.NopLogger()),
			vm.ToWord(-3, vm.NopLogger()),
		},
	}

	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Base != p.Base {
		t.Errorf("Base = %d, want %d", got.Base, p.Base)
	}

	if len(got.Words) != len(p.Words) {
		t.Fatalf("len(Words) = %d, want %d", len(got.Words), len(p.Words))
	}

	for i := range p.Words {
		if got.Words[i] != p.Words[i] {
			t.Errorf("Words[%d] = %s, want %s", i, got.Words[i], p.Words[i])
		}
	}
}

func TestUnmarshalSkipsCommentsAndBlankLines(t *testing.T) {
	data := []byte("@0300\n# a comment\n\n00000015\n")

	p, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if p.Base != 300 {
		t.Errorf("Base = %d, want 300", p.Base)
	}

	if len(p.Words) != 1 {
		t.Fatalf("len(Words) = %d, want 1", len(p.Words))
	}
}

func TestUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no words", "@0300\n"},
		{"bad origin", "@abcd\n00000015\n"},
		{"duplicate origin", "@0300\n@0400\n00000015\n"},
		{"short word", "@0300\n123\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tc.data)); !errors.Is(err, ErrImage) {
				t.Errorf("Unmarshal(%q): err = %v, want wrapping ErrImage", tc.data, err)
			}
		})
	}
}

func TestUnmarshalDefaultsBaseToZero(t *testing.T) {
	p, err := Unmarshal([]byte("00000015\n"))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if p.Base != 0 {
		t.Errorf("Base = %d, want 0 (no origin directive given)", p.Base)
	}
}

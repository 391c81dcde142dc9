package change

import "testing"

func TestSum_Deterministic(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("xy"),
		[]byte("Filesystem  Size  Used\n/dev/sda1   50G   12G\n"),
		{0xff, 0xfe, 0x00},
	}

	for _, in := range inputs {
		if Sum(in) != Sum(in) {
			t.Errorf("Sum(%q) is not deterministic", in)
		}
	}
}

func TestSum_DistinctInputs(t *testing.T) {
	seen := make(map[Digest]string)
	for _, in := range []string{"", "a", "b", "ab", "ba", "abc", "abd", "hi", "hi!"} {
		d := SumString(in)
		if prev, ok := seen[d]; ok {
			t.Fatalf("digest collision between %q and %q", prev, in)
		}
		seen[d] = in
	}
}

func TestSumString_MatchesBytes(t *testing.T) {
	if SumString("héllo") != Sum([]byte("héllo")) {
		t.Error("SumString and Sum disagree for the same UTF-8 content")
	}
}

func TestDigest_String(t *testing.T) {
	// SHA-256 of the empty input.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil).String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name      string
		next      string
		displayed string
		want      bool
	}{
		{"identical", "xy", "xy", false},
		{"both empty", "", "", false},
		{"one byte differs", "abd", "abc", true},
		{"appended", "hi!", "hi", true},
		{"first run", "hello", "", true},
		{"output vanished", "", "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed([]byte(tt.next), tt.displayed); got != tt.want {
				t.Errorf("Changed(%q, %q) = %v, want %v", tt.next, tt.displayed, got, tt.want)
			}
		})
	}
}

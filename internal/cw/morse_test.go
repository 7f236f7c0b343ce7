package cw

import (
	"testing"
	"unicode"
)

func TestPattern_StringAndParse(t *testing.T) {
	tests := []struct {
		in   string
		want Pattern
	}{
		{".-", Pattern{Dit, Dah}},
		{"...-.-", Pattern{Dit, Dit, Dit, Dah, Dit, Dah}},
		{"", Pattern{}},
		{". -x", Pattern{Dit, Dah}},
	}
	for _, tt := range tests {
		got := ParsePattern(tt.in)
		if got.String() != tt.want.String() || len(got) != len(tt.want) {
			t.Errorf("ParsePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPatternFor(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{'A', ".-"},
		{'a', ".-"},
		{'S', "..."},
		{'0', "-----"},
		{'?', "..--.."},
		{'/', "-..-."},
		{'=', "-...-"},
	}
	for _, tt := range tests {
		if got := PatternFor(tt.r).String(); got != tt.want {
			t.Errorf("PatternFor(%q) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestPatternFor_UnknownIsEmpty(t *testing.T) {
	for _, r := range []rune{'#', '!', ' ', 'é', '@'} {
		if p := PatternFor(r); len(p) != 0 {
			t.Errorf("PatternFor(%q) = %q, want empty", r, p)
		}
	}
}

func TestProsignFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"AR", ".-.-."},
		{"@SK", "...-.-"},
		{"kn", "-.--."},
		{"@bt", "-...-"},
		{"BK", "-...-.-"},
		{"XX", ""},
	}
	for _, tt := range tests {
		if got := ProsignFor(tt.name).String(); got != tt.want {
			t.Errorf("ProsignFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestProsigns_ReturnsCopy(t *testing.T) {
	names := Prosigns()
	if len(names) != 5 {
		t.Fatalf("Prosigns() returned %d names, want 5", len(names))
	}
	names[0] = "ZZ"
	if Prosigns()[0] == "ZZ" {
		t.Error("Prosigns() exposes its backing slice")
	}
	for _, n := range Prosigns() {
		if len(ProsignFor(n)) == 0 {
			t.Errorf("prosign %q has no pattern", n)
		}
	}
}

func TestDecode_RoundTripsEveryCharacter(t *testing.T) {
	all := append(append(append([]rune{}, Letters...), Numbers...), Symbols...)
	for _, r := range all {
		got, ok := Decode(PatternFor(r))
		if !ok || got != r {
			t.Errorf("Decode(PatternFor(%q)) = %q, %v", r, got, ok)
		}
	}
}

func TestDecode_Unknown(t *testing.T) {
	tests := []struct {
		name string
		p    Pattern
	}{
		{"empty", nil},
		{"unassigned node", ParsePattern("..--")},
		{"too long", ParsePattern("-...-.-")},
		{"prosign AR", ProsignFor("AR")},
	}
	for _, tt := range tests {
		if r, ok := Decode(tt.p); ok {
			t.Errorf("%s: Decode(%q) = %q, want no match", tt.name, tt.p, r)
		}
	}
}

func TestDecode_ProsignSharingAPattern(t *testing.T) {
	// BT is keyed exactly like '='.
	if r, ok := Decode(ProsignFor("BT")); !ok || r != '=' {
		t.Errorf("Decode(BT) = %q, %v, want '='", r, ok)
	}
}

func TestCharacterSets(t *testing.T) {
	if len(Letters) != 26 || len(Numbers) != 10 || len(Symbols) != 5 {
		t.Errorf("set sizes = %d/%d/%d, want 26/10/5", len(Letters), len(Numbers), len(Symbols))
	}
	for _, r := range Letters {
		if !unicode.IsUpper(r) {
			t.Errorf("letter %q is not upper case", r)
		}
	}
}

func TestConstants(t *testing.T) {
	if DahDitRatio != 3 || IntraCharSpaceRatio != 1 || InterCharSpaceRatio != 3 || WordSpaceRatio != 7 {
		t.Error("ITU ratios changed")
	}
	if SecondsPerMinute/DitsPerWord != 1.2 {
		t.Errorf("PARIS unit = %v/wpm, want 1.2/wpm", SecondsPerMinute/DitsPerWord)
	}
}

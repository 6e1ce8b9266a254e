package compositor

import "testing"

func TestFilterKindRoundTrip(t *testing.T) {
	for k := FilterGrayscale; k <= FilterDropShadow; k++ {
		got, ok := ParseFilterKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseFilterKind(%q) = %v, %v, want %v, true", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseFilterKind("hue-rotate"); ok {
		t.Error("ParseFilterKind(\"hue-rotate\") should fail")
	}
	if got := FilterKind(42).String(); got != "FilterKind(42)" {
		t.Errorf("String() = %q, want %q", got, "FilterKind(42)")
	}
}

func TestFiltersString(t *testing.T) {
	tests := []struct {
		name string
		fs   Filters
		want string
	}{
		{"none", nil, "none"},
		{"one", Filters{{Kind: FilterBlur, Amount: 4}}, "blur(4)"},
		{"two", Filters{{Kind: FilterGrayscale, Amount: 1}, {Kind: FilterOpacity, Amount: 0.5}}, "grayscale(1) opacity(0.5)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fs.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

package text

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"accents and punctuation", "ÑANDÚ Álvaro!!", "nandu alvaro"},
		{"collapse whitespace", "  luz \t cálida \n", "luz calida"},
		{"keeps digits", "Reflector LED 100W", "reflector led 100w"},
		{"symbols become spaces", "panel/solar_60x60", "panel solar 60x60"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"ÑANDÚ Álvaro!!", "Reflector LED 100W IP65", "café con leche", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
		for _, r := range once {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ') {
				t.Errorf("Normalize(%q) contains %q outside [a-z0-9 ]", in, r)
			}
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"luces", "luz"},
		{"paneles", "panel"},
		{"reflectores", "reflector"},
		{"postes", "poste"},
		{"nichos", "nicho"},
		{"leds", "led"},
		{"gas", "gas"},
		{"luz", "luz"},
		{"ciudades", "ciudad"},
		{"exteriores", "exterior"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Singularize(tt.in); got != tt.want {
				t.Fatalf("Singularize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokensSqueezesSpecPatterns(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"reflector de 100 w", []string{"reflector", "de", "100w"}},
		{"protección ip 65", []string{"proteccion", "ip65"}},
		{"luz de 4000 k", []string{"luz", "de", "4000k"}},
		{"100w ip65", []string{"100w", "ip65"}},
	}
	for _, tt := range tests {
		if got := Tokens(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandQuery(t *testing.T) {
	got := ExpandQuery("luces para paneles")
	want := []string{"luces", "luz", "para", "paneles", "panel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandQuery = %v, want %v", got, want)
	}

	// Duplicates keep their first position only.
	got = ExpandQuery("luz luces luz")
	want = []string{"luz", "luces"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandQuery dedup = %v, want %v", got, want)
	}

	if got := ExpandQuery("   "); got != nil {
		t.Fatalf("ExpandQuery(blank) = %v, want nil", got)
	}
}

func TestBigrams(t *testing.T) {
	got := Bigrams([]string{"luz", "calida", "exterior"})
	want := []string{"luz calida", "calida exterior"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Bigrams = %v, want %v", got, want)
	}
	if got := Bigrams([]string{"solo"}); got != nil {
		t.Fatalf("Bigrams(single) = %v, want nil", got)
	}
}

func TestCodeCandidates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"hyphenated code", "tienes el RF-100 en stock?", []string{"rf-100"}},
		{"plain code", "precio del SKU abc123", []string{"abc123"}},
		{"no digits no code", "reflector para exterior", nil},
		{"dedup", "rf-100 y otra vez rf-100", []string{"rf-100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeCandidates(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("CodeCandidates(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

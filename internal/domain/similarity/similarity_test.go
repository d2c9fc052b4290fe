package similarity

import (
	"math"
	"testing"
)

func TestJaroWinklerIdentity(t *testing.T) {
	for _, s := range []string{"a", "luz", "reflector", "100w"} {
		if got := JaroWinkler(s, s); got != 1.0 {
			t.Errorf("JaroWinkler(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestJaroWinklerEmpty(t *testing.T) {
	if got := JaroWinkler("", "x"); got != 0.0 {
		t.Errorf("JaroWinkler(\"\", \"x\") = %v, want 0.0", got)
	}
	if got := JaroWinkler("x", ""); got != 0.0 {
		t.Errorf("JaroWinkler(\"x\", \"\") = %v, want 0.0", got)
	}
	if got := JaroWinkler("", ""); got != 0.0 {
		t.Errorf("JaroWinkler(\"\", \"\") = %v, want 0.0", got)
	}
}

func TestJaroWinklerSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"reflector", "reflectores"},
		{"panel", "papel"},
		{"luz", "luces"},
		{"martha", "marhta"},
	}
	for _, p := range pairs {
		ab := JaroWinkler(p[0], p[1])
		ba := JaroWinkler(p[1], p[0])
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("JaroWinkler(%q,%q)=%v != JaroWinkler(%q,%q)=%v",
				p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestJaroKnownValue(t *testing.T) {
	// Classic textbook pair: jaro(martha, marhta) = 0.944...
	got := Jaro("martha", "marhta")
	want := 0.9444444444444445
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Jaro(martha, marhta) = %v, want %v", got, want)
	}
}

func TestJaroOddTranspositionCountFloors(t *testing.T) {
	// abcdef vs bcadef has six matches with three of them out of order; the
	// transposition count floors to 1, giving (1 + 1 + 5/6)/3.
	got := Jaro("abcdef", "bcadef")
	want := 0.9444444444444445
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Jaro(abcdef, bcadef) = %v, want %v", got, want)
	}
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	plain := Jaro("reflector", "reflectores")
	boosted := JaroWinkler("reflector", "reflectores")
	if boosted <= plain {
		t.Fatalf("prefix boost missing: jw=%v jaro=%v", boosted, plain)
	}
	if boosted > 1.0 {
		t.Fatalf("JaroWinkler above 1.0: %v", boosted)
	}
}

func TestSoftMatchSubRules(t *testing.T) {
	tests := []struct {
		name  string
		query string
		token string
		want  bool
	}{
		{"equality", "luz", "luz", true},
		{"sequence ratio", "exterior", "exteriores", true},
		{"sequence ratio below bar", "panel", "poste", false},
		{"short strings skip ratio rule", "luz", "lus", false},
		{"containment overlap", "calida", "calidas", true},
		{"containment overlap too weak", "led", "ledesparatodos", false},
		{"empty query", "", "luz", false},
		{"empty token", "luz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SoftMatch(tt.query, tt.token); got != tt.want {
				t.Fatalf("SoftMatch(%q, %q) = %v, want %v", tt.query, tt.token, got, tt.want)
			}
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	if got := SequenceRatio("abc", "abc"); got != 1.0 {
		t.Fatalf("SequenceRatio identical = %v", got)
	}
	if got := SequenceRatio("abc", "xyz"); got != 0.0 {
		t.Fatalf("SequenceRatio disjoint = %v", got)
	}
	// 2*8/(8+10) = 0.888... for exterior vs exteriores.
	got := SequenceRatio("exterior", "exteriores")
	if math.Abs(got-0.888888888888889) > 1e-9 {
		t.Fatalf("SequenceRatio(exterior, exteriores) = %v", got)
	}
}
